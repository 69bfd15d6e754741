package main

import (
	"github.com/spf13/cobra"
)

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Master-registry operations: known workspaces and tool usage",
}

var (
	friendlyName string
	usageDays    int
	usageTool    string
)

func init() {
	nameCmd.Flags().StringVar(&friendlyName, "name", "", "friendly name to assign (required)")
	usageCmd.Flags().IntVar(&usageDays, "days", 30, "trailing window size")
	usageCmd.Flags().StringVar(&usageTool, "tool", "", "filter to one tool name")

	workspaceCmd.AddCommand(listWorkspacesCmd, getWorkspaceCmd, nameCmd, usageCmd)
}

var listWorkspacesCmd = &cobra.Command{
	Use:   "list",
	Short: "List every workspace the registry knows about",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := theCore.ListWorkspaces(cmd.Context())
		if err != nil {
			printErr(err)
			return nil
		}
		ok("%d known workspace(s)", len(all))
		printResult(all)
		return nil
	},
}

var getWorkspaceCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the registry row for the current --workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		w, err := theCore.GetWorkspace(cmd.Context(), workspacePath)
		if err != nil {
			printErr(err)
			return nil
		}
		printResult(w)
		return nil
	},
}

var nameCmd = &cobra.Command{
	Use:   "name",
	Short: "Assign a friendly name to the current --workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := theCore.SetFriendlyName(cmd.Context(), workspacePath, friendlyName); err != nil {
			printErr(err)
			return nil
		}
		ok("workspace named %q", friendlyName)
		return nil
	},
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show tool-usage telemetry aggregated across every known workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := theCore.GetUsageStats(cmd.Context(), usageDays, usageTool)
		if err != nil {
			printErr(err)
			return nil
		}
		ok("%d call(s) in the trailing %d day(s)", stats.TotalCalls, usageDays)
		printResult(stats)
		return nil
	},
}
