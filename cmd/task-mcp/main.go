// Command task-mcp is a thin CLI over internal/core, exercising the same
// flat call surface an MCP server would dispatch into (spec §2).
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kodelink/task-mcp/internal/config"
	"github.com/kodelink/task-mcp/internal/core"
	"github.com/kodelink/task-mcp/internal/errs"
	"github.com/kodelink/task-mcp/internal/obslog"
)

var (
	workspacePath string
	configPath    string
	jsonOutput    bool

	theCore *core.Core
)

var rootCmd = &cobra.Command{
	Use:   "task-mcp",
	Short: "Per-developer task and entity tracker",
	Long: `task-mcp is a reference CLI over the same core every MCP tool call
dispatches into: hierarchical tasks, typed entities, and workspace-isolated
storage, all keyed off a workspace path: --workspace, or the current
directory when the flag is omitted.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if workspacePath == "" {
			wd, err := os.Getwd()
			if err != nil {
				return err
			}
			workspacePath = wd
		}
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		c, err := core.Open(context.Background(), cfg)
		if err != nil {
			return err
		}
		theCore = c
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if theCore != nil {
			return theCore.Close()
		}
		return nil
	},
}

func main() {
	ctx := obslog.With(context.Background(), obslog.Default())
	rootCmd.SetContext(ctx)

	rootCmd.PersistentFlags().StringVarP(&workspacePath, "workspace", "w", "", "workspace path (defaults to cwd)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "emit machine-readable JSON")

	rootCmd.AddCommand(taskCmd, entityCmd, auditCmd, workspaceCmd)

	if err := rootCmd.Execute(); err != nil {
		printErr(err)
		os.Exit(1)
	}
}

// printResult renders v as pretty JSON when --json is set and prints nothing
// otherwise (each subcommand prints its own human-readable summary first).
func printResult(v any) {
	if jsonOutput {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			printErr(err)
			return
		}
		fmt.Println(string(b))
	}
}

// printErr renders err, surfacing the structured core.Kind when present
// (spec §7) instead of a bare Go error string.
func printErr(err error) {
	kind := errs.KindOf(err)
	color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "error [%s]: ", kind)
	fmt.Fprintln(os.Stderr, err)
}

func ok(msg string, args ...any) {
	color.New(color.FgGreen).Printf(msg+"\n", args...)
}
