package main

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kodelink/task-mcp/internal/core"
)

var entityCmd = &cobra.Command{
	Use:   "entity",
	Short: "Create, inspect, and link typed entities",
}

var (
	entityType       string
	entityName       string
	entityIdentifier string
	entityDesc       string
	entityMetadata   string
	entityTags       []string
	entityCreatedBy  string
)

func init() {
	createEntityCmd.Flags().StringVar(&entityType, "type", "", "entity_type: file|other (required)")
	createEntityCmd.Flags().StringVar(&entityName, "name", "", "entity name (required)")
	createEntityCmd.Flags().StringVar(&entityIdentifier, "identifier", "", "opaque unique identifier within entity_type")
	createEntityCmd.Flags().StringVar(&entityDesc, "description", "", "entity description")
	createEntityCmd.Flags().StringVar(&entityMetadata, "metadata", "", "opaque metadata JSON string")
	createEntityCmd.Flags().StringSliceVar(&entityTags, "tags", nil, "tags")
	createEntityCmd.Flags().StringVar(&entityCreatedBy, "by", "", "created_by actor")

	listEntitiesCmd.Flags().StringVar(&entityType, "type", "", "filter by entity_type")
	listEntitiesCmd.Flags().StringSliceVar(&entityTags, "tags", nil, "filter by tags (AND)")
	listEntitiesCmd.Flags().StringVar(&taskMode, "mode", "", "summary|details")
	listEntitiesCmd.Flags().IntVar(&taskLimit, "limit", 0, "page size")
	listEntitiesCmd.Flags().IntVar(&taskOffset, "offset", 0, "page offset")

	getEntityCmd.Flags().StringVar(&taskMode, "mode", "", "summary|details")
	// taskEntitiesCmd's mode/limit/offset flags are registered once, in
	// task.go's init(), alongside the other listing commands.
	entityTasksCmd.Flags().StringVar(&taskMode, "mode", "", "summary|details")
	entityTasksCmd.Flags().IntVar(&taskLimit, "limit", 0, "page size")
	entityTasksCmd.Flags().IntVar(&taskOffset, "offset", 0, "page offset")

	entityCmd.AddCommand(createEntityCmd, getEntityCmd, deleteEntityCmd, listEntitiesCmd, linkEntityCmd, entityTasksCmd)
	// taskEntitiesCmd is registered under taskCmd in task.go's init().
}

var createEntityCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a typed entity",
	RunE: func(cmd *cobra.Command, args []string) error {
		var identifier *string
		if cmd.Flags().Changed("identifier") {
			identifier = &entityIdentifier
		}
		en, err := theCore.CreateEntity(cmd.Context(), core.CreateEntityArgs{
			WorkspacePath: workspacePath,
			EntityType:    entityType,
			Name:          entityName,
			Identifier:    identifier,
			Description:   entityDesc,
			Metadata:      entityMetadata,
			Tags:          entityTags,
			CreatedBy:     entityCreatedBy,
		})
		if err != nil {
			printErr(err)
			return nil
		}
		ok("created entity %d: %s", en.ID, en.Name)
		printResult(en)
		return nil
	},
}

var getEntityCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get an entity by id",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		en, err := theCore.GetEntity(cmd.Context(), workspacePath, id, taskMode)
		if err != nil {
			printErr(err)
			return nil
		}
		printResult(en)
		return nil
	},
}

var deleteEntityCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Soft-delete an entity (always cascades to its links)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		res, err := theCore.DeleteEntity(cmd.Context(), workspacePath, id)
		if err != nil {
			printErr(err)
			return nil
		}
		ok("deleted entity %d, %d link(s) cascaded", id, res.DeletedLinks)
		printResult(res)
		return nil
	},
}

var listEntitiesCmd = &cobra.Command{
	Use:   "list",
	Short: "List entities",
	RunE: func(cmd *cobra.Command, args []string) error {
		var f core.EntityFilterArgs
		if entityType != "" {
			f.EntityType = &entityType
		}
		f.Tags = entityTags
		env, err := theCore.ListEntities(cmd.Context(), workspacePath, f, listParams())
		if err != nil {
			printErr(err)
			return nil
		}
		printResult(env)
		return nil
	},
}

var linkEntityCmd = &cobra.Command{
	Use:   "link <task-id> <entity-id>",
	Short: "Link a task to an entity",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		taskID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		entityID, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return err
		}
		if err := theCore.LinkEntityToTask(cmd.Context(), workspacePath, taskID, entityID, entityCreatedBy); err != nil {
			printErr(err)
			return nil
		}
		ok("linked task %d to entity %d", taskID, entityID)
		return nil
	},
}

var taskEntitiesCmd = &cobra.Command{
	Use:   "entities <task-id>",
	Short: "List entities linked to a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		env, err := theCore.GetTaskEntities(cmd.Context(), workspacePath, id, listParams())
		if err != nil {
			printErr(err)
			return nil
		}
		printResult(env)
		return nil
	},
}

var entityTasksCmd = &cobra.Command{
	Use:   "tasks <entity-id>",
	Short: "List tasks linked to an entity",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return err
		}
		var status, priority *string
		if taskStatus != "" {
			status = &taskStatus
		}
		if taskPriority != "" {
			priority = &taskPriority
		}
		env, err := theCore.GetEntityTasks(cmd.Context(), workspacePath, id, status, priority, listParams())
		if err != nil {
			printErr(err)
			return nil
		}
		printResult(env)
		return nil
	},
}
