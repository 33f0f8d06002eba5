package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/corkboard/corkboard/internal/task"
)

func newTaskCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Task management commands",
	}

	cmd.AddCommand(newTaskAddCmd())
	cmd.AddCommand(newTaskListCmd())
	cmd.AddCommand(newTaskMvCmd())
	cmd.AddCommand(newTaskDoneCmd())
	cmd.AddCommand(newTaskRmCmd())
	return cmd
}

func newTaskAddCmd() *cobra.Command {
	var (
		configPath  string
		projectID   string
		stageID     string
		title       string
		description string
		priority    bool
		parentID    string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task at the end of its stage",
		Long:  "Creates a task. Without --stage the task lands in the project's pending stage; with --parent it becomes a subtask outside the stage ordering.",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}
			t, err := task.Create(gormDB, task.CreateOpts{
				ProjectID:    projectID,
				StageID:      stageID,
				Title:        title,
				Description:  description,
				IsPriority:   priority,
				ParentTaskID: parentID,
			})
			if err != nil {
				return err
			}
			if t.Subtask() {
				fmt.Fprintf(cmd.OutOrStdout(), "Created subtask %s under %s\n", t.ID, *t.ParentTaskID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created task %s in stage %s at position %d\n",
				t.ID, t.StageID, *t.Position)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "corkboard.yaml", "path to Corkboard config file")
	cmd.Flags().StringVar(&projectID, "project", "", "project ID (required unless --parent)")
	cmd.Flags().StringVar(&stageID, "stage", "", "stage ID; empty uses the pending stage")
	cmd.Flags().StringVar(&title, "title", "", "task title (required)")
	cmd.Flags().StringVar(&description, "description", "", "task description")
	cmd.Flags().BoolVar(&priority, "priority", false, "flag as priority")
	cmd.Flags().StringVar(&parentID, "parent", "", "parent task ID (creates a subtask)")
	return cmd
}

func newTaskListCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
	)

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List a project's tasks by stage order then position",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}
			tasks, err := task.ListByProject(gormDB, projectID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSTAGE\tPOS\tPRI\tTITLE")
			for _, t := range tasks {
				pri := ""
				if t.IsPriority {
					pri = "*"
				}
				fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", t.ID, t.StageID, *t.Position, pri, t.Title)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "corkboard.yaml", "path to Corkboard config file")
	cmd.Flags().StringVar(&projectID, "project", "", "project ID (required)")
	return cmd
}

func newTaskMvCmd() *cobra.Command {
	var (
		configPath string
		stageID    string
	)

	cmd := &cobra.Command{
		Use:   "mv <task-id>",
		Short: "Move a task to another stage, repacking both stages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}
			if err := task.MoveStatus(gormDB, args[0], stageID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved task %s to stage %s\n", args[0], stageID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "corkboard.yaml", "path to Corkboard config file")
	cmd.Flags().StringVar(&stageID, "stage", "", "destination stage ID (required)")
	return cmd
}

func newTaskDoneCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "done <task-id>",
		Short: "Advance a task to the next stage in project order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}
			if err := task.MoveNext(gormDB, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Advanced task %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "corkboard.yaml", "path to Corkboard config file")
	return cmd
}

func newTaskRmCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rm <task-id>",
		Short: "Delete a task and its subtasks, compacting its stage",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}
			if err := task.Delete(gormDB, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted task %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "corkboard.yaml", "path to Corkboard config file")
	return cmd
}
