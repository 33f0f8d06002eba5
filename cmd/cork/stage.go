package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/corkboard/corkboard/internal/models"
	"github.com/corkboard/corkboard/internal/stage"
)

func newStageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stage",
		Short: "Workflow stage commands",
	}

	cmd.AddCommand(newStageAddCmd())
	cmd.AddCommand(newStageEditCmd())
	cmd.AddCommand(newStageListCmd())
	cmd.AddCommand(newStageRmCmd())
	cmd.AddCommand(newStageReorderCmd())
	return cmd
}

func newStageAddCmd() *cobra.Command {
	var (
		configPath  string
		projectID   string
		name        string
		pos         int
		isCompleted bool
		isPending   bool
		taskLimit   int
		resolution  string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a stage at a position, shifting later stages up",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}
			opts := stage.CreateOpts{
				ProjectID:   projectID,
				Name:        name,
				IsCompleted: isCompleted,
				IsPending:   isPending,
				Resolution:  stage.Resolution(resolution),
			}
			if cmd.Flags().Changed("position") {
				opts.Position = &pos
			}
			if taskLimit > 0 {
				opts.TaskLimit = &taskLimit
			}
			st, err := stage.Create(gormDB, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created stage %s (%s) at position %d\n",
				st.ID, st.Name, st.Position)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "corkboard.yaml", "path to Corkboard config file")
	cmd.Flags().StringVar(&projectID, "project", "", "project ID (required)")
	cmd.Flags().StringVar(&name, "name", "", "stage name (required)")
	cmd.Flags().IntVar(&pos, "position", 0, "1-based position; omit to append at the end")
	cmd.Flags().BoolVar(&isCompleted, "completed", false, "mark as the project's completed stage")
	cmd.Flags().BoolVar(&isPending, "pending", false, "mark as the default landing stage")
	cmd.Flags().IntVar(&taskLimit, "limit", 0, "advisory task limit; 0 for none")
	cmd.Flags().StringVar(&resolution, "resolution", "", "completed conflict resolution (replace, keep)")
	return cmd
}

func newStageEditCmd() *cobra.Command {
	var (
		configPath  string
		name        string
		isCompleted bool
		isPending   bool
		taskLimit   int
		resolution  string
	)

	cmd := &cobra.Command{
		Use:   "edit <stage-id>",
		Short: "Update a stage; only supplied flags change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}
			upd := stage.Update{Resolution: stage.Resolution(resolution)}
			if cmd.Flags().Changed("name") {
				upd.Name = models.Some(name)
			}
			if cmd.Flags().Changed("completed") {
				upd.IsCompleted = models.Some(isCompleted)
			}
			if cmd.Flags().Changed("pending") {
				upd.IsPending = models.Some(isPending)
			}
			if cmd.Flags().Changed("limit") {
				if taskLimit > 0 {
					upd.TaskLimit = models.Some(&taskLimit)
				} else {
					upd.TaskLimit = models.Some[*int](nil)
				}
			}
			if err := stage.Apply(gormDB, args[0], upd); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated stage %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "corkboard.yaml", "path to Corkboard config file")
	cmd.Flags().StringVar(&name, "name", "", "new stage name")
	cmd.Flags().BoolVar(&isCompleted, "completed", false, "set or clear the completed flag")
	cmd.Flags().BoolVar(&isPending, "pending", false, "set or clear the pending flag")
	cmd.Flags().IntVar(&taskLimit, "limit", 0, "advisory task limit; 0 clears it")
	cmd.Flags().StringVar(&resolution, "resolution", "", "completed conflict resolution (replace, keep)")
	return cmd
}

func newStageListCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a project's stages in order",
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}
			stages, err := stage.List(gormDB, projectID)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "POS\tID\tNAME\tFLAGS\tLIMIT")
			for _, st := range stages {
				flags := []string{}
				if st.IsPending {
					flags = append(flags, "pending")
				}
				if st.IsCompleted {
					flags = append(flags, "completed")
				}
				limit := "-"
				if st.TaskLimit != nil {
					limit = fmt.Sprintf("%d", *st.TaskLimit)
				}
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					st.Position, st.ID, st.Name, strings.Join(flags, ","), limit)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "corkboard.yaml", "path to Corkboard config file")
	cmd.Flags().StringVar(&projectID, "project", "", "project ID (required)")
	return cmd
}

func newStageRmCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "rm <stage-id>",
		Short: "Delete a stage and compact the remaining positions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}
			if err := stage.Delete(gormDB, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted stage %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "corkboard.yaml", "path to Corkboard config file")
	return cmd
}

func newStageReorderCmd() *cobra.Command {
	var (
		configPath string
		projectID  string
	)

	cmd := &cobra.Command{
		Use:   "reorder <stage-id>...",
		Short: "Overwrite a project's stage order from the listed IDs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gormDB, _, err := openDB(configPath)
			if err != nil {
				return err
			}
			if err := stage.Reorder(gormDB, projectID, args); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reordered %d stages\n", len(args))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "corkboard.yaml", "path to Corkboard config file")
	cmd.Flags().StringVar(&projectID, "project", "", "project ID (required)")
	return cmd
}
