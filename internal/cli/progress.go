package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/store"
)

// NewProgressCommand creates the progress command group.
func NewProgressCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "Create, update, delete and list progress records",
	}

	cmd.AddCommand(newProgressCreateCommand(rootOpts))
	cmd.AddCommand(newProgressUpdateCommand(rootOpts))
	cmd.AddCommand(newProgressDeleteCommand(rootOpts))
	cmd.AddCommand(newProgressListCommand(rootOpts))

	return cmd
}

func newProgressCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var p record.Progress

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a progress record and assign its user to the course",
		Long: `Create a progress record. The assignee is added to the course's
assignees if missing.

Example:
  coursesync progress create --course intro --assignee alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			return withRuntime(rootOpts, func(rt *runtime) error {
				created, err := rt.app.CreateProgress(cmd.Context(), p)
				if err != nil {
					return f.Fail("create progress", err)
				}
				return f.Success(created)
			})
		},
	}

	cmd.Flags().StringVar(&p.ID, "id", "", "record id (generated if empty)")
	cmd.Flags().StringVar(&p.Course, "course", "", "course id")
	cmd.Flags().StringVar(&p.Assignee, "assignee", "", "user id")
	cmd.Flags().StringVar(&p.Status, "status", record.StatusNotStarted, "completion status")
	_ = cmd.MarkFlagRequired("course")
	_ = cmd.MarkFlagRequired("assignee")

	return cmd
}

func newProgressUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change a progress record's status",
		Long: `Update a progress record's status. A progress record always belongs
to the course and user it was created for.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			return withRuntime(rootOpts, func(rt *runtime) error {
				p, err := rt.app.Progress(cmd.Context(), args[0])
				if err != nil {
					return f.Fail("update progress", err)
				}
				p.Status = status

				updated, err := rt.app.UpdateProgress(cmd.Context(), p)
				if err != nil {
					return f.Fail("update progress", err)
				}
				return f.Success(updated)
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "completion status")
	_ = cmd.MarkFlagRequired("status")

	return cmd
}

func newProgressDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a progress record and unassign its user from the course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			return withRuntime(rootOpts, func(rt *runtime) error {
				if err := rt.app.DeleteProgress(cmd.Context(), args[0]); err != nil {
					return f.Fail("delete progress", err)
				}
				return f.Success(map[string]string{"deleted": args[0]})
			})
		},
	}
}

func newProgressListCommand(rootOpts *RootOptions) *cobra.Command {
	var filter store.ProgressFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List progress records, optionally by course or assignee",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			return withRuntime(rootOpts, func(rt *runtime) error {
				progress, err := rt.app.ProgressRecords(cmd.Context(), filter)
				if err != nil {
					return f.Fail("list progress", err)
				}
				return f.Success(progress)
			})
		},
	}

	cmd.Flags().StringVar(&filter.Course, "course", "", "only records for this course")
	cmd.Flags().StringVar(&filter.Assignee, "assignee", "", "only records for this user")

	return cmd
}
