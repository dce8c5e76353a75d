package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/coursesync/internal/record"
	"github.com/roach88/coursesync/internal/store"
)

// NewCourseCommand creates the course command group.
func NewCourseCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course",
		Short: "Create, update, delete and inspect courses",
	}

	cmd.AddCommand(newCourseCreateCommand(rootOpts))
	cmd.AddCommand(newCourseUpdateCommand(rootOpts))
	cmd.AddCommand(newCourseDeleteCommand(rootOpts))
	cmd.AddCommand(newCourseShowCommand(rootOpts))
	cmd.AddCommand(newCourseListCommand(rootOpts))

	return cmd
}

func newCourseCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		assignees []string
		everyone  bool
	)

	cmd := &cobra.Command{
		Use:   "create [id]",
		Short: "Create a course and a progress record for each assignee",
		Long: `Create a course. Each assignee gets a "Not Started" progress record.
With --everyone the course is assigned to every user, now and in future.

Examples:
  coursesync course create intro --assignee alice --assignee bob
  coursesync course create onboarding --everyone`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c := record.Course{Assignees: assignees, AssignToEveryone: everyone}
			if len(args) == 1 {
				c.ID = args[0]
			}

			f := newFormatter(cmd, rootOpts)
			return withRuntime(rootOpts, func(rt *runtime) error {
				created, err := rt.app.CreateCourse(cmd.Context(), c)
				if err != nil {
					return f.Fail("create course", err)
				}
				return f.Success(created)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&assignees, "assignee", "a", nil, "user id to assign (repeatable)")
	cmd.Flags().BoolVar(&everyone, "everyone", false, "assign to every user")

	return cmd
}

func newCourseUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		assignees []string
		everyone  bool
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a course's assignees or broadcast flag",
		Long: `Update a course. Flags that are not given keep their current value.
Removed assignees lose their progress record; added assignees get one.

Examples:
  coursesync course update intro --assignee bob --assignee carol
  coursesync course update intro --everyone=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			return withRuntime(rootOpts, func(rt *runtime) error {
				c, err := rt.app.Course(cmd.Context(), args[0])
				if err != nil {
					return f.Fail("update course", err)
				}
				if cmd.Flags().Changed("assignee") {
					c.Assignees = assignees
				}
				if cmd.Flags().Changed("everyone") {
					c.AssignToEveryone = everyone
				}

				updated, err := rt.app.UpdateCourse(cmd.Context(), c)
				if err != nil {
					return f.Fail("update course", err)
				}
				return f.Success(updated)
			})
		},
	}

	cmd.Flags().StringSliceVarP(&assignees, "assignee", "a", nil, "user id to assign (repeatable, replaces the list)")
	cmd.Flags().BoolVar(&everyone, "everyone", false, "assign to every user")

	return cmd
}

func newCourseDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a course and its progress records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			return withRuntime(rootOpts, func(rt *runtime) error {
				if err := rt.app.DeleteCourse(cmd.Context(), args[0]); err != nil {
					return f.Fail("delete course", err)
				}
				return f.Success(map[string]string{"deleted": args[0]})
			})
		},
	}
}

func newCourseShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a course and its progress records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			return withRuntime(rootOpts, func(rt *runtime) error {
				c, err := rt.app.Course(cmd.Context(), args[0])
				if err != nil {
					return f.Fail("show course", err)
				}
				progress, err := rt.app.ProgressRecords(cmd.Context(), store.ProgressFilter{Course: c.ID})
				if err != nil {
					return f.Fail("show course", err)
				}
				return f.Success(CourseDetail{Course: c, Progress: progress})
			})
		},
	}
}

func newCourseListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List courses in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			return withRuntime(rootOpts, func(rt *runtime) error {
				courses, err := rt.app.Courses(cmd.Context())
				if err != nil {
					return f.Fail("list courses", err)
				}
				return f.Success(courses)
			})
		},
	}
}
