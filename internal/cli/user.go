package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/coursesync/internal/record"
)

// NewUserCommand creates the user command group.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Create, update, delete and list users",
	}

	cmd.AddCommand(newUserCreateCommand(rootOpts))
	cmd.AddCommand(newUserUpdateCommand(rootOpts))
	cmd.AddCommand(newUserDeleteCommand(rootOpts))
	cmd.AddCommand(newUserListCommand(rootOpts))

	return cmd
}

func newUserCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "create [id]",
		Short: "Create a user and enrol them in every broadcast course",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u := record.User{Name: name}
			if len(args) == 1 {
				u.ID = args[0]
			}

			f := newFormatter(cmd, rootOpts)
			return withRuntime(rootOpts, func(rt *runtime) error {
				created, err := rt.app.CreateUser(cmd.Context(), u)
				if err != nil {
					return f.Fail("create user", err)
				}
				return f.Success(created)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")

	return cmd
}

func newUserUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Rename a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			return withRuntime(rootOpts, func(rt *runtime) error {
				updated, err := rt.app.UpdateUser(cmd.Context(), record.User{ID: args[0], Name: name})
				if err != nil {
					return f.Fail("update user", err)
				}
				return f.Success(updated)
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name")

	return cmd
}

func newUserDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a user, unassign them everywhere and drop their progress",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			return withRuntime(rootOpts, func(rt *runtime) error {
				if err := rt.app.DeleteUser(cmd.Context(), args[0]); err != nil {
					return f.Fail("delete user", err)
				}
				return f.Success(map[string]string{"deleted": args[0]})
			})
		},
	}
}

func newUserListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users in creation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			return withRuntime(rootOpts, func(rt *runtime) error {
				users, err := rt.app.Users(cmd.Context())
				if err != nil {
					return f.Fail("list users", err)
				}
				return f.Success(users)
			})
		},
	}
}
