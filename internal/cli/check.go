package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/coursesync/internal/audit"
)

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Report inconsistencies between courses and progress records",
		Long: `Check every course against its progress records and the user population.

Reports assignees without a progress record, progress records whose user is
not assigned, duplicate assignees, duplicate progress records, broadcast
courses that do not match the user population, and progress records whose
course no longer exists.

Exit codes:
  0 - Consistent
  1 - One or more violations
  2 - Command error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			return withRuntime(rootOpts, func(rt *runtime) error {
				checker := audit.NewChecker(rt.store,
					audit.WithConcurrency(rt.cfg.Audit.Concurrency),
					audit.WithLogger(rt.logger.Named("audit")))

				report, err := checker.Check(cmd.Context())
				if err != nil {
					return f.Fail("check", err)
				}
				if err := f.Success(report); err != nil {
					return err
				}
				if !report.Clean() {
					return NewExitError(ExitFailure, fmt.Sprintf("%d violations found", len(report.Violations)))
				}
				return nil
			})
		},
	}
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reconcile",
		Short: "Repair inconsistencies between courses and progress records",
		Long: `Repair every course so that its assignees and progress records agree.

Broadcast courses are assigned to every user. Other courses keep every user
named by either their assignees or their progress records. Missing progress
records are created as "Not Started"; duplicates and orphans are deleted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(cmd, rootOpts)
			return withRuntime(rootOpts, func(rt *runtime) error {
				reconciler := audit.NewReconciler(rt.store, audit.WithLogger(rt.logger.Named("audit")))

				summary, err := reconciler.Reconcile(cmd.Context())
				if err != nil {
					return f.Fail("reconcile", err)
				}
				return f.Success(summary)
			})
		},
	}
}
