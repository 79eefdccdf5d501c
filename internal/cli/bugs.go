package cli

import (
	"github.com/spf13/cobra"

	"github.com/spec-kit/bug-tracker/internal/render"
	"github.com/spec-kit/bug-tracker/pkg/client"
)

func newBugsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bugs",
		Short: "List, inspect and change bugs",
	}
	cmd.AddCommand(
		newBugsListCmd(opts),
		newBugsGetCmd(opts),
		newBugsCreateCmd(opts),
		newBugsUpdateCmd(opts),
		newBugsDeleteCmd(opts),
	)
	return cmd
}

func newBugsListCmd(opts *options) *cobra.Command {
	var filters client.Filters
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List bugs",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bugs, err := opts.client().ListBugs(cmd.Context(), filters)
			if err != nil {
				return err
			}
			return render.BugList(opts.out, bugs)
		},
	}
	cmd.Flags().StringVar(&filters.Status, "status", "", "Filter by status (open, in-progress, closed)")
	cmd.Flags().IntVar(&filters.Priority, "priority", 0, "Filter by priority (1-5)")
	cmd.Flags().StringVar(&filters.SortBy, "sort", "", "Sort order; 'recent' lists newest first")
	return cmd
}

func newBugsGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a single bug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bug, err := opts.client().GetBug(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			render.BugCard(opts.out, bug)
			return nil
		},
	}
}

type bugFlags struct {
	title, description, severity, status, reportedBy string
	priority                                         int
}

func (f *bugFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.title, "title", "", "Bug title")
	cmd.Flags().StringVar(&f.description, "description", "", "Bug description")
	cmd.Flags().StringVar(&f.severity, "severity", "", "Severity (low, medium, high)")
	cmd.Flags().StringVar(&f.status, "status", "", "Status (open, in-progress, closed)")
	cmd.Flags().StringVar(&f.reportedBy, "reported-by", "", "Reporter name")
	cmd.Flags().IntVar(&f.priority, "priority", 0, "Priority (1-5)")
}

// input keeps only the flags the user actually set.
func (f *bugFlags) input(cmd *cobra.Command) client.BugInput {
	var in client.BugInput
	changed := cmd.Flags().Changed
	if changed("title") {
		in.Title = client.String(f.title)
	}
	if changed("description") {
		in.Description = client.String(f.description)
	}
	if changed("severity") {
		in.Severity = client.String(f.severity)
	}
	if changed("status") {
		in.Status = client.String(f.status)
	}
	if changed("reported-by") {
		in.ReportedBy = client.String(f.reportedBy)
	}
	if changed("priority") {
		in.Priority = client.Int(f.priority)
	}
	return in
}

func newBugsCreateCmd(opts *options) *cobra.Command {
	flags := &bugFlags{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Report a new bug",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bug, err := opts.client().CreateBug(cmd.Context(), flags.input(cmd))
			if err != nil {
				return err
			}
			opts.success("Bug created successfully")
			render.BugCard(opts.out, bug)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newBugsUpdateCmd(opts *options) *cobra.Command {
	flags := &bugFlags{}
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of an existing bug",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bug, err := opts.client().UpdateBug(cmd.Context(), args[0], flags.input(cmd))
			if err != nil {
				return err
			}
			opts.success("Bug updated successfully")
			render.BugCard(opts.out, bug)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newBugsDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a bug",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.client().DeleteBug(cmd.Context(), args[0]); err != nil {
				return err
			}
			opts.success("Bug deleted successfully")
			return nil
		},
	}
}
