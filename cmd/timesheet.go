package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashraf950/timesheet-client/internal/access"
	"github.com/ashraf950/timesheet-client/internal/insights"
	"github.com/ashraf950/timesheet-client/internal/timesheet"
)

var (
	addDate        string
	addProject     string
	addHours       float64
	addDescription string
	autoFillDate   string
)

var timesheetCmd = &cobra.Command{
	Use:   "timesheet",
	Short: "List and submit timesheet entries",
}

var timesheetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your timesheet entries",
	RunE: withDeps(func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
		ws := deps.Workspace
		if err := ws.Require(access.ActionViewDashboard); err != nil {
			return err
		}
		if err := ws.Timesheets.Fetch(cmd.Context()); err != nil {
			return failed(ws.Timesheets.Snapshot().Status.Error, err)
		}

		snap := ws.Timesheets.Snapshot()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), snap)
		}
		if len(snap.Items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No timesheet entries yet.")
			return nil
		}
		tw := newTable(cmd.OutOrStdout(), "DATE", "PROJECT", "HOURS", "STATUS", "FLAG", "DESCRIPTION")
		for _, e := range snap.Items {
			row(tw, e.Date, e.Project, e.HoursWorked, e.CurrentStatus(), insights.ClassifyHours(e.HoursWorked.Float64()), e.Description)
		}
		return tw.Flush()
	}),
}

var timesheetAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Submit a timesheet entry",
	RunE: withDeps(func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
		ws := deps.Workspace
		if err := ws.Require(access.ActionSubmitTimesheet); err != nil {
			return err
		}
		entry, err := ws.Timesheets.Add(cmd.Context(), timesheet.AddRequest{
			Date:        addDate,
			Project:     addProject,
			HoursWorked: addHours,
			Description: addDescription,
		})
		if err != nil {
			return failed(ws.Timesheets.Snapshot().Status.Error, err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), entry)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added %.2fh on %s for %s (%s)\n",
			entry.HoursWorked, entry.Date, entry.Project, entry.CurrentStatus())
		if label := insights.ClassifyHours(entry.HoursWorked.Float64()); label != insights.HoursNormal {
			fmt.Fprintf(cmd.OutOrStdout(), "Note: %s day\n", label)
		}
		return nil
	}),
}

var timesheetAutoFillCmd = &cobra.Command{
	Use:   "autofill",
	Short: "Ask for a suggested entry for a day",
	RunE: withDeps(func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
		ws := deps.Workspace
		if err := ws.Require(access.ActionAutoFill); err != nil {
			return err
		}
		suggestion, err := ws.Timesheets.AutoFill(cmd.Context(), timesheet.AutoFillRequest{Date: autoFillDate})
		if err != nil {
			return failed(ws.Timesheets.Snapshot().Op(timesheet.OpAutoFill).Error, err)
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), suggestion)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Suggested entry for %s (confidence %d%%)\n", suggestion.Date, ws.Presenter.AutoFillConfidence())
		fmt.Fprintf(out, "  Project:     %s\n", orDash(suggestion.Project))
		fmt.Fprintf(out, "  Hours:       %.2f\n", suggestion.HoursWorked)
		fmt.Fprintf(out, "  Description: %s\n", orDash(suggestion.Description))
		return nil
	}),
}

func init() {
	timesheetAddCmd.Flags().StringVar(&addDate, "date", "", "day worked (YYYY-MM-DD)")
	timesheetAddCmd.Flags().StringVar(&addProject, "project", "", "project name")
	timesheetAddCmd.Flags().Float64Var(&addHours, "hours", 0, "hours worked")
	timesheetAddCmd.Flags().StringVar(&addDescription, "description", "", "what was done")

	timesheetAutoFillCmd.Flags().StringVar(&autoFillDate, "date", "", "day to fill (YYYY-MM-DD)")

	timesheetCmd.AddCommand(timesheetListCmd, timesheetAddCmd, timesheetAutoFillCmd)
}
