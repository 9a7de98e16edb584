package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ashraf950/timesheet-client/internal/access"
	"github.com/ashraf950/timesheet-client/internal/approval"
	timesheetDatamodel "github.com/ashraf950/timesheet-client/internal/core/datamodel/timesheet"
	"github.com/ashraf950/timesheet-client/internal/insights"
)

var (
	decideStatus   string
	decideComments string
)

var approvalsCmd = &cobra.Command{
	Use:   "approvals",
	Short: "Review pending timesheet entries",
}

var approvalsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries waiting for a decision",
	RunE: withDeps(func(cmd *cobra.Command, _ []string, deps *Dependencies) error {
		ws := deps.Workspace
		if err := ws.Require(access.ActionDecideApproval); err != nil {
			if denied(cmd.OutOrStdout(), err) {
				return nil
			}
			return err
		}
		if err := ws.Approvals.FetchPending(cmd.Context()); err != nil {
			return failed(ws.Approvals.Snapshot().Status.Error, err)
		}

		snap := ws.Approvals.Snapshot()
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), snap)
		}
		if len(snap.Items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing waiting for approval.")
			return nil
		}
		tw := newTable(cmd.OutOrStdout(), "ID", "EMPLOYEE", "DATE", "PROJECT", "HOURS", "FLAG")
		for _, e := range snap.Items {
			employee := e.UserID.Key()
			if e.UserID.Populated() {
				employee = e.UserID.User.DisplayName()
			}
			row(tw, e.Key(), orDash(employee), e.Date, e.Project, e.HoursWorked, insights.ClassifyHours(e.HoursWorked.Float64()))
		}
		return tw.Flush()
	}),
}

var approvalsDecideCmd = &cobra.Command{
	Use:   "decide <timesheet-id>",
	Short: "Approve or reject a pending entry",
	Args:  cobra.ExactArgs(1),
	RunE: withDeps(func(cmd *cobra.Command, args []string, deps *Dependencies) error {
		ws := deps.Workspace
		if err := ws.Require(access.ActionDecideApproval); err != nil {
			return err
		}
		// Load the pending list so a decided entry is caught locally.
		if err := ws.Approvals.FetchPending(cmd.Context()); err != nil {
			return failed(ws.Approvals.Snapshot().Status.Error, err)
		}
		err := ws.Approvals.Decide(cmd.Context(), args[0], approval.DecisionRequest{
			Status:   timesheetDatamodel.Status(decideStatus),
			Comments: decideComments,
		})
		if err != nil {
			return failed(ws.Approvals.Snapshot().Op(approval.OpUpdate).Error, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Timesheet %s marked %s\n", args[0], decideStatus)
		return nil
	}),
}

func init() {
	approvalsDecideCmd.Flags().StringVar(&decideStatus, "status", "", "Approved or Rejected")
	approvalsDecideCmd.Flags().StringVar(&decideComments, "comments", "", "optional note for the employee")

	approvalsCmd.AddCommand(approvalsListCmd, approvalsDecideCmd)
}
