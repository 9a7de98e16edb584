// Package access decides what a role may see and do. Role sets are
// static per item; an unknown role or action is simply not allowed.
package access

import "github.com/ashraf950/timesheet-client/internal/core/datamodel/user"

type Action string

const (
	ActionViewDashboard    Action = "dashboard.view"
	ActionViewAnalytics    Action = "analytics.view"
	ActionSubmitTimesheet  Action = "timesheet.submit"
	ActionAutoFill         Action = "timesheet.autofill"
	ActionDecideApproval   Action = "approval.decide"
	ActionViewInvoices     Action = "invoice.view"
	ActionGenerateInvoice  Action = "invoice.generate"
	ActionViewPayments     Action = "payment.view"
	ActionReconcilePayment Action = "payment.reconcile"
	ActionViewAuditLogs    Action = "audit.view"
	ActionExportAuditLogs  Action = "audit.export"
)

var (
	everyone   = []user.Role{user.RoleEmployee, user.RoleManager, user.RoleAdmin, user.RoleFinance}
	billing    = []user.Role{user.RoleManager, user.RoleAdmin, user.RoleFinance}
	management = []user.Role{user.RoleManager, user.RoleAdmin}
)

// NavItem is an entry in the main navigation.
type NavItem struct {
	Label string
	Path  string
	Roles []user.Role
}

var navigation = []NavItem{
	{Label: "Dashboard", Path: "/dashboard", Roles: everyone},
	{Label: "Timesheet", Path: "/timesheet", Roles: everyone},
	{Label: "Invoices", Path: "/invoices", Roles: billing},
	{Label: "Payments", Path: "/payments", Roles: billing},
	{Label: "Manager", Path: "/manager", Roles: management},
	{Label: "Audit Logs", Path: "/audit-logs", Roles: management},
}

var actions = map[Action][]user.Role{
	ActionViewDashboard:    everyone,
	ActionViewAnalytics:    billing,
	ActionSubmitTimesheet:  everyone,
	ActionAutoFill:         everyone,
	ActionDecideApproval:   management,
	ActionViewInvoices:     billing,
	ActionGenerateInvoice:  billing,
	ActionViewPayments:     billing,
	ActionReconcilePayment: billing,
	ActionViewAuditLogs:    management,
	ActionExportAuditLogs:  management,
}

// Navigation returns every nav item, in display order.
func Navigation() []NavItem {
	out := make([]NavItem, len(navigation))
	copy(out, navigation)
	return out
}

// Actions returns every known action with its allowed roles.
func Actions() map[Action][]user.Role {
	out := make(map[Action][]user.Role, len(actions))
	for a, roles := range actions {
		out[a] = append([]user.Role(nil), roles...)
	}
	return out
}

func (n NavItem) Allowed(role user.Role) bool {
	return contains(n.Roles, role)
}

// Filter keeps the items role may see, in their original order.
func Filter(items []NavItem, role user.Role) []NavItem {
	out := make([]NavItem, 0, len(items))
	for _, item := range items {
		if item.Allowed(role) {
			out = append(out, item)
		}
	}
	return out
}

// NavFor is the navigation shown to role.
func NavFor(role user.Role) []NavItem {
	return Filter(navigation, role)
}

// Can reports whether role may perform action.
func Can(role user.Role, action Action) bool {
	return contains(actions[action], role)
}

func contains(roles []user.Role, role user.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
