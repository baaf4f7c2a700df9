// Package access defines a discrete access-control decision table: role,
// resource, action, and ownership resolve to an allow/deny verdict.
//
// The table is first-match: wildcard rows narrow the domain from the most
// privileged case down to a trailing catch-all deny, the classic layout of a
// reviewed permission matrix. Every one of the 54 input combinations is
// covered, which construction verifies by enumerating the full cross
// product.
package access

import (
	"fmt"
	"log/slog"

	"mercator-hq/tabula/pkg/table"
)

// Role classifies the requesting principal.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleEditor Role = "Editor"
	RoleViewer Role = "Viewer"
)

// Resource classifies the object being accessed.
type Resource string

const (
	ResourceDocument Resource = "Document"
	ResourceReport   Resource = "Report"
	ResourceAuditLog Resource = "AuditLog"
)

// Action classifies the requested operation.
type Action string

const (
	ActionRead   Action = "Read"
	ActionWrite  Action = "Write"
	ActionDelete Action = "Delete"
)

// Verdict is the table's output.
type Verdict string

const (
	Allow Verdict = "allow"
	Deny  Verdict = "deny"
)

// Roles returns every declared role.
func Roles() []Role { return []Role{RoleAdmin, RoleEditor, RoleViewer} }

// Resources returns every declared resource.
func Resources() []Resource { return []Resource{ResourceDocument, ResourceReport, ResourceAuditLog} }

// Actions returns every declared action.
func Actions() []Action { return []Action{ActionRead, ActionWrite, ActionDelete} }

const (
	ownerYes = "owner"
	ownerNo  = "other"
)

// New builds the access-control table.
//
// Policy, in rule order:
//   - admins may do anything;
//   - the audit log is otherwise read-only and admin-only: all non-admin
//     access is denied;
//   - anyone may read documents and reports;
//   - viewers may not mutate anything;
//   - editors may write documents and reports, and delete only what they
//     own;
//   - everything else is denied.
func New() (*table.Table, error) {
	return table.New(table.Spec{
		Name: "access-control",
		Mode: table.ModeFirstMatch,
		Dimensions: []table.Dimension{
			table.DiscreteDimension("role", string(RoleAdmin), string(RoleEditor), string(RoleViewer)),
			table.DiscreteDimension("resource", string(ResourceDocument), string(ResourceReport), string(ResourceAuditLog)),
			table.DiscreteDimension("action", string(ActionRead), string(ActionWrite), string(ActionDelete)),
			table.DiscreteDimension("ownership", ownerYes, ownerNo),
		},
		Rules: []table.Rule{
			{
				ID:          "admin-full-access",
				Description: "Admins bypass all further checks.",
				Cells:       []table.Cell{table.Is(string(RoleAdmin)), table.Any(), table.Any(), table.Any()},
				Output:      Allow,
			},
			{
				ID:          "audit-log-restricted",
				Description: "The audit log is admin-only.",
				Cells:       []table.Cell{table.Any(), table.Is(string(ResourceAuditLog)), table.Any(), table.Any()},
				Output:      Deny,
			},
			{
				ID:          "read-open",
				Description: "Documents and reports are readable by everyone.",
				Cells:       []table.Cell{table.Any(), table.Any(), table.Is(string(ActionRead)), table.Any()},
				Output:      Allow,
			},
			{
				ID:          "viewer-no-mutation",
				Cells:       []table.Cell{table.Is(string(RoleViewer)), table.Any(), table.Any(), table.Any()},
				Output:      Deny,
			},
			{
				ID:          "editor-write",
				Cells:       []table.Cell{table.Is(string(RoleEditor)), table.Any(), table.Is(string(ActionWrite)), table.Any()},
				Output:      Allow,
			},
			{
				ID:          "editor-delete-own",
				Description: "Editors may delete only their own material.",
				Cells:       []table.Cell{table.Is(string(RoleEditor)), table.Any(), table.Is(string(ActionDelete)), table.Is(ownerYes)},
				Output:      Allow,
			},
			{
				ID:          "default-deny",
				Cells:       []table.Cell{table.Any(), table.Any(), table.Any(), table.Any()},
				Output:      Deny,
			},
		},
	})
}

// NewEvaluator builds the table and wraps it in an evaluator.
func NewEvaluator(config *table.EvaluatorConfig, logger *slog.Logger) (*table.Evaluator, error) {
	tbl, err := New()
	if err != nil {
		return nil, err
	}
	return table.NewEvaluator(tbl, config, logger)
}

// Tuple builds the input tuple for one access request.
func Tuple(role Role, resource Resource, action Action, isOwner bool) table.InputTuple {
	ownership := ownerNo
	if isOwner {
		ownership = ownerYes
	}
	return table.Tuple(string(role), string(resource), string(action), ownership)
}

// Decide evaluates one access request and returns the verdict.
func Decide(ev *table.Evaluator, role Role, resource Resource, action Action, isOwner bool) (Verdict, error) {
	decision, err := ev.Evaluate(Tuple(role, resource, action, isOwner))
	if err != nil {
		return "", err
	}
	verdict, ok := decision.Output.(Verdict)
	if !ok {
		return "", fmt.Errorf("unexpected output type %T from rule %s", decision.Output, decision.RuleID)
	}
	return verdict, nil
}
