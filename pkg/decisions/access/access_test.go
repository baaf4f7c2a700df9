package access

import (
	"errors"
	"log/slog"
	"testing"

	"mercator-hq/tabula/pkg/table"
)

func newEvaluator(t *testing.T) *table.Evaluator {
	t.Helper()
	ev, err := NewEvaluator(nil, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("NewEvaluator() error = %v", err)
	}
	return ev
}

// expected mirrors the published policy independently of the rule layout so
// the full cross product can be checked against it.
func expected(role Role, resource Resource, action Action, isOwner bool) Verdict {
	switch {
	case role == RoleAdmin:
		return Allow
	case resource == ResourceAuditLog:
		return Deny
	case action == ActionRead:
		return Allow
	case role == RoleViewer:
		return Deny
	case action == ActionWrite:
		return Allow
	case action == ActionDelete && isOwner:
		return Allow
	default:
		return Deny
	}
}

func TestAccessFullCrossProduct(t *testing.T) {
	ev := newEvaluator(t)

	count := 0
	for _, role := range Roles() {
		for _, resource := range Resources() {
			for _, action := range Actions() {
				for _, isOwner := range []bool{true, false} {
					count++
					got, err := Decide(ev, role, resource, action, isOwner)
					if err != nil {
						t.Fatalf("Decide(%s, %s, %s, %v) error = %v", role, resource, action, isOwner, err)
					}
					if want := expected(role, resource, action, isOwner); got != want {
						t.Errorf("Decide(%s, %s, %s, %v) = %s, want %s", role, resource, action, isOwner, got, want)
					}
				}
			}
		}
	}
	if count != 54 {
		t.Fatalf("enumerated %d combinations, want 54", count)
	}
}

func TestAccessSpotChecks(t *testing.T) {
	ev := newEvaluator(t)

	tests := []struct {
		name     string
		role     Role
		resource Resource
		action   Action
		isOwner  bool
		want     Verdict
	}{
		{"admin deletes audit log", RoleAdmin, ResourceAuditLog, ActionDelete, false, Allow},
		{"editor reads audit log", RoleEditor, ResourceAuditLog, ActionRead, true, Deny},
		{"viewer reads report", RoleViewer, ResourceReport, ActionRead, false, Allow},
		{"viewer writes document", RoleViewer, ResourceDocument, ActionWrite, true, Deny},
		{"editor writes report", RoleEditor, ResourceReport, ActionWrite, false, Allow},
		{"editor deletes own document", RoleEditor, ResourceDocument, ActionDelete, true, Allow},
		{"editor deletes foreign document", RoleEditor, ResourceDocument, ActionDelete, false, Deny},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decide(ev, tt.role, tt.resource, tt.action, tt.isOwner)
			if err != nil {
				t.Fatalf("Decide() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Decide() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAccessTableIsFirstMatch(t *testing.T) {
	tbl, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if tbl.Mode() != table.ModeFirstMatch {
		t.Errorf("Mode() = %s, want %s", tbl.Mode(), table.ModeFirstMatch)
	}
	if got := len(tbl.Rules()); got != 7 {
		t.Errorf("len(Rules()) = %d, want 7", got)
	}
}

func TestAccessRejectsUnknownInputs(t *testing.T) {
	ev := newEvaluator(t)

	_, err := ev.Evaluate(table.Tuple("Superuser", string(ResourceDocument), string(ActionRead), ownerNo))
	var verr *table.DimensionError
	if !errors.As(err, &verr) {
		t.Fatalf("Evaluate() error = %v, want *table.DimensionError", err)
	}
}
