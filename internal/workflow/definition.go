// Package workflow holds the removal state machine as data: the steps, and
// the transitions between them annotated with the permission (and optionally
// role) required to traverse each one.
package workflow

import (
	"fmt"

	"removaltracker/internal/authz"
	"removaltracker/internal/model"
)

// Version identifies the transition table. Bump it whenever an edge changes.
const Version = 1

// Kind classifies what a transition does.
type Kind string

const (
	KindSubmit           Kind = "submit"
	KindApprove          Kind = "approve"
	KindReject           Kind = "reject"
	KindReturn           Kind = "return"
	KindExtensionRequest Kind = "extension_request"
	KindExtensionRecheck Kind = "extension_recheck"
	KindOverride         Kind = "override"
)

// Step is one status a removal can be in.
type Step struct {
	Name               string               `json:"name"`
	DisplayName        string               `json:"display_name"`
	RequiredPermission authz.PermissionName `json:"required_permission,omitempty"`
	Order              int                  `json:"order"`
}

// Transition is one edge of the state machine.
type Transition struct {
	ID                 string               `json:"id"`
	FromStep           string               `json:"from_step"`
	ToStep             string               `json:"to_step"`
	RequiredPermission authz.PermissionName `json:"required_permission"`
	RequiredRole       authz.RoleName       `json:"required_role,omitempty"`
	Kind               Kind                 `json:"kind"`
	Level              int                  `json:"level,omitempty"`
}

var steps = []Step{
	{model.StatusDraft, "Draft", authz.CreateRemoval, 1},
	{model.StatusPendingLevel2, "Department Approval", authz.ApproveLevel2, 2},
	{model.StatusPendingLevel3, "Finance Approval", authz.ApproveLevel3, 3},
	{model.StatusPendingLevel4, "Management Approval", authz.ApproveLevel4, 4},
	{model.StatusPendingSecurity, "Security Approval", authz.ApproveSecurity, 5},
	{model.StatusApproved, "Approved", "", 6},
	{model.StatusRejected, "Rejected", "", 7},
	{model.StatusReturned, "Returned", "", 8},
	{model.StatusPendingLevel2Recheck, "Extension Re-Check", authz.RecheckExtension, 9},
}

var transitions = []Transition{
	// User submission
	{"wt1", model.StatusDraft, model.StatusPendingLevel2, authz.CreateRemoval, "", KindSubmit, 0},

	// Department approval
	{"wt2", model.StatusPendingLevel2, model.StatusPendingLevel3, authz.ApproveLevel2, authz.RoleLevel2, KindApprove, 2},
	{"wt3", model.StatusPendingLevel2, model.StatusRejected, authz.ApproveLevel2, authz.RoleLevel2, KindReject, 2},

	// Finance approval
	{"wt4", model.StatusPendingLevel3, model.StatusPendingLevel4, authz.ApproveLevel3, authz.RoleLevel3, KindApprove, 3},
	{"wt5", model.StatusPendingLevel3, model.StatusRejected, authz.ApproveLevel3, authz.RoleLevel3, KindReject, 3},

	// Management approval
	{"wt6", model.StatusPendingLevel4, model.StatusPendingSecurity, authz.ApproveLevel4, authz.RoleLevel4, KindApprove, 4},
	{"wt7", model.StatusPendingLevel4, model.StatusRejected, authz.ApproveLevel4, authz.RoleLevel4, KindReject, 4},

	// Security approval
	{"wt8", model.StatusPendingSecurity, model.StatusApproved, authz.ApproveSecurity, authz.RoleSecurity, KindApprove, 5},
	{"wt9", model.StatusPendingSecurity, model.StatusRejected, authz.ApproveSecurity, authz.RoleSecurity, KindReject, 5},

	// Return
	{"wt10", model.StatusApproved, model.StatusReturned, authz.RecordReturn, authz.RoleSecurity, KindReturn, 0},

	// Extension
	{"wt11", model.StatusApproved, model.StatusPendingLevel2Recheck, authz.ManageExtension, authz.RoleSecurity, KindExtensionRequest, 0},
	{"wt12", model.StatusPendingLevel2Recheck, model.StatusApproved, authz.RecheckExtension, authz.RoleLevel2, KindExtensionRecheck, 0},

	// Admin override
	{"wt13", model.StatusDraft, model.StatusApproved, authz.OverrideWorkflow, authz.RoleAdmin, KindOverride, 0},
	{"wt14", model.StatusDraft, model.StatusRejected, authz.OverrideWorkflow, authz.RoleAdmin, KindOverride, 0},
	{"wt15", model.StatusPendingLevel2, model.StatusApproved, authz.OverrideWorkflow, authz.RoleAdmin, KindOverride, 0},
	{"wt16", model.StatusPendingLevel3, model.StatusApproved, authz.OverrideWorkflow, authz.RoleAdmin, KindOverride, 0},
	{"wt17", model.StatusPendingLevel4, model.StatusApproved, authz.OverrideWorkflow, authz.RoleAdmin, KindOverride, 0},
	{"wt18", model.StatusPendingSecurity, model.StatusApproved, authz.OverrideWorkflow, authz.RoleAdmin, KindOverride, 0},
}

// Steps returns every workflow step in display order.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}

// StepFor looks up the step of a status.
func StepFor(status string) (Step, bool) {
	for _, s := range steps {
		if s.Name == status {
			return s, true
		}
	}
	return Step{}, false
}

// Transitions returns the full transition table in table order.
func Transitions() []Transition {
	out := make([]Transition, len(transitions))
	copy(out, transitions)
	return out
}

// Outgoing returns the edges leaving a status, in table order.
func Outgoing(status string) []Transition {
	var out []Transition
	for _, t := range transitions {
		if t.FromStep == status {
			out = append(out, t)
		}
	}
	return out
}

// IsTerminal reports whether no edge leaves the status.
func IsTerminal(status string) bool {
	return len(Outgoing(status)) == 0
}

// ApprovalEdge returns the forward edge of an approval level. Its FromStep is
// the status a removal must be in, ToStep the status it advances to.
func ApprovalEdge(level int) (Transition, bool) {
	return find(func(t Transition) bool { return t.Kind == KindApprove && t.Level == level })
}

// RejectionEdge returns the rejection edge of an approval level.
func RejectionEdge(level int) (Transition, bool) {
	return find(func(t Transition) bool { return t.Kind == KindReject && t.Level == level })
}

// OverrideEdge returns the override shortcut from a status to APPROVED.
func OverrideEdge(from string) (Transition, bool) {
	return find(func(t Transition) bool {
		return t.Kind == KindOverride && t.FromStep == from && t.ToStep == model.StatusApproved
	})
}

// EdgeOf returns the first edge of a kind. Use it for kinds with a single edge
// (submit, return, extension request, extension recheck).
func EdgeOf(kind Kind) (Transition, bool) {
	return find(func(t Transition) bool { return t.Kind == kind })
}

// Levels returns the approval levels in pipeline order.
func Levels() []int {
	var levels []int
	for _, t := range transitions {
		if t.Kind == KindApprove {
			levels = append(levels, t.Level)
		}
	}
	return levels
}

// Validate checks the table against the step list: every edge joins known
// steps, every level has both an approval and a rejection edge, and only
// REJECTED and RETURNED are terminal.
func Validate() error {
	for _, t := range transitions {
		if _, ok := StepFor(t.FromStep); !ok {
			return fmt.Errorf("transition %s: unknown from step %q", t.ID, t.FromStep)
		}
		if _, ok := StepFor(t.ToStep); !ok {
			return fmt.Errorf("transition %s: unknown to step %q", t.ID, t.ToStep)
		}
		if _, ok := authz.LookupPermission(t.RequiredPermission); !ok {
			return fmt.Errorf("transition %s: unknown permission %q", t.ID, t.RequiredPermission)
		}
	}
	for _, level := range Levels() {
		if _, ok := RejectionEdge(level); !ok {
			return fmt.Errorf("approval level %d has no rejection edge", level)
		}
	}
	for _, s := range steps {
		terminal := IsTerminal(s.Name)
		wantTerminal := s.Name == model.StatusRejected || s.Name == model.StatusReturned
		if terminal != wantTerminal {
			return fmt.Errorf("step %s: terminal=%t", s.Name, terminal)
		}
	}
	return nil
}

func find(match func(Transition) bool) (Transition, bool) {
	for _, t := range transitions {
		if match(t) {
			return t, true
		}
	}
	return Transition{}, false
}
