package workflow

import (
	"removaltracker/internal/authz"
	"removaltracker/internal/model"
)

// AllowedTransitions enumerates the edges leaving the removal's current status
// that the actor may traverse: it must hold the required permission, the
// required role when one is set, and pass the permission's scope against the
// removal. The result drives UI affordances only; mutations re-check
// everything against fresh state.
func AllowedTransitions(actor *authz.Actor, removal *model.Removal) []Transition {
	allowed := make([]Transition, 0)
	if actor == nil || removal == nil {
		return allowed
	}

	for _, t := range transitions {
		if t.FromStep != removal.Status {
			continue
		}
		if !actor.HasPermission(t.RequiredPermission) {
			continue
		}
		if t.RequiredRole != "" && !actor.HasRole(t.RequiredRole) {
			continue
		}
		if !authz.CanPerformAction(actor, removal, t.RequiredPermission) {
			continue
		}
		allowed = append(allowed, t)
	}
	return allowed
}
