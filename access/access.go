// Package access decides what an actor may do to a recipe. Every function
// here is a pure decision over the recipe's current state.
package access

import (
	"potluck/apperr"
	"potluck/models"
)

// Decision is the outcome of classifying an update request.
type Decision int

const (
	Deny Decision = iota
	Suggest
	Direct
)

func (d Decision) String() string {
	switch d {
	case Direct:
		return "DIRECT"
	case Suggest:
		return "SUGGEST"
	default:
		return "DENY"
	}
}

// Classify decides how a request by actorID to apply changes is handled.
// The owner and edit collaborators mutate directly; anyone else may only
// suggest, and only on a public recipe. The decision does not depend on
// which fields changes touches.
func Classify(r *models.Recipe, actorID string, changes models.RecipePatch) Decision {
	if r == nil || actorID == "" {
		return Deny
	}
	if r.IsOwner(actorID) {
		return Direct
	}
	if c, _ := r.Collaborator(actorID); c != nil && c.Permission == models.PermissionEdit {
		return Direct
	}
	if r.IsPublic {
		return Suggest
	}
	return Deny
}

// CanManage reports whether actorID may delete the recipe or manage its
// collaborators.
func CanManage(r *models.Recipe, actorID string) bool {
	return r != nil && r.IsOwner(actorID)
}

// CanReview reports whether actorID may approve or reject pending edits.
func CanReview(r *models.Recipe, actorID string) bool {
	return r != nil && r.IsOwner(actorID)
}

// CanView reports whether actorID may read the recipe and file suggestions
// against it.
func CanView(r *models.Recipe, actorID string) bool {
	if r == nil {
		return false
	}
	if r.IsPublic || r.IsOwner(actorID) {
		return true
	}
	c, _ := r.Collaborator(actorID)
	return c != nil
}

// RequireOwner returns a Forbidden error unless actorID owns r.
func RequireOwner(r *models.Recipe, actorID, action string) error {
	if !CanManage(r, actorID) {
		return apperr.Newf(apperr.Forbidden, "only the recipe owner can %s", action)
	}
	return nil
}
