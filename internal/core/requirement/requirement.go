// Package requirement decides whether a choice's gate is satisfied.
// This is part of the Functional Core - no I/O, only pure functions.
package requirement

import "github.com/example/gamebook/internal/models"

// Result is the outcome of evaluating a requirement.
// Hint lists are only populated when the requirement is met.
type Result struct {
	IsMet          bool
	HiddenEntries  []string
	VisibleEntries []string
}

// Evaluate checks req against the reader's progress.
// owningEntryID is used as the edge source when a once requirement omits entryId.
// A nil progress means nothing has been chosen yet.
func Evaluate(req models.Requirement, owningEntryID string, progress *models.Progress) Result {
	if !isMet(req, owningEntryID, progress) {
		return Result{IsMet: false, HiddenEntries: []string{}, VisibleEntries: []string{}}
	}
	return Result{
		IsMet:          true,
		HiddenEntries:  orEmpty(req.Hides),
		VisibleEntries: orEmpty(req.Shows),
	}
}

func isMet(req models.Requirement, owningEntryID string, progress *models.Progress) bool {
	switch req.Type {
	case models.RequirementOnce:
		entryID := req.EntryID
		if entryID == "" {
			entryID = owningEntryID
		}
		return !progress.HasTaken(entryID, req.Value)
	case models.RequirementSpell,
		models.RequirementItem,
		models.RequirementFeature,
		models.RequirementMovementType,
		models.RequirementClass,
		models.RequirementSpecies:
		// Character state is not modelled; these always pass.
		return true
	default:
		return true
	}
}

func orEmpty(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	out := make([]string, len(ids))
	copy(out, ids)
	return out
}
