package adventure

import (
	"github.com/example/gamebook/internal/core/requirement"
	"github.com/example/gamebook/internal/core/visibility"
	"github.com/example/gamebook/internal/models"
)

// ComputeAvailableChoices filters entry's choices in authored order.
// A choice is dropped when its requirement is unmet or when the visibility
// manager hides it. Requirement hints are recorded on vm as a side effect.
func ComputeAvailableChoices(entry models.Entry, progress *models.Progress, vm *visibility.Manager, lastChosenTarget string) []models.Choice {
	available := make([]models.Choice, 0, len(entry.Choices))
	for _, choice := range entry.Choices {
		if choice.Requirement != nil {
			result := requirement.Evaluate(*choice.Requirement, entry.ID, progress)
			if !result.IsMet {
				continue
			}
			vm.ApplyHints(result.HiddenEntries, result.VisibleEntries)
		}
		if !vm.EvaluateVisibility(choice, lastChosenTarget) {
			continue
		}
		available = append(available, choice)
	}
	return available
}
