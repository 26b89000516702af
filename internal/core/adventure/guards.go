// Package adventure contains the pure business logic for reading sessions:
// book validation, progress transitions and choice filtering.
// This is part of the Functional Core - no I/O, only pure functions.
package adventure

import (
	"fmt"
	"sort"

	"github.com/example/gamebook/internal/models"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string // Human-readable reason (populated when not allowed)
}

// Error returns the guard result as an error if not allowed, nil otherwise.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// ValidateBook checks the structural contract a book must satisfy to be read.
// Rule: the entries mapping must contain the START entry.
func ValidateBook(book *models.BookContent) GuardResult {
	if book == nil || len(book.Entries) == 0 {
		return GuardResult{Allowed: false, Reason: "book has no entries"}
	}
	if _, ok := book.Entries[models.StartEntryID]; !ok {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("book %d has no %s entry", book.Metadata.ID, models.StartEntryID),
		}
	}
	return GuardResult{Allowed: true}
}

// ResumeContext is the input for deciding where a session resumes.
type ResumeContext struct {
	Book     *models.BookContent
	Progress *models.Progress
}

// CanResume evaluates whether saved progress points at an entry that exists.
// Rule: a dangling current entry is a load error, not a silent restart.
func CanResume(ctx ResumeContext) GuardResult {
	if ctx.Progress == nil {
		return GuardResult{Allowed: true}
	}
	if _, ok := ctx.Book.Entry(ctx.Progress.CurrentEntryID); !ok {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("entry %s not found", ctx.Progress.CurrentEntryID),
		}
	}
	return GuardResult{Allowed: true}
}

// ChooseContext is the input for validating a choice.
type ChooseContext struct {
	Book     *models.BookContent
	TargetID string
}

// CanChoose evaluates whether the target of a choice resolves to an entry.
func CanChoose(ctx ChooseContext) GuardResult {
	if _, ok := ctx.Book.Entry(ctx.TargetID); !ok {
		return GuardResult{
			Allowed: false,
			Reason:  fmt.Sprintf("entry %s does not exist", ctx.TargetID),
		}
	}
	return GuardResult{Allowed: true}
}

// Issue is a non-fatal content problem reported by Lint.
type Issue struct {
	EntryID string
	Message string
}

// Lint reports content problems that do not prevent reading:
// entries whose id disagrees with their key and choices whose target does not resolve.
// Issues are sorted by entry id for stable output.
func Lint(book *models.BookContent) []Issue {
	if book == nil {
		return nil
	}

	var issues []Issue
	for key, entry := range book.Entries {
		if entry.ID != "" && entry.ID != key {
			issues = append(issues, Issue{
				EntryID: key,
				Message: fmt.Sprintf("entry id %q does not match key %q", entry.ID, key),
			})
		}
		for _, choice := range entry.Choices {
			if _, ok := book.Entries[choice.Target]; !ok {
				issues = append(issues, Issue{
					EntryID: key,
					Message: fmt.Sprintf("choice %q targets missing entry %q", choice.Text, choice.Target),
				})
			}
		}
		if entry.ImageID != "" {
			if _, ok := book.Images[entry.ImageID]; !ok {
				issues = append(issues, Issue{
					EntryID: key,
					Message: fmt.Sprintf("image %q is not in the catalog", entry.ImageID),
				})
			}
		}
	}

	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].EntryID != issues[j].EntryID {
			return issues[i].EntryID < issues[j].EntryID
		}
		return issues[i].Message < issues[j].Message
	})
	return issues
}
