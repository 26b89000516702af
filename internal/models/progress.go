package models

import "time"

// Progress is a reader's persisted position and history within one book.
type Progress struct {
	UserID         string         `json:"user_id"`
	BookID         int            `json:"book_id"`
	CurrentEntryID string         `json:"current_entry_id"`
	VisitedEntries []string       `json:"visited_entries"`
	Choices        []ChoiceRecord `json:"choices"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// ChoiceRecord is one transition in the choice log.
type ChoiceRecord struct {
	EntryID   string    `json:"entry_id"`
	TargetID  string    `json:"target_id"`
	Timestamp time.Time `json:"timestamp"`
}

// HasTaken reports whether the edge entryID -> targetID is in the choice log.
func (p *Progress) HasTaken(entryID, targetID string) bool {
	if p == nil {
		return false
	}
	for _, c := range p.Choices {
		if c.EntryID == entryID && c.TargetID == targetID {
			return true
		}
	}
	return false
}

// LastChoice returns the most recent choice, if any.
func (p *Progress) LastChoice() (ChoiceRecord, bool) {
	if p == nil || len(p.Choices) == 0 {
		return ChoiceRecord{}, false
	}
	return p.Choices[len(p.Choices)-1], true
}

// IsCompleted reports whether a terminal entry has been reached.
func (p *Progress) IsCompleted() bool {
	return p != nil && p.CompletedAt != nil
}
