package adventure

import (
	"testing"

	"github.com/example/gamebook/internal/models"
)

func linearBook() *models.BookContent {
	return &models.BookContent{
		Metadata: models.BookMetadata{ID: 1, Title: "Linear"},
		Entries: map[string]models.Entry{
			"START": {ID: "START", Text: []string{"Begin."}, Choices: []models.Choice{{Text: "go", Target: "END"}}},
			"END":   {ID: "END", Text: []string{"Fin."}},
		},
	}
}

func TestValidateBook(t *testing.T) {
	tests := []struct {
		name        string
		book        *models.BookContent
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "book with START is valid",
			book:        linearBook(),
			wantAllowed: true,
		},
		{
			name: "book without START is invalid",
			book: &models.BookContent{
				Metadata: models.BookMetadata{ID: 9},
				Entries:  map[string]models.Entry{"INTRO": {ID: "INTRO"}},
			},
			wantAllowed: false,
			wantReason:  "book 9 has no START entry",
		},
		{
			name:        "nil book is invalid",
			book:        nil,
			wantAllowed: false,
			wantReason:  "book has no entries",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateBook(tt.book)

			if result.Allowed != tt.wantAllowed {
				t.Errorf("ValidateBook() Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if result.Reason != tt.wantReason {
				t.Errorf("ValidateBook() Reason = %q, want %q", result.Reason, tt.wantReason)
			}

			err := result.Error()
			if tt.wantAllowed && err != nil {
				t.Errorf("ValidateBook().Error() = %v, want nil", err)
			}
			if !tt.wantAllowed && err == nil {
				t.Error("ValidateBook().Error() = nil, want error")
			}
		})
	}
}

func TestCanResume(t *testing.T) {
	tests := []struct {
		name        string
		progress    *models.Progress
		wantAllowed bool
	}{
		{name: "no progress", progress: nil, wantAllowed: true},
		{name: "current entry exists", progress: &models.Progress{CurrentEntryID: "END"}, wantAllowed: true},
		{name: "dangling current entry", progress: &models.Progress{CurrentEntryID: "GONE"}, wantAllowed: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanResume(ResumeContext{Book: linearBook(), Progress: tt.progress})
			if result.Allowed != tt.wantAllowed {
				t.Errorf("CanResume() Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
		})
	}
}

func TestCanChoose(t *testing.T) {
	if !CanChoose(ChooseContext{Book: linearBook(), TargetID: "END"}).Allowed {
		t.Error("CanChoose(END) should be allowed")
	}
	result := CanChoose(ChooseContext{Book: linearBook(), TargetID: "NONEXISTENT"})
	if result.Allowed {
		t.Error("CanChoose(NONEXISTENT) should not be allowed")
	}
	if result.Reason != "entry NONEXISTENT does not exist" {
		t.Errorf("CanChoose() Reason = %q", result.Reason)
	}
}

func TestLint(t *testing.T) {
	book := &models.BookContent{
		Entries: map[string]models.Entry{
			"START": {ID: "START", ImageID: "img-1", Choices: []models.Choice{{Text: "on", Target: "A"}, {Text: "lost", Target: "MISSING"}}},
			"A":     {ID: "B"},
		},
		Images: map[string]models.ImageMetadata{},
	}

	issues := Lint(book)
	if len(issues) != 3 {
		t.Fatalf("Lint() returned %d issues, want 3: %+v", len(issues), issues)
	}
	if issues[0].EntryID != "A" {
		t.Errorf("issues[0].EntryID = %q, want A", issues[0].EntryID)
	}
	if issues[1].EntryID != "START" || issues[2].EntryID != "START" {
		t.Errorf("expected remaining issues on START, got %+v", issues[1:])
	}

	if got := Lint(linearBook()); len(got) != 0 {
		t.Errorf("Lint(linearBook) = %+v, want none", got)
	}
}
