package bookfile

import (
	"testing"
)

func TestParseBookDir(t *testing.T) {
	tests := []struct {
		name   string
		wantID int
		wantOK bool
	}{
		{"book-00000001", 1, true},
		{"book-00001234", 1234, true},
		{"book-1", 0, false},
		{"book-abcdefgh", 0, false},
		{"images", 0, false},
		{"book-000000001", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseBookDir(tt.name)
			if ok != tt.wantOK || id != tt.wantID {
				t.Errorf("ParseBookDir(%q) = (%d, %v), want (%d, %v)", tt.name, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestYAMLTwin(t *testing.T) {
	if got := YAMLTwin(EntriesFile); got != "content/entries.yaml" {
		t.Errorf("YAMLTwin() = %q, want %q", got, "content/entries.yaml")
	}
}

func TestDecodeEntries_JSON(t *testing.T) {
	data := []byte(`{"entries": {
		"START": {"text": ["Hi"], "choices": [{"text": "Go", "target": "A", "visibility": {"startVisible": false, "states": {"show": {"when": "A"}}}}]},
		"A": {"id": "A", "text": ["End"], "choices": []}
	}}`)

	entries, err := DecodeEntries("entries.json", data)
	if err != nil {
		t.Fatalf("DecodeEntries() error = %v", err)
	}
	start, ok := entries["START"]
	if !ok {
		t.Fatal("START entry missing")
	}
	if start.ID != "START" {
		t.Errorf("START.ID = %q, want key fallback", start.ID)
	}
	if len(start.Choices) != 1 || start.Choices[0].Visibility == nil {
		t.Fatalf("START choices = %+v, want one choice with visibility", start.Choices)
	}
	if start.Choices[0].Visibility.IsStartVisible() {
		t.Error("IsStartVisible() = true, want false")
	}
	if start.Choices[0].Visibility.States.Show.When.IsZero() {
		t.Error("show.when should be decoded")
	}
}

func TestDecodeEntries_YAML(t *testing.T) {
	data := []byte(`
entries:
  START:
    text: ["Hello"]
    choices:
      - text: Open
        target: DOOR
        requirement:
          type: once
          value: DOOR
`)

	entries, err := DecodeEntries("entries.yaml", data)
	if err != nil {
		t.Fatalf("DecodeEntries() error = %v", err)
	}
	req := entries["START"].Choices[0].Requirement
	if req == nil || req.Type != "once" || req.Value != "DOOR" {
		t.Errorf("requirement = %+v, want once/DOOR", req)
	}
}

func TestDecodeImages_EmptyDocument(t *testing.T) {
	images, err := DecodeImages("images.json", []byte(`{}`))
	if err != nil {
		t.Fatalf("DecodeImages() error = %v", err)
	}
	if images == nil || len(images) != 0 {
		t.Errorf("DecodeImages() = %v, want empty non-nil map", images)
	}
}

func TestDecode_InvalidJSON(t *testing.T) {
	if _, err := DecodeMetadata("metadata.json", []byte(`{`)); err == nil {
		t.Error("DecodeMetadata() expected error for malformed JSON")
	}
}
