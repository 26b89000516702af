package models

import (
	"fmt"
	"path"
	"strings"

	"github.com/example/gamebook/internal/core/condition"
)

// StartEntryID is the key of the entry every book begins at.
const StartEntryID = "START"

// BookStatus is the publication state of a book.
type BookStatus string

const (
	BookStatusDraft     BookStatus = "draft"
	BookStatusPublished BookStatus = "published"
	BookStatusArchived  BookStatus = "archived"
)

// BookContent is everything the reader needs to play one book.
type BookContent struct {
	Metadata BookMetadata             `json:"metadata" yaml:"metadata"`
	Entries  map[string]Entry         `json:"entries" yaml:"entries"`
	Images   map[string]ImageMetadata `json:"images" yaml:"images"`
}

// Entry returns the entry with the given id.
func (b *BookContent) Entry(id string) (Entry, bool) {
	if b == nil {
		return Entry{}, false
	}
	e, ok := b.Entries[id]
	return e, ok
}

// BookMetadata describes a book in the library.
type BookMetadata struct {
	ID          int        `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Authors     []string   `json:"authors" yaml:"authors"`
	Credits     []string   `json:"credits" yaml:"credits"`
	Version     string     `json:"version" yaml:"version"`
	PublishedAt string     `json:"publishedAt" yaml:"publishedAt"`
	Status      BookStatus `json:"status" yaml:"status"`
	CoverImage  CoverImage `json:"coverImage" yaml:"coverImage"`
}

// CoverImage holds the full size and thumbnail cover art.
type CoverImage struct {
	Full  ImageMetadata `json:"full" yaml:"full"`
	Thumb ImageMetadata `json:"thumb" yaml:"thumb"`
}

// ImageMetadata describes one image in a book's catalog.
type ImageMetadata struct {
	ID       string       `json:"id" yaml:"id"`
	Filename string       `json:"filename" yaml:"filename"`
	AltText  string       `json:"altText" yaml:"altText"`
	Metadata ImageDetails `json:"metadata" yaml:"metadata"`
}

// ImageDetails are the pixel and byte dimensions of an image.
type ImageDetails struct {
	Width  int    `json:"width" yaml:"width"`
	Height int    `json:"height" yaml:"height"`
	Format string `json:"format" yaml:"format"`
	Size   int64  `json:"size,omitempty" yaml:"size,omitempty"`
}

// Entry is a node of the adventure graph.
type Entry struct {
	ID      string   `json:"id" yaml:"id"`
	Text    []string `json:"text" yaml:"text"`
	ImageID string   `json:"imageId,omitempty" yaml:"imageId,omitempty"`
	Choices []Choice `json:"choices" yaml:"choices"`
}

// IsTerminal reports whether the entry has no authored choices.
func (e Entry) IsTerminal() bool {
	return len(e.Choices) == 0
}

// Choice is a labelled edge to another entry.
type Choice struct {
	Text        string       `json:"text" yaml:"text"`
	Target      string       `json:"target" yaml:"target"`
	Requirement *Requirement `json:"requirement,omitempty" yaml:"requirement,omitempty"`
	Visibility  *Visibility  `json:"visibility,omitempty" yaml:"visibility,omitempty"`
}

// RequirementKind names the gate a requirement applies.
type RequirementKind string

const (
	RequirementOnce         RequirementKind = "once"
	RequirementSpell        RequirementKind = "spell"
	RequirementItem         RequirementKind = "item"
	RequirementFeature      RequirementKind = "feature"
	RequirementMovementType RequirementKind = "movementType"
	RequirementClass        RequirementKind = "class"
	RequirementSpecies      RequirementKind = "species"
)

// Requirement gates whether a choice may be offered.
type Requirement struct {
	Type    RequirementKind `json:"type" yaml:"type"`
	Value   string          `json:"value,omitempty" yaml:"value,omitempty"`
	EntryID string          `json:"entryId,omitempty" yaml:"entryId,omitempty"`
	Hides   []string        `json:"hides,omitempty" yaml:"hides,omitempty"`
	Shows   []string        `json:"shows,omitempty" yaml:"shows,omitempty"`
}

// Visibility controls whether an ungated choice is shown.
type Visibility struct {
	StartVisible *bool             `json:"startVisible,omitempty" yaml:"startVisible,omitempty"`
	States       *VisibilityStates `json:"states,omitempty" yaml:"states,omitempty"`
}

// IsStartVisible returns the initial visibility. Unset means visible.
func (v *Visibility) IsStartVisible() bool {
	if v == nil || v.StartVisible == nil {
		return true
	}
	return *v.StartVisible
}

// VisibilityStates holds the optional show and hide rules.
type VisibilityStates struct {
	Show *StateRule `json:"show,omitempty" yaml:"show,omitempty"`
	Hide *StateRule `json:"hide,omitempty" yaml:"hide,omitempty"`
}

// StateRule is a when/unless pair of conditions.
type StateRule struct {
	When   condition.Expr `json:"when" yaml:"when"`
	Unless condition.Expr `json:"unless" yaml:"unless"`
}

// Rule converts the authored pair into an evaluable rule.
func (r *StateRule) Rule() condition.Rule {
	return condition.Rule{When: r.When.Condition, Unless: r.Unless.Condition}
}

// BookDir returns the storage directory name for a book id.
func BookDir(bookID int) string {
	return fmt.Sprintf("book-%08d", bookID)
}

// ImagePath returns the public path of an image file within a book.
func ImagePath(bookID int, filename string) string {
	return "/" + path.Join("books", BookDir(bookID), "images", filename)
}

// ThumbnailFilename inserts "-thumb" before the extension.
// Names without an extension, or already thumbnails, are returned unchanged.
func ThumbnailFilename(filename string) string {
	ext := path.Ext(filename)
	if ext == "" {
		return filename
	}
	base := strings.TrimSuffix(filename, ext)
	if strings.HasSuffix(base, "-thumb") {
		return filename
	}
	return base + "-thumb" + ext
}
