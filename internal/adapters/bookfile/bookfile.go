// Package bookfile knows the on-disk layout of a book and decodes its files.
// It is shared by the filesystem and object storage content stores.
package bookfile

import (
	"encoding/json"
	"fmt"
	"path"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/gamebook/internal/models"
)

// Paths of the three files that make up a book, relative to its directory.
const (
	MetadataFile = "metadata.json"
	EntriesFile  = "content/entries.json"
	ImagesFile   = "content/images.json"
)

const bookDirPrefix = "book-"

// ParseBookDir extracts the book id from a "book-%08d" directory name.
func ParseBookDir(name string) (int, bool) {
	digits, ok := strings.CutPrefix(name, bookDirPrefix)
	if !ok || len(digits) != 8 {
		return 0, false
	}
	id, err := strconv.Atoi(digits)
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// YAMLTwin returns the YAML alternative of a JSON file name.
func YAMLTwin(name string) string {
	return strings.TrimSuffix(name, path.Ext(name)) + ".yaml"
}

// Decode unmarshals data as YAML when name has a YAML extension, JSON otherwise.
func Decode(name string, data []byte, v any) error {
	switch path.Ext(name) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
	default:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to parse %s: %w", name, err)
		}
	}
	return nil
}

type entriesDocument struct {
	Entries map[string]models.Entry `json:"entries" yaml:"entries"`
}

type imagesDocument struct {
	Images map[string]models.ImageMetadata `json:"images" yaml:"images"`
}

// DecodeMetadata parses a metadata file.
func DecodeMetadata(name string, data []byte) (models.BookMetadata, error) {
	var meta models.BookMetadata
	if err := Decode(name, data, &meta); err != nil {
		return models.BookMetadata{}, err
	}
	return meta, nil
}

// DecodeEntries parses an entries file. Entries without an id take their key.
func DecodeEntries(name string, data []byte) (map[string]models.Entry, error) {
	var doc entriesDocument
	if err := Decode(name, data, &doc); err != nil {
		return nil, err
	}
	if doc.Entries == nil {
		return map[string]models.Entry{}, nil
	}
	for key, e := range doc.Entries {
		if e.ID == "" {
			e.ID = key
			doc.Entries[key] = e
		}
	}
	return doc.Entries, nil
}

// DecodeImages parses an image catalog file. Images without an id take their key.
func DecodeImages(name string, data []byte) (map[string]models.ImageMetadata, error) {
	var doc imagesDocument
	if err := Decode(name, data, &doc); err != nil {
		return nil, err
	}
	if doc.Images == nil {
		return map[string]models.ImageMetadata{}, nil
	}
	for key, img := range doc.Images {
		if img.ID == "" {
			img.ID = key
			doc.Images[key] = img
		}
	}
	return doc.Images, nil
}
