// Package filesystem contains filesystem-based adapter implementations.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/gamebook/internal/adapters/bookfile"
	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/secondary"
)

// listConcurrency bounds the metadata reads issued by ListBooks.
const listConcurrency = 8

var _ secondary.ContentStore = (*ContentStore)(nil)

// ContentStore implements secondary.ContentStore over a directory of book-XXXXXXXX folders.
type ContentStore struct {
	root   string
	logger *zap.Logger
}

// NewContentStore creates a content store rooted at root.
func NewContentStore(root string, logger *zap.Logger) *ContentStore {
	return &ContentStore{
		root:   root,
		logger: logger.Named("FsContentStore"),
	}
}

// Root returns the directory the store reads from.
func (s *ContentStore) Root() string {
	return s.root
}

// LoadBook reads the metadata, entries and image catalog of a book concurrently.
func (s *ContentStore) LoadBook(ctx context.Context, bookID int) (*models.BookContent, error) {
	dir := filepath.Join(s.root, models.BookDir(bookID))
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) || (err == nil && !info.IsDir()) {
		return nil, fmt.Errorf("book %d: %w", bookID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to stat book %d: %w", bookID, err)
	}

	book := &models.BookContent{}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		name, data, err := s.readBookFile(ctx, dir, bookfile.MetadataFile)
		if err != nil {
			return err
		}
		book.Metadata, err = bookfile.DecodeMetadata(name, data)
		return err
	})
	g.Go(func() error {
		name, data, err := s.readBookFile(ctx, dir, bookfile.EntriesFile)
		if err != nil {
			return err
		}
		book.Entries, err = bookfile.DecodeEntries(name, data)
		return err
	})
	g.Go(func() error {
		name, data, err := s.readBookFile(ctx, dir, bookfile.ImagesFile)
		if err != nil {
			return err
		}
		book.Images, err = bookfile.DecodeImages(name, data)
		return err
	})

	if err := g.Wait(); err != nil {
		s.logger.Warn("Failed to read book files", zap.Int("bookID", bookID), zap.Error(err))
		return nil, fmt.Errorf("failed to read book %d: %w", bookID, err)
	}

	s.logger.Debug("Book loaded",
		zap.Int("bookID", bookID),
		zap.Int("entries", len(book.Entries)),
		zap.Int("images", len(book.Images)),
	)
	return book, nil
}

// readBookFile reads name inside dir, falling back to its YAML twin.
func (s *ContentStore) readBookFile(ctx context.Context, dir, name string) (string, []byte, error) {
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	if err == nil {
		return name, data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", nil, fmt.Errorf("failed to read %s: %w", name, err)
	}

	twin := bookfile.YAMLTwin(name)
	data, yerr := os.ReadFile(filepath.Join(dir, filepath.FromSlash(twin)))
	if yerr != nil {
		return "", nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return twin, data, nil
}

// ListBooks scans the root for book directories and returns their metadata ordered by id.
// Books whose metadata cannot be read are skipped.
func (s *ContentStore) ListBooks(ctx context.Context) ([]models.BookMetadata, error) {
	dirents, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.BookMetadata{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	var (
		mu    sync.Mutex
		books = []models.BookMetadata{}
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)

	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		id, ok := bookfile.ParseBookDir(d.Name())
		if !ok {
			continue
		}
		dir := filepath.Join(s.root, d.Name())
		g.Go(func() error {
			name, data, err := s.readBookFile(ctx, dir, bookfile.MetadataFile)
			if err == nil {
				var meta models.BookMetadata
				meta, err = bookfile.DecodeMetadata(name, data)
				if err == nil {
					if meta.ID == 0 {
						meta.ID = id
					}
					mu.Lock()
					books = append(books, meta)
					mu.Unlock()
					return nil
				}
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			s.logger.Warn("Skipping unreadable book", zap.Int("bookID", id), zap.Error(err))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}

	sort.Slice(books, func(i, j int) bool { return books[i].ID < books[j].ID })
	return books, nil
}
