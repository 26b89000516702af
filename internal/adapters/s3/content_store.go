// Package s3 reads book content from an S3 compatible bucket.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/example/gamebook/internal/adapters/bookfile"
	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/secondary"
)

const listConcurrency = 8

// ObjectAPI is the subset of the S3 client the store uses.
type ObjectAPI interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

var _ secondary.ContentStore = (*ContentStore)(nil)

// ContentStore implements secondary.ContentStore over objects laid out as
// <prefix>/book-XXXXXXXX/metadata.json and friends.
type ContentStore struct {
	client ObjectAPI
	bucket string
	prefix string
	logger *zap.Logger
}

// NewClient builds an S3 client from the default AWS credential chain.
// A non-empty endpoint targets an S3 compatible service with path-style addressing.
func NewClient(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// NewContentStore creates a content store reading from bucket under prefix.
func NewContentStore(client ObjectAPI, bucket, prefix string, logger *zap.Logger) *ContentStore {
	return &ContentStore{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logger.Named("S3ContentStore"),
	}
}

func (s *ContentStore) key(parts ...string) string {
	return path.Join(append([]string{s.prefix}, parts...)...)
}

// LoadBook fetches the three book files concurrently.
func (s *ContentStore) LoadBook(ctx context.Context, bookID int) (*models.BookContent, error) {
	dir := models.BookDir(bookID)
	book := &models.BookContent{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		name, data, err := s.fetchBookFile(gctx, dir, bookfile.MetadataFile)
		if err != nil {
			return err
		}
		book.Metadata, err = bookfile.DecodeMetadata(name, data)
		return err
	})
	g.Go(func() error {
		name, data, err := s.fetchBookFile(gctx, dir, bookfile.EntriesFile)
		if err != nil {
			return err
		}
		book.Entries, err = bookfile.DecodeEntries(name, data)
		return err
	})
	g.Go(func() error {
		name, data, err := s.fetchBookFile(gctx, dir, bookfile.ImagesFile)
		if err != nil {
			return err
		}
		book.Images, err = bookfile.DecodeImages(name, data)
		return err
	})

	if err := g.Wait(); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, fmt.Errorf("book %d: %w", bookID, err)
		}
		s.logger.Warn("Failed to fetch book", zap.Int("bookID", bookID), zap.Error(err))
		return nil, fmt.Errorf("failed to fetch book %d: %w", bookID, err)
	}
	return book, nil
}

// fetchBookFile downloads name, falling back to its YAML twin when the JSON object is absent.
func (s *ContentStore) fetchBookFile(ctx context.Context, dir, name string) (string, []byte, error) {
	data, err := s.getObject(ctx, s.key(dir, name))
	if err == nil {
		return name, data, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return "", nil, err
	}

	twin := bookfile.YAMLTwin(name)
	data, yerr := s.getObject(ctx, s.key(dir, twin))
	if yerr != nil {
		return "", nil, err
	}
	return twin, data, nil
}

func (s *ContentStore) getObject(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return nil, fmt.Errorf("object %s: %w", key, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

// ListBooks lists the book prefixes in the bucket and returns their metadata ordered by id.
// Books whose metadata cannot be fetched are skipped.
func (s *ContentStore) ListBooks(ctx context.Context) ([]models.BookMetadata, error) {
	listPrefix := s.prefix + "/"
	if s.prefix == "" {
		listPrefix = ""
	}

	var ids []int
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(listPrefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list books: %w", err)
		}
		for _, cp := range page.CommonPrefixes {
			name := path.Base(strings.TrimSuffix(aws.ToString(cp.Prefix), "/"))
			if id, ok := bookfile.ParseBookDir(name); ok {
				ids = append(ids, id)
			}
		}
	}

	var (
		mu    sync.Mutex
		books = []models.BookMetadata{}
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for _, id := range ids {
		g.Go(func() error {
			name, data, err := s.fetchBookFile(gctx, models.BookDir(id), bookfile.MetadataFile)
			if err == nil {
				var meta models.BookMetadata
				if meta, err = bookfile.DecodeMetadata(name, data); err == nil {
					if meta.ID == 0 {
						meta.ID = id
					}
					mu.Lock()
					books = append(books, meta)
					mu.Unlock()
					return nil
				}
			}
			if ctxErr := gctx.Err(); ctxErr != nil {
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
