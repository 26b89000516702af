package app

import (
	"context"
	"sort"
	"sync"

	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/secondary"
)

// ============================================================================
// Mock Implementations
// ============================================================================

var _ secondary.ProgressRepository = (*mockProgressRepository)(nil)

type progressKey struct {
	userID string
	bookID int
}

// mockProgressRepository implements secondary.ProgressRepository for testing.
type mockProgressRepository struct {
	mu        sync.Mutex
	records   map[progressKey]*models.Progress
	getErr    error
	saveErr   error
	deleteErr error
	saves     int
	deletes   int

	// saveHook runs inside Save before the record is stored.
	saveHook func()
}

func newMockProgressRepository() *mockProgressRepository {
	return &mockProgressRepository{records: make(map[progressKey]*models.Progress)}
}

func (m *mockProgressRepository) Get(ctx context.Context, userID string, bookID int) (*models.Progress, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.records[progressKey{userID, bookID}]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockProgressRepository) Save(ctx context.Context, progress *models.Progress) error {
	if m.saveHook != nil {
		m.saveHook()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := *progress
	m.records[progressKey{progress.UserID, progress.BookID}] = &cp
	m.saves++
	return nil
}

func (m *mockProgressRepository) Delete(ctx context.Context, userID string, bookID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.records, progressKey{userID, bookID})
	m.deletes++
	return nil
}

func (m *mockProgressRepository) record(userID string, bookID int) *models.Progress {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[progressKey{userID, bookID}]
}

var _ secondary.ContentStore = (*mockContentStore)(nil)

// mockContentStore implements secondary.ContentStore for testing.
type mockContentStore struct {
	books   map[int]*models.BookContent
	loadErr error
	listErr error
	loads   int
}

func newMockContentStore(books ...*models.BookContent) *mockContentStore {
	m := &mockContentStore{books: make(map[int]*models.BookContent)}
	for _, b := range books {
		m.books[b.Metadata.ID] = b
	}
	return m
}

func (m *mockContentStore) LoadBook(ctx context.Context, bookID int) (*models.BookContent, error) {
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	b, ok := m.books[bookID]
	if !ok {
		return nil, models.ErrNotFound
	}
	return b, nil
}

func (m *mockContentStore) ListBooks(ctx context.Context) ([]models.BookMetadata, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]models.BookMetadata, 0, len(m.books))
	for _, b := range m.books {
		out = append(out, b.Metadata)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

var _ secondary.EventPublisher = (*mockEventPublisher)(nil)

// mockEventPublisher records published events.
type mockEventPublisher struct {
	mu     sync.Mutex
	events []secondary.ProgressEvent
	err    error
}

func (m *mockEventPublisher) PublishProgressEvent(ctx context.Context, event secondary.ProgressEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return m.err
}

func (m *mockEventPublisher) types() []secondary.ProgressEventType {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]secondary.ProgressEventType, len(m.events))
	for i, e := range m.events {
		out[i] = e.Type
	}
	return out
}

// ============================================================================
// Fixtures
// ============================================================================

// linearBook is START -> END.
func linearBook() *models.BookContent {
	return &models.BookContent{
		Metadata: models.BookMetadata{ID: 1, Title: "Linear"},
		Entries: map[string]models.Entry{
			"START": {ID: "START", Text: []string{"Begin."}, Choices: []models.Choice{{Text: "go", Target: "END"}}},
			"END":   {ID: "END", Text: []string{"Fin."}},
		},
	}
}

// gatedBook has a once-gated edge A -> B and a way back from B to A.
func gatedBook() *models.BookContent {
	return &models.BookContent{
		Metadata: models.BookMetadata{ID: 2, Title: "Gated"},
		Entries: map[string]models.Entry{
			"START": {ID: "START", Choices: []models.Choice{{Text: "enter", Target: "A"}}},
			"A": {ID: "A", Choices: []models.Choice{
				{Text: "to B", Target: "B", Requirement: &models.Requirement{Type: models.RequirementOnce, EntryID: "A", Value: "B"}},
				{Text: "to END", Target: "END"},
			}},
			"B":   {ID: "B", Choices: []models.Choice{{Text: "back", Target: "A"}}},
			"END": {ID: "END"},
		},
		Images: map[string]models.ImageMetadata{},
	}
}
