package app

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/primary"
)

func newTestReaderService(content *mockContentStore, repo *mockProgressRepository) *ReaderServiceImpl {
	return NewReaderService(content, NewProgressTracker(repo, zap.NewNop()), nil, zap.NewNop())
}

func TestReaderService_GetState_LoadsOnce(t *testing.T) {
	content := newMockContentStore(linearBook())
	svc := newTestReaderService(content, newMockProgressRepository())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		state, err := svc.GetState(ctx, "reader-1", 1)
		if err != nil {
			t.Fatalf("GetState() error = %v", err)
		}
		if state.CurrentEntry.ID != "START" {
			t.Errorf("CurrentEntry = %s, want START", state.CurrentEntry.ID)
		}
	}
	if content.loads != 1 {
		t.Errorf("content loads = %d, want 1", content.loads)
	}
}

func TestReaderService_GetState_LoadErrorInState(t *testing.T) {
	svc := newTestReaderService(newMockContentStore(), newMockProgressRepository())

	state, err := svc.GetState(context.Background(), "reader-1", 42)
	if err != nil {
		t.Fatalf("GetState() error = %v, want nil", err)
	}
	if state.Error != primary.LoadErrorMessage {
		t.Errorf("Error = %q, want %q", state.Error, primary.LoadErrorMessage)
	}
}

func TestReaderService_SessionsAreIndependent(t *testing.T) {
	repo := newMockProgressRepository()
	svc := newTestReaderService(newMockContentStore(linearBook()), repo)
	ctx := context.Background()

	if _, err := svc.Choose(ctx, primary.ChooseRequest{UserID: "alice", BookID: 1, TargetID: "END", Text: "go"}); err != nil {
		t.Fatalf("Choose() error = %v", err)
	}

	bob, err := svc.GetState(ctx, "bob", 1)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if bob.CurrentEntry.ID != "START" {
		t.Errorf("bob CurrentEntry = %s, want START", bob.CurrentEntry.ID)
	}
	if repo.record("alice", 1) == nil {
		t.Error("alice progress should be saved")
	}
	if repo.record("bob", 1) != nil {
		t.Error("bob should have no progress")
	}
}

func TestReaderService_Choose_LoadError(t *testing.T) {
	svc := newTestReaderService(newMockContentStore(), newMockProgressRepository())

	_, err := svc.Choose(context.Background(), primary.ChooseRequest{UserID: "u", BookID: 9, TargetID: "END"})
	if !errors.Is(err, models.ErrContentLoad) {
		t.Errorf("Choose() error = %v, want ErrContentLoad", err)
	}
}

func TestReaderService_RestartAndProgress(t *testing.T) {
	repo := newMockProgressRepository()
	svc := newTestReaderService(newMockContentStore(linearBook()), repo)
	ctx := context.Background()

	if _, err := svc.Choose(ctx, primary.ChooseRequest{UserID: "u", BookID: 1, TargetID: "END"}); err != nil {
		t.Fatalf("Choose() error = %v", err)
	}
	state, err := svc.Restart(ctx, "u", 1)
	if err != nil {
		t.Fatalf("Restart() error = %v", err)
	}
	if state.CurrentEntry.ID != "START" {
		t.Errorf("CurrentEntry = %s, want START", state.CurrentEntry.ID)
	}

	progress, err := svc.GetProgress(ctx, "u", 1)
	if err != nil {
		t.Fatalf("GetProgress() error = %v", err)
	}
	if progress.CurrentEntryID != models.StartEntryID || len(progress.Choices) != 0 {
		t.Errorf("progress = %+v, want START with empty log", progress)
	}
}

func TestReaderService_CloseForgetsSession(t *testing.T) {
	content := newMockContentStore(linearBook())
	svc := newTestReaderService(content, newMockProgressRepository())
	ctx := context.Background()

	if _, err := svc.GetState(ctx, "u", 1); err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if err := svc.Close(ctx, "u", 1); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := svc.ReportImageLoadFailure(ctx, "u", 1, "img"); !errors.Is(err, models.ErrSessionNotLoaded) {
		t.Errorf("ReportImageLoadFailure() error = %v, want ErrSessionNotLoaded", err)
	}

	if _, err := svc.GetState(ctx, "u", 1); err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if content.loads != 2 {
		t.Errorf("content loads = %d, want 2 after reopening", content.loads)
	}
}

func TestReaderService_Load_Reloads(t *testing.T) {
	content := newMockContentStore(linearBook())
	svc := newTestReaderService(content, newMockProgressRepository())
	ctx := context.Background()

	if _, err := svc.Load(ctx, "u", 1); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if _, err := svc.Load(ctx, "u", 1); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if content.loads != 2 {
		t.Errorf("content loads = %d, want 2", content.loads)
	}
}

func TestReaderService_RecoversAfterTransientLoadFailure(t *testing.T) {
	content := newMockContentStore(linearBook())
	content.loadErr = errors.New("transient network error")
	svc := newTestReaderService(content, newMockProgressRepository())
	ctx := context.Background()

	state, err := svc.GetState(ctx, "reader-1", 1)
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if state.Error != primary.LoadErrorMessage {
		t.Fatalf("Error = %q, want %q", state.Error, primary.LoadErrorMessage)
	}

	content.loadErr = nil

	state, err = svc.GetState(ctx, "reader-1", 1)
	if err != nil {
		t.Fatalf("GetState() after recovery error = %v", err)
	}
	if state.Error != "" || state.CurrentEntry == nil || state.CurrentEntry.ID != "START" {
		t.Errorf("state after recovery = %+v, want START without error", state)
	}
	if content.loads != 2 {
		t.Errorf("content loads = %d, want 2", content.loads)
	}

	if _, err := svc.Restart(ctx, "reader-1", 1); err != nil {
		t.Errorf("Restart() after recovery error = %v", err)
	}
	if err := svc.Close(ctx, "reader-1", 1); err != nil {
		t.Errorf("Close() after recovery error = %v", err)
	}
}

func TestReaderService_CloseForgetsFailedSession(t *testing.T) {
	content := newMockContentStore(linearBook())
	content.loadErr = errors.New("bucket unavailable")
	svc := newTestReaderService(content, newMockProgressRepository())
	ctx := context.Background()

	if _, err := svc.GetState(ctx, "reader-1", 1); err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if err := svc.Close(ctx, "reader-1", 1); !errors.Is(err, models.ErrContentLoad) {
		t.Fatalf("Close() error = %v, want ErrContentLoad", err)
	}
	if _, err := svc.existing("reader-1", 1); !errors.Is(err, models.ErrSessionNotLoaded) {
		t.Errorf("session still registered after failed Close, err = %v", err)
	}
}
