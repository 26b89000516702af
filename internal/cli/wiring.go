package cli

import (
	"context"

	cliadapter "github.com/example/gamebook/internal/adapters/cli"
	"github.com/example/gamebook/internal/adapters/tui"
	"github.com/example/gamebook/internal/wire"
)

func wireReader() *cliadapter.ReaderAdapter {
	return wire.ReaderAdapter()
}

func wireLibrary() *cliadapter.LibraryAdapter {
	return wire.LibraryAdapter()
}

func runTUI(ctx context.Context, userID string, bookID int) error {
	return tui.Run(ctx, wire.ReaderService(), userID, bookID)
}
