package httpapi

import (
	"errors"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/example/gamebook/internal/adapters/bookfile"
	"github.com/example/gamebook/internal/ctxutil"
	"github.com/example/gamebook/internal/models"
	"github.com/example/gamebook/internal/ports/primary"
)

// ChooseBody is the request body of POST /sessions/:bookId/choices.
type ChooseBody struct {
	Target string `json:"target"`
	Text   string `json:"text"`
}

// requireBookID parses :bookId, writing a 400 response when it is invalid.
func (s *Server) requireBookID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("bookId"))
	if err != nil || id < 0 {
		_ = c.JSON(http.StatusBadRequest, APIError{Message: "Invalid book ID"})
		return 0, false
	}
	return id, true
}

func (s *Server) healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listBooks(c echo.Context) error {
	books, err := s.library.ListBooks(c.Request().Context())
	if err != nil {
		s.logger.Error("Failed to list books", zap.Error(err))
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

func (s *Server) getBookContent(c echo.Context) error {
	bookID, ok := s.requireBookID(c)
	if !ok {
		return nil
	}

	book, err := s.library.GetBook(c.Request().Context(), bookID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return c.JSON(http.StatusNotFound, APIError{Message: "Book " + strconv.Itoa(bookID) + " not found"})
		}
		s.logger.Error("Failed to read book files", zap.Int("bookID", bookID), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, APIError{Message: "Failed to read book files"})
	}
	return c.JSON(http.StatusOK, book)
}

func (s *Server) serveImage(c echo.Context) error {
	dir := c.Param("bookId")
	if _, ok := bookfile.ParseBookDir(dir); !ok {
		return c.JSON(http.StatusNotFound, APIError{Message: "Resource not found"})
	}
	file := filepath.Base(c.Param("file"))
	return c.File(filepath.Join(s.opts.ImageRoot, dir, "images", file))
}

func (s *Server) getSession(c echo.Context) error {
	bookID, ok := s.requireBookID(c)
	if !ok {
		return nil
	}
	state, err := s.reader.GetState(c.Request().Context(), readerID(c), bookID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

func (s *Server) choose(c echo.Context) error {
	bookID, ok := s.requireBookID(c)
	if !ok {
		return nil
	}
	var body ChooseBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, APIError{Message: "Invalid request body: " + err.Error()})
	}
	if body.Target == "" {
		return c.JSON(http.StatusBadRequest, APIError{Message: "target is required"})
	}

	state, err := s.reader.Choose(c.Request().Context(), primary.ChooseRequest{
		UserID:   readerID(c),
		BookID:   bookID,
		TargetID: body.Target,
		Text:     body.Text,
	})
	if err != nil {
		choicesTotal.WithLabelValues("error").Inc()
		return handleServiceError(c, err)
	}
	choicesTotal.WithLabelValues("ok").Inc()
	return c.JSON(http.StatusOK, state)
}

func (s *Server) restart(c echo.Context) error {
	bookID, ok := s.requireBookID(c)
	if !ok {
		return nil
	}
	state, err := s.reader.Restart(c.Request().Context(), readerID(c), bookID)
	if err != nil {
		return handleServiceError(c, err)
	}
	return c.JSON(http.StatusOK, state)
}

func (s *Server) closeSession(c echo.Context) error {
	bookID, ok := s.requireBookID(c)
	if !ok {
		return nil
	}
	if err := s.reader.Close(c.Request().Context(), readerID(c), bookID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) reportImageFailure(c echo.Context) error {
	bookID, ok := s.requireBookID(c)
	if !ok {
		return nil
	}
	imageID := c.Param("imageId")
	if err := s.reader.ReportImageLoadFailure(c.Request().Context(), readerID(c), bookID, imageID); err != nil {
		return handleServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getProgress(c echo.Context) error {
	bookID, ok := s.requireBookID(c)
	if !ok {
		return nil
	}
	progress, err := s.reader.GetProgress(c.Request().Context(), readerID(c), bookID)
	if err != nil {
		return handleServiceError(c, err)
	}
	if progress == nil {
		return c.JSON(http.StatusNotFound, APIError{Message: "No progress for this book"})
	}
	return c.JSON(http.StatusOK, progress)
}

func readerID(c echo.Context) string {
	return ctxutil.ReaderFromContext(c.Request().Context())
}
