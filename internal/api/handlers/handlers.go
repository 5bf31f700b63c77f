package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/dvloznov/budget-advisor/internal/api/middleware"
	"github.com/dvloznov/budget-advisor/internal/domain"
	"github.com/dvloznov/budget-advisor/internal/logger"
	"github.com/dvloznov/budget-advisor/internal/table"
	"github.com/rs/zerolog"
)

const (
	uploadField   = "file"
	previewRows   = 5
	invalidFormat = "Invalid file format"
)

// Advisor produces the four-strategy response for a table.
type Advisor interface {
	Advise(ctx context.Context, t *table.Table) domain.Response
}

// AdviceHandler handles spreadsheet upload and suggestion endpoints.
type AdviceHandler struct {
	advisor Advisor
	log     zerolog.Logger
}

// NewAdviceHandler creates a new advice handler.
func NewAdviceHandler(advisor Advisor, log zerolog.Logger) *AdviceHandler {
	return &AdviceHandler{
		advisor: advisor,
		log:     log,
	}
}

// UploadResponse describes a parsed spreadsheet without running any advice.
type UploadResponse struct {
	Columns []string                          `json:"columns"`
	Rows    int                               `json:"rows"`
	Preview map[string]map[string]interface{} `json:"preview"`
}

// Upload handles POST /upload
func (h *AdviceHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile(uploadField)
	if err != nil {
		h.writeFormError(w, err)
		return
	}
	defer file.Close()

	if !table.SupportedFile(header.Filename) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"error": invalidFormat})
		return
	}

	t, err := table.Load(header.Filename, file)
	if err != nil {
		h.log.Warn().Err(err).Str("filename", header.Filename).Msg("Failed to parse spreadsheet")
		middleware.WriteError(w, http.StatusBadRequest, fmt.Sprintf("Could not read spreadsheet: %v", err))
		return
	}

	middleware.WriteJSON(w, http.StatusOK, UploadResponse{
		Columns: t.Columns,
		Rows:    t.Len(),
		Preview: t.Preview(previewRows),
	})
}

// GenerateSuggestions handles POST /generate_suggestions
func (h *AdviceHandler) GenerateSuggestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx)

	resp, err := h.suggest(ctx, r)
	if errors.Is(err, table.ErrUnsupportedFormat) {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"error": invalidFormat})
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate suggestions")
		middleware.WriteJSON(w, http.StatusOK, domain.BackendErrorResponse(err))
		return
	}

	middleware.WriteJSON(w, http.StatusOK, resp)
}

// suggest reads the uploaded sheet and runs the advisor. Any panic is
// returned as an error so that the caller can answer with Backend Error
// entries.
func (h *AdviceHandler) suggest(ctx context.Context, r *http.Request) (resp domain.Response, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()

	file, header, err := r.FormFile(uploadField)
	if err != nil {
		return domain.Response{}, fmt.Errorf("read upload: %w", err)
	}
	defer file.Close()

	log := logger.FromContext(ctx)
	log.Debug().Str("filename", header.Filename).Int64("size", header.Size).Msg("Receiving file")

	if !table.SupportedFile(header.Filename) {
		return domain.Response{}, table.ErrUnsupportedFormat
	}

	t, err := table.Load(header.Filename, file)
	if err != nil {
		return domain.Response{}, err
	}

	return h.advisor.Advise(ctx, t), nil
}

func (h *AdviceHandler) writeFormError(w http.ResponseWriter, err error) {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr), errors.Is(err, multipart.ErrMessageTooLarge):
		middleware.WriteError(w, http.StatusRequestEntityTooLarge, "File too large")
	case errors.Is(err, http.ErrMissingFile):
		middleware.WriteError(w, http.StatusBadRequest, "A file is required")
	default:
		middleware.WriteError(w, http.StatusBadRequest, "Invalid multipart form")
	}
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// StaticHandler serves the browser front end.
type StaticHandler struct {
	dir string
	fs  http.Handler
}

// NewStaticHandler serves files from dir.
func NewStaticHandler(dir string) *StaticHandler {
	return &StaticHandler{
		dir: dir,
		fs:  http.StripPrefix("/static/", http.FileServer(http.Dir(dir))),
	}
}

// Index handles GET /
func (h *StaticHandler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		middleware.WriteError(w, http.StatusNotFound, "Not found")
		return
	}
	index := filepath.Join(h.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		middleware.WriteError(w, http.StatusNotFound, "index.html not found")
		return
	}
	http.ServeFile(w, r, index)
}

// Assets handles GET /static/...
func (h *StaticHandler) Assets(w http.ResponseWriter, r *http.Request) {
	h.fs.ServeHTTP(w, r)
}
