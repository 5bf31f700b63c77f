package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dvloznov/budget-advisor/internal/api/middleware"
	"github.com/dvloznov/budget-advisor/internal/domain"
	"github.com/dvloznov/budget-advisor/internal/logger"
	"github.com/dvloznov/budget-advisor/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdvisor struct {
	adviseFunc func(ctx context.Context, t *table.Table) domain.Response
	got        *table.Table
}

func (f *fakeAdvisor) Advise(ctx context.Context, t *table.Table) domain.Response {
	f.got = t
	return f.adviseFunc(ctx, t)
}

func multipartRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	if filename != "" {
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func newTestHandler(adv *fakeAdvisor) *AdviceHandler {
	return NewAdviceHandler(adv, logger.NewWithWriter(io.Discard))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

const sampleCSV = "Date,Category,Amount\n2024-01-06,Food,12.5\n2024-01-07,Rent,1000\n"

func TestUpload(t *testing.T) {
	h := newTestHandler(&fakeAdvisor{})
	rec := httptest.NewRecorder()

	h.Upload(rec, multipartRequest(t, "/upload", "sheet.csv", sampleCSV))

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	assert.Equal(t, []interface{}{"date", "category", "amount"}, got["columns"])
	assert.EqualValues(t, 2, got["rows"])

	preview := got["preview"].(map[string]interface{})
	assert.Equal(t, map[string]interface{}{"0": "Food", "1": "Rent"}, preview["category"])
	assert.Equal(t, map[string]interface{}{"0": 12.5, "1": 1000.0}, preview["amount"])
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name       string
		filename   string
		content    string
		wantStatus int
		wantError  string
	}{
		{name: "unsupported extension", filename: "sheet.txt", content: "x", wantStatus: http.StatusOK, wantError: "Invalid file format"},
		{name: "missing file", filename: "", wantStatus: http.StatusBadRequest, wantError: "A file is required"},
		{name: "empty csv", filename: "sheet.csv", content: "", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHandler(&fakeAdvisor{})
			rec := httptest.NewRecorder()

			h.Upload(rec, multipartRequest(t, "/upload", tt.filename, tt.content))

			assert.Equal(t, tt.wantStatus, rec.Code)
			got := decode(t, rec)
			if tt.wantError != "" {
				assert.Equal(t, tt.wantError, got["error"])
			} else {
				assert.NotEmpty(t, got["error"])
			}
		})
	}
}

func TestUpload_TooLarge(t *testing.T) {
	h := middleware.MaxBytes(16)(http.HandlerFunc(newTestHandler(&fakeAdvisor{}).Upload))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, multipartRequest(t, "/upload", "sheet.csv", sampleCSV))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestGenerateSuggestions(t *testing.T) {
	adv := &fakeAdvisor{adviseFunc: func(context.Context, *table.Table) domain.Response {
		var r domain.Response
		for _, s := range domain.Strategies {
			r.Set(s, domain.Succeeded(&domain.StrategyResult{
				Agent:  s.AgentName(),
				Advice: domain.Advice{Budget: map[string]float64{"Food": 10}},
				Type:   s,
			}))
		}
		return r
	}}
	h := newTestHandler(adv)
	rec := httptest.NewRecorder()

	h.GenerateSuggestions(rec, multipartRequest(t, "/generate_suggestions", "SHEET.CSV", sampleCSV))

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode(t, rec)
	assert.Len(t, got, 4)
	for _, key := range []string{"lime", "standard", "cot", "self_check"} {
		slot := got[key].(map[string]interface{})
		assert.Equal(t, key, slot["type"])
		assert.Equal(t, map[string]interface{}{"Food": 10.0}, slot["advice"])
	}

	require.NotNil(t, adv.got)
	assert.Equal(t, 2, adv.got.Len())
}

func TestGenerateSuggestions_InvalidFormat(t *testing.T) {
	adv := &fakeAdvisor{adviseFunc: func(context.Context, *table.Table) domain.Response {
		t.Fatal("advisor should not be called")
		return domain.Response{}
	}}
	h := newTestHandler(adv)
	rec := httptest.NewRecorder()

	h.GenerateSuggestions(rec, multipartRequest(t, "/generate_suggestions", "notes.pdf", "%PDF"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid file format"}`, rec.Body.String())
}

func TestGenerateSuggestions_BackendErrors(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  string
		advise   func(context.Context, *table.Table) domain.Response
		wantMsg  string
	}{
		{
			name:     "missing file",
			filename: "",
			wantMsg:  "Backend Error: read upload: http: no such file",
		},
		{
			name:     "unparseable spreadsheet",
			filename: "broken.xlsx",
			content:  "not a zip",
		},
		{
			name:     "advisor panic",
			filename: "sheet.csv",
			content:  sampleCSV,
			advise: func(context.Context, *table.Table) domain.Response {
				panic("out of memory")
			},
			wantMsg: "Backend Error: out of memory",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adv := &fakeAdvisor{adviseFunc: tt.advise}
			h := newTestHandler(adv)
			rec := httptest.NewRecorder()

			h.GenerateSuggestions(rec, multipartRequest(t, "/generate_suggestions", tt.filename, tt.content))

			require.Equal(t, http.StatusOK, rec.Code)
			var got map[string]map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
			require.Len(t, got, 4)

			first := got["lime"]["error"]
			assert.Contains(t, first, "Backend Error: ")
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, first)
			}
			for _, key := range []string{"standard", "cot", "self_check"} {
				assert.Equal(t, first, got[key]["error"])
			}
		})
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestStaticHandler(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<h1>advisor</h1>"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o600))
	h := NewStaticHandler(dir)

	rec := httptest.NewRecorder()
	h.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "advisor")

	rec = httptest.NewRecorder()
	h.Assets(rec, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "console.log")

	rec = httptest.NewRecorder()
	h.Index(rec, httptest.NewRequest(http.MethodGet, "/missing", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticHandler_NoIndex(t *testing.T) {
	h := NewStaticHandler(t.TempDir())
	rec := httptest.NewRecorder()
	h.Index(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
