package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/apns-backend/internal/data/db"
	types "github.com/yungbote/apns-backend/internal/domain"
	"github.com/yungbote/apns-backend/internal/ingestion/pipeline"
	"github.com/yungbote/apns-backend/internal/platform/apierr"
)

type fakeAnalyzer struct {
	gotName string
	gotData []byte
	err     error
	limit   int
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, fileName string, data []byte) (*pipeline.Response, error) {
	f.gotName = fileName
	f.gotData = data
	if f.err != nil {
		return nil, f.err
	}
	return &pipeline.Response{FileName: fileName, ProcessedRecords: 1, Model: "Rule-Enhanced Analyzer", TopFindings: []string{}}, nil
}

func (f *fakeAnalyzer) History(ctx context.Context, limit int) ([]*types.DocumentAnalysis, error) {
	f.limit = limit
	return []*types.DocumentAnalysis{}, nil
}

func uploadRequest(t *testing.T, field, name string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile(field, name)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/evaluation/analyze-document", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func newEvaluationRouter(a DocumentAnalyzer, maxBytes int64) *gin.Engine {
	h := NewEvaluationHandler(a, maxBytes)
	r := gin.New()
	r.POST("/api/evaluation/analyze-document", h.AnalyzeDocument)
	r.GET("/api/evaluation/analyses", h.ListAnalyses)
	return r
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Detail string `json:"detail"`
		Error  struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if env.Detail != env.Error.Message {
		t.Fatalf("detail %q and message %q differ", env.Detail, env.Error.Message)
	}
	return env.Detail
}

func TestAnalyzeDocumentPassesUpload(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	fa := &fakeAnalyzer{}
	r := newEvaluationRouter(fa, 0)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "file", "roster.csv", []byte("roll_no,name\nR1,A\n")))

	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if fa.gotName != "roster.csv" || string(fa.gotData) != "roll_no,name\nR1,A\n" {
		t.Fatalf("analyzer got %q %q", fa.gotName, fa.gotData)
	}
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"fileName", "processedRecords", "alerts", "confidence", "model", "summary", "topFindings", "usedAI"} {
		if _, ok := out[key]; !ok {
			t.Fatalf("response missing %q: %s", key, rec.Body.String())
		}
	}
}

func TestAnalyzeDocumentErrors(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	fa := &fakeAnalyzer{err: apierr.BadRequest("unsupported_format", "Unsupported file format. Use CSV, XLSX, PDF, or TXT.")}
	r := newEvaluationRouter(fa, 16)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "file", "notes.docx", []byte("x")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
	if got := decodeDetail(t, rec); got != "Unsupported file format. Use CSV, XLSX, PDF, or TXT." {
		t.Fatalf("detail=%q", got)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "upload", "a.csv", []byte("x")))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing file status=%d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "file", "big.csv", bytes.Repeat([]byte("a"), 64)))
	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("oversize status=%d", rec.Code)
	}

	fa.err = errors.New("boom")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, uploadRequest(t, "file", "a.csv", []byte("x")))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status=%d", rec.Code)
	}
	if got := decodeDetail(t, rec); got != "Unable to analyze document" {
		t.Fatalf("internal cause leaked: %q", got)
	}
}

func TestListAnalysesLimit(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	fa := &fakeAnalyzer{}
	r := newEvaluationRouter(fa, 0)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/evaluation/analyses", nil))
	if rec.Code != http.StatusOK || fa.limit != 20 {
		t.Fatalf("status=%d limit=%d", rec.Code, fa.limit)
	}
	if rec.Body.String() != "[]" {
		t.Fatalf("body=%s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/evaluation/analyses?limit=0", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestHealthReportsMode(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	h := NewHealthHandler(db.NewStatus(nil, errors.New("dial tcp: connection refused")))
	r := gin.New()
	r.GET("/api/health", h.HealthCheck)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d", rec.Code)
	}
	var got HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !got.OK || got.DBConnected || got.Mode != "memory-fallback" || got.DBError == nil {
		t.Fatalf("unexpected health: %+v", got)
	}
}
