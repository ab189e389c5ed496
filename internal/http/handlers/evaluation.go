package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/apns-backend/internal/domain"
	"github.com/yungbote/apns-backend/internal/http/response"
	"github.com/yungbote/apns-backend/internal/ingestion/pipeline"
)

const DefaultUploadMaxBytes int64 = 20 << 20

// DocumentAnalyzer is satisfied by *pipeline.Pipeline.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, fileName string, data []byte) (*pipeline.Response, error)
	History(ctx context.Context, limit int) ([]*types.DocumentAnalysis, error)
}

type EvaluationHandler struct {
	analyzer DocumentAnalyzer
	maxBytes int64
}

func NewEvaluationHandler(analyzer DocumentAnalyzer, maxBytes int64) *EvaluationHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	return &EvaluationHandler{analyzer: analyzer, maxBytes: maxBytes}
}

func (eh *EvaluationHandler) AnalyzeDocument(c *gin.Context) {
	// Leave room for the multipart framing around the file itself.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, eh.maxBytes+1<<20)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			eh.tooLarge(c)
			return
		}
		response.RespondError(c, http.StatusBadRequest, "file_required", errors.New("File is required"))
		return
	}
	if fh.Size > eh.maxBytes {
		eh.tooLarge(c)
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "file_unreadable", errors.New("Unable to read uploaded file"))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, eh.maxBytes+1))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "file_unreadable", errors.New("Unable to read uploaded file"))
		return
	}
	if int64(len(data)) > eh.maxBytes {
		eh.tooLarge(c)
		return
	}

	res, err := eh.analyzer.Analyze(c.Request.Context(), fh.Filename, data)
	if err != nil {
		response.RespondAPIError(c, err, "Unable to analyze document")
		return
	}
	response.RespondOK(c, res)
}

func (eh *EvaluationHandler) ListAnalyses(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			response.RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be between 1 and 100"))
			return
		}
		limit = n
	}
	rows, err := eh.analyzer.History(c.Request.Context(), limit)
	if err != nil {
		response.RespondAPIError(c, err, "Unable to fetch analyses")
		return
	}
	response.RespondOK(c, rows)
}

func (eh *EvaluationHandler) tooLarge(c *gin.Context) {
	response.RespondError(c, http.StatusRequestEntityTooLarge, "file_too_large",
		fmt.Errorf("File exceeds the %d byte upload limit", eh.maxBytes))
}
