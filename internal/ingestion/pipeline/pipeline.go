// Package pipeline runs an uploaded document through parsing, local and
// advisor scoring, persistence and result merging.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/yungbote/apns-backend/internal/data/db"
	"github.com/yungbote/apns-backend/internal/data/repos"
	types "github.com/yungbote/apns-backend/internal/domain"
	"github.com/yungbote/apns-backend/internal/ingestion/advisor"
	"github.com/yungbote/apns-backend/internal/ingestion/parser"
	"github.com/yungbote/apns-backend/internal/ingestion/risk"
	"github.com/yungbote/apns-backend/internal/observability"
	"github.com/yungbote/apns-backend/internal/platform/apierr"
	"github.com/yungbote/apns-backend/internal/platform/logger"
)

const tracerName = "github.com/yungbote/apns-backend/internal/ingestion/pipeline"

// Advisor is the external second opinion. *advisor.Client satisfies it.
type Advisor interface {
	Enabled() bool
	Advise(ctx context.Context, in advisor.Input) (advisor.Assessment, bool)
}

// Persister writes resolved rows. *Dispatcher satisfies it.
type Persister interface {
	Persist(ctx context.Context, records []parser.Record) risk.Outcome
}

type Response struct {
	FileName         string      `json:"fileName"`
	ProcessedRecords int         `json:"processedRecords"`
	Alerts           risk.Alerts `json:"alerts"`
	Confidence       float64     `json:"confidence"`
	Model            string      `json:"model"`
	Summary          string      `json:"summary"`
	TopFindings      []string    `json:"topFindings"`
	UsedAI           bool        `json:"usedAI"`
}

type Pipeline struct {
	registry  *parser.Registry
	advisor   Advisor
	persister Persister
	history   repos.DocumentAnalysisRepo
	status    *db.Status
	metrics   *observability.Metrics
	log       *logger.Logger

	historyTimeout time.Duration
}

func New(
	registry *parser.Registry,
	adv Advisor,
	persister Persister,
	history repos.DocumentAnalysisRepo,
	status *db.Status,
	metrics *observability.Metrics,
	baseLog *logger.Logger,
) *Pipeline {
	return &Pipeline{
		registry:       registry,
		advisor:        adv,
		persister:      persister,
		history:        history,
		status:         status,
		metrics:        metrics,
		log:            baseLog.With("service", "DocumentPipeline"),
		historyTimeout: defaultQueryTimeout,
	}
}

// Analyze validates, parses and scores one upload. Client mistakes come back
// as *apierr.Error with a 4xx status; a disabled format is a 503; anything
// else is a generic 500 whose cause is only logged.
func (p *Pipeline) Analyze(ctx context.Context, fileName string, data []byte) (resp *Response, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ingestion.analyze",
		trace.WithAttributes(attribute.String("file.name", fileName), attribute.Int("file.size", len(data))))
	defer span.End()
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("document analysis panic", "file_name", fileName, "panic", r)
			p.metrics.ObserveDocument("", "error", 0)
			span.SetStatus(codes.Error, "panic")
			resp, err = nil, analysisFailed()
		}
	}()

	if strings.TrimSpace(fileName) == "" {
		p.metrics.ObserveDocument("", "rejected", 0)
		return nil, apierr.BadRequest("file_name_required", "File name is required")
	}

	format, err := p.registry.Check(fileName, data)
	if err != nil {
		apiErr := classifyCheckError(err)
		outcome := "rejected"
		if apiErr.Status == http.StatusServiceUnavailable {
			outcome = "unavailable"
		}
		p.metrics.ObserveDocument(string(format), outcome, 0)
		span.SetStatus(codes.Error, apiErr.Error())
		return nil, apiErr
	}
	span.SetAttributes(attribute.String("file.format", string(format)))

	parsed, err := p.parse(ctx, format, data)
	if err != nil {
		p.log.Error("document parse failed", "file_name", fileName, "format", format, "error", err)
		p.metrics.ObserveDocument(string(format), "error", 0)
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
		return nil, analysisFailed()
	}
	span.SetAttributes(attribute.Int("ingestion.records", len(parsed.Records)))

	var (
		local      risk.Result
		assessment advisor.Assessment
		advised    bool
		outcome    risk.Outcome
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(recovered("local analysis", func() {
		local = risk.Analyze(parsed.Records, parsed.Text)
	}))
	g.Go(recovered("advisor", func() {
		assessment, advised = p.advise(gctx, fileName, parsed)
	}))
	g.Go(recovered("persist", func() {
		outcome = p.persist(gctx, parsed.Records)
	}))
	if err := g.Wait(); err != nil {
		p.log.Error("document analysis step failed", "file_name", fileName, "format", format, "error", err)
		p.metrics.ObserveDocument(string(format), "error", len(parsed.Records))
		span.RecordError(err)
		span.SetStatus(codes.Error, "step failed")
		return nil, analysisFailed()
	}

	merged := risk.AppendOutcome(risk.Merge(local, assessment, advised), outcome)
	p.metrics.AddPersisted(outcome.Saved, outcome.HighRiskActions)

	resp = &Response{
		FileName:         fileName,
		ProcessedRecords: processedRecords(parsed),
		Alerts:           merged.Alerts,
		Confidence:       risk.Round1(merged.Confidence),
		Model:            merged.Model,
		Summary:          merged.Summary,
		TopFindings:      merged.TopFindings,
		UsedAI:           merged.UsedAI,
	}

	p.record(ctx, resp, outcome)
	p.metrics.ObserveDocument(string(format), "ok", len(parsed.Records))
	span.SetAttributes(
		attribute.Bool("ingestion.used_ai", resp.UsedAI),
		attribute.Int("ingestion.saved", outcome.Saved),
		attribute.Int("ingestion.high_risk_actions", outcome.HighRiskActions),
	)
	p.log.Info("document analyzed",
		"file_name", fileName,
		"format", format,
		"records", len(parsed.Records),
		"saved", outcome.Saved,
		"high_risk_actions", outcome.HighRiskActions,
		"used_ai", resp.UsedAI,
	)
	return resp, nil
}

// History returns the most recent analyses, newest first. It is empty when
// the store is not connected.
func (p *Pipeline) History(ctx context.Context, limit int) ([]*types.DocumentAnalysis, error) {
	if p.history == nil || !p.status.Connected() {
		return []*types.DocumentAnalysis{}, nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.historyTimeout)
	defer cancel()
	rows, err := p.history.ListRecent(ctx, nil, limit)
	if err != nil {
		if p.status.Observe(err) {
			p.log.Warn("analysis history unavailable, store marked down", "error", err)
			return []*types.DocumentAnalysis{}, nil
		}
		return nil, err
	}
	return rows, nil
}

func (p *Pipeline) parse(ctx context.Context, format parser.Format, data []byte) (parser.Result, error) {
	_, span := otel.Tracer(tracerName).Start(ctx, "ingestion.parse")
	defer span.End()
	res, err := p.registry.Parse(format, data)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse failed")
	}
	return res, err
}

func (p *Pipeline) advise(ctx context.Context, fileName string, parsed parser.Result) (advisor.Assessment, bool) {
	if p.advisor == nil || !p.advisor.Enabled() {
		p.metrics.ObserveAdvisor("disabled", 0)
		return advisor.Assessment{}, false
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ingestion.advisor")
	defer span.End()

	start := time.Now()
	a, ok := p.advisor.Advise(ctx, advisor.Input{FileName: fileName, Records: parsed.Records, Text: parsed.Text})
	result := "absent"
	if ok {
		result = "used"
	}
	p.metrics.ObserveAdvisor(result, time.Since(start))
	span.SetAttributes(attribute.String("advisor.outcome", result))
	return a, ok
}

func (p *Pipeline) persist(ctx context.Context, records []parser.Record) risk.Outcome {
	if p.persister == nil || len(records) == 0 {
		return risk.Outcome{}
	}
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ingestion.persist")
	defer span.End()
	out := p.persister.Persist(ctx, records)
	span.SetAttributes(attribute.Int("ingestion.saved", out.Saved))
	return out
}

// record keeps the response in the analysis history. Failures only log.
func (p *Pipeline) record(ctx context.Context, resp *Response, outcome risk.Outcome) {
	if p.history == nil || !p.status.Connected() {
		return
	}
	alerts, err := json.Marshal(resp.Alerts)
	if err != nil {
		p.log.Warn("analysis history encode failed", "error", err)
		return
	}
	findings, err := json.Marshal(resp.TopFindings)
	if err != nil {
		p.log.Warn("analysis history encode failed", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.historyTimeout)
	defer cancel()
	row := &types.DocumentAnalysis{
		FileName:         resp.FileName,
		ProcessedRecords: resp.ProcessedRecords,
		Alerts:           datatypes.JSON(alerts),
		Confidence:       resp.Confidence,
		Model:            resp.Model,
		Summary:          resp.Summary,
		TopFindings:      datatypes.JSON(findings),
		UsedAI:           resp.UsedAI,
		SavedRecords:     outcome.Saved,
		HighRiskActions:  outcome.HighRiskActions,
	}
	if err := p.history.Create(ctx, nil, row); err != nil {
		p.status.Observe(err)
		p.log.Warn("analysis history save failed", "file_name", resp.FileName, "error", err)
	}
}

func processedRecords(res parser.Result) int {
	switch {
	case len(res.Records) > 0:
		return len(res.Records)
	case res.Text != "":
		return 1
	}
	return 0
}

func analysisFailed() *apierr.Error {
	return apierr.New(http.StatusInternalServerError, "analysis_failed", errors.New("Unable to analyze document"))
}

// recovered turns a panic in an errgroup step into an error; a panic on a
// goroutine other than the handler's would otherwise end the process.
func recovered(step string, fn func()) func() error {
	return func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("%s panic: %v", step, r)
			}
		}()
		fn()
		return nil
	}
}

func classifyCheckError(err error) *apierr.Error {
	var unavailable *parser.UnavailableError
	switch {
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return apierr.BadRequest("unsupported_format", "Unsupported file format. Use CSV, XLSX, PDF, or TXT.")
	case errors.Is(err, parser.ErrEmptyFile):
		return apierr.BadRequest("empty_file", "Uploaded file is empty")
	case errors.As(err, &unavailable):
		return apierr.Unavailable("format_unavailable", unavailable.Error())
	}
	return analysisFailed()
}
