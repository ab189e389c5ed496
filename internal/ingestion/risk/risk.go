// Package risk scores arrear severity locally and reconciles that score with
// the advisor's opinion.
package risk

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/yungbote/apns-backend/internal/ingestion/advisor"
	"github.com/yungbote/apns-backend/internal/ingestion/columns"
	"github.com/yungbote/apns-backend/internal/ingestion/parser"
)

const (
	DefaultModel = "Rule-Enhanced Analyzer"

	confidenceWithAlerts = 98.4
	confidenceNoAlerts   = 86.0

	summaryAnalyzed = "AI-ready analysis generated from uploaded semester data."
	summaryEmpty    = "Document parsed but contains no analyzable data."
)

var numberRun = regexp.MustCompile(`\d+`)

type Alerts struct {
	Critical int `json:"critical"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

func (a Alerts) Total() int { return a.Critical + a.Medium + a.Low }

type Result struct {
	Alerts      Alerts   `json:"alerts"`
	Confidence  float64  `json:"confidence"`
	Summary     string   `json:"summary"`
	TopFindings []string `json:"topFindings"`
	Model       string   `json:"model"`
	UsedAI      bool     `json:"usedAI"`
}

// Bucket places an arrear count: above 3 is critical, 2 or 3 medium, 1 low.
func Bucket(arrears int, a *Alerts) {
	switch {
	case arrears > 3:
		a.Critical++
	case arrears >= 2:
		a.Medium++
	case arrears == 1:
		a.Low++
	}
}

// Analyze scores records, or text when there are none. Text alone never
// fills the severity buckets.
func Analyze(records []parser.Record, text string) Result {
	res := Result{Model: DefaultModel, TopFindings: []string{}}

	recognized := 0
	for _, rec := range records {
		n := columns.ArrearCount(rec)
		if n > 0 {
			recognized++
		}
		Bucket(n, &res.Alerts)
	}

	switch {
	case len(records) > 0:
		res.TopFindings = append(res.TopFindings,
			fmt.Sprintf("Processed %d student rows; arrear data found in %d rows.", len(records), recognized),
			fmt.Sprintf("Severity split: Critical %d, Medium %d, Low %d.", res.Alerts.Critical, res.Alerts.Medium, res.Alerts.Low),
		)
	case text != "":
		res.TopFindings = append(res.TopFindings,
			fmt.Sprintf("Extracted %d words and %d numeric values from document text.",
				len(strings.Fields(text)), len(numberRun.FindAllString(text, -1))),
			"No tabular student rows were detected in this file.",
		)
	default:
		res.TopFindings = append(res.TopFindings, "No content could be extracted from the uploaded file.")
	}

	res.Confidence = confidenceNoAlerts
	if res.Alerts.Total() > 0 {
		res.Confidence = confidenceWithAlerts
	}

	res.Summary = summaryEmpty
	if len(records) > 0 || text != "" {
		res.Summary = summaryAnalyzed
	}
	return res
}

// Merge overlays an advisor assessment on a local result. Alert buckets
// never drop below the local count.
func Merge(local Result, a advisor.Assessment, ok bool) Result {
	if !ok {
		return local
	}
	out := local
	out.TopFindings = append([]string(nil), local.TopFindings...)

	out.Alerts = Alerts{
		Critical: maxPresent(a.Alerts.Critical, local.Alerts.Critical),
		Medium:   maxPresent(a.Alerts.Medium, local.Alerts.Medium),
		Low:      maxPresent(a.Alerts.Low, local.Alerts.Low),
	}

	if a.Confidence != nil {
		out.Confidence = clamp(*a.Confidence, 0, 100)
	}
	if a.Summary != nil {
		if s := strings.TrimSpace(*a.Summary); s != "" {
			out.Summary = s
		}
	}
	if a.HasTopFindings && len(a.TopFindings) > 0 {
		out.TopFindings = append([]string(nil), a.TopFindings...)
	}
	if m := strings.TrimSpace(a.Model); m != "" {
		out.Model = m
	}
	out.UsedAI = true
	return out
}

// Outcome is what persisting the rows achieved.
type Outcome struct {
	Saved           int `json:"saved"`
	HighRiskActions int `json:"highRiskActions"`
}

// AppendOutcome reports persistence results as trailing findings.
func AppendOutcome(res Result, o Outcome) Result {
	res.TopFindings = append(append([]string(nil), res.TopFindings...),
		fmt.Sprintf("Saved %d student records to database.", o.Saved))
	if o.HighRiskActions > 0 {
		res.TopFindings = append(res.TopFindings,
			fmt.Sprintf("Triggered %d high-risk parent actions (message/call).", o.HighRiskActions))
	}
	return res
}

// Round1 rounds to one decimal place.
func Round1(v float64) float64 { return math.Round(v*10) / 10 }

func maxPresent(ext *int, local int) int {
	if ext != nil && *ext > local {
		return *ext
	}
	return local
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
