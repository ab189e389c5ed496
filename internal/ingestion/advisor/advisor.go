// Package advisor asks an OpenAI-compatible chat completion endpoint for a
// second opinion on arrear severity. Every failure degrades to "no opinion".
package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/yungbote/apns-backend/internal/ingestion/parser"
	"github.com/yungbote/apns-backend/internal/platform/logger"
)

const (
	DefaultModel   = "llama-3.3-70b"
	DefaultBaseURL = "https://api.cerebras.ai/v1"
	DefaultTimeout = 30 * time.Second

	maxSampleRows    = 40
	maxPreviewRunes  = 2500
	maxTopFindings   = 5
	chatPath         = "/chat/completions"
	promptPrefix     = "Analyze this dataset and infer arrear severity: "
	systemPromptText = "You are an academic arrear risk analyst. " +
		"Return only strict JSON with keys: summary (string), topFindings (string array max 5), " +
		"confidence (number 0-100), alerts (object with critical, medium, low integers)."
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	model   string
	baseURL string
	timeout time.Duration

	log        *logger.Logger
	httpClient *http.Client
}

func New(cfg Config, baseLog *logger.Logger) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          20,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	if baseLog == nil {
		baseLog = logger.Nop()
	}

	return &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		model:      model,
		baseURL:    baseURL,
		timeout:    timeout,
		log:        baseLog.With("client", "Advisor"),
		httpClient: &http.Client{Transport: tr},
	}
}

// NewWithHTTPClient is intended for tests; it avoids network access by using a custom RoundTripper.
func NewWithHTTPClient(cfg Config, baseLog *logger.Logger, httpClient *http.Client) *Client {
	c := New(cfg, baseLog)
	if httpClient != nil {
		c.httpClient = httpClient
	}
	return c
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool { return c != nil && c.apiKey != "" }

func (c *Client) Model() string {
	if c == nil {
		return DefaultModel
	}
	return c.model
}

type Input struct {
	FileName string
	Records  []parser.Record
	Text     string
}

// Alerts holds the advisor's bucket counts. A nil bucket was missing or not
// an integer.
type Alerts struct {
	Critical *int
	Medium   *int
	Low      *int
}

type Assessment struct {
	Summary        *string
	TopFindings    []string
	HasTopFindings bool
	Confidence     *float64
	Alerts         Alerts
	Model          string
}

type promptPayload struct {
	FileName            string          `json:"fileName"`
	RowCount            int             `json:"rowCount"`
	SampleRows          []parser.Record `json:"sampleRows"`
	DocumentTextPreview string          `json:"documentTextPreview"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	ResponseFormat map[string]any `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content,omitempty"`
		} `json:"message,omitempty"`
		Text string `json:"text,omitempty"`
	} `json:"choices"`
}

// Advise returns the advisor's assessment. ok is false when the advisor is
// disabled or anything about the call or its answer is unusable.
func (c *Client) Advise(ctx context.Context, in Input) (Assessment, bool) {
	if !c.Enabled() {
		return Assessment{}, false
	}

	userPrompt, err := buildUserPrompt(in)
	if err != nil {
		c.log.Warn("advisor prompt encode failed", "error", err)
		return Assessment{}, false
	}

	reqBody := chatCompletionRequest{
		Model:       c.model,
		Temperature: 0.1,
		Messages: []chatMessage{
			{Role: "system", Content: systemPromptText},
			{Role: "user", Content: userPrompt},
		},
		ResponseFormat: map[string]any{"type": "json_object"},
	}

	var resp chatCompletionResponse
	if err := c.doJSON(ctx, http.MethodPost, chatPath, reqBody, &resp); err != nil {
		c.log.Warn("advisor request failed", "error", err, "file_name", in.FileName)
		return Assessment{}, false
	}

	text := extractChatText(resp)
	if strings.TrimSpace(text) == "" {
		c.log.Warn("advisor returned no content", "file_name", in.FileName)
		return Assessment{}, false
	}

	a, err := parseAssessment(text)
	if err != nil {
		c.log.Warn("advisor returned unusable content", "error", err, "file_name", in.FileName)
		return Assessment{}, false
	}
	a.Model = c.model
	return a, true
}

func buildUserPrompt(in Input) (string, error) {
	sample := in.Records
	if len(sample) > maxSampleRows {
		sample = sample[:maxSampleRows]
	}
	if sample == nil {
		sample = []parser.Record{}
	}
	preview := in.Text
	if r := []rune(preview); len(r) > maxPreviewRunes {
		preview = string(r[:maxPreviewRunes])
	}
	b, err := json.Marshal(promptPayload{
		FileName:            in.FileName,
		RowCount:            len(in.Records),
		SampleRows:          sample,
		DocumentTextPreview: preview,
	})
	if err != nil {
		return "", err
	}
	return promptPrefix + string(b), nil
}

func extractChatText(resp chatCompletionResponse) string {
	for _, c := range resp.Choices {
		if strings.TrimSpace(c.Message.Content) != "" {
			return c.Message.Content
		}
		if strings.TrimSpace(c.Text) != "" {
			return c.Text
		}
	}
	return ""
}

func sanitizeJSONText(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

var (
	errNotObject   = errors.New("advisor content is not a json object")
	errEmptyObject = errors.New("advisor content is an empty json object")
)

func parseAssessment(content string) (Assessment, error) {
	dec := json.NewDecoder(strings.NewReader(sanitizeJSONText(content)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return Assessment{}, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return Assessment{}, errNotObject
	}
	if len(obj) == 0 {
		return Assessment{}, errEmptyObject
	}

	var a Assessment
	if s, ok := obj["summary"].(string); ok {
		a.Summary = &s
	}

	findings, ok := obj["topFindings"]
	if !ok || isFalsy(findings) {
		findings, ok = obj["top_findings"]
	}
	if list, isList := findings.([]any); ok && isList {
		a.HasTopFindings = true
		for i, item := range list {
			if i >= maxTopFindings {
				break
			}
			s := stringify(item)
			if strings.TrimSpace(s) == "" {
				continue
			}
			a.TopFindings = append(a.TopFindings, s)
		}
	}

	if n, ok := obj["confidence"].(json.Number); ok {
		if f, err := n.Float64(); err == nil {
			a.Confidence = &f
		}
	}

	if alerts, ok := obj["alerts"].(map[string]any); ok {
		a.Alerts = Alerts{
			Critical: coerceInt(alerts["critical"]),
			Medium:   coerceInt(alerts["medium"]),
			Low:      coerceInt(alerts["low"]),
		}
	}
	return a, nil
}

func isFalsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case []any:
		return len(x) == 0
	case string:
		return x == ""
	case bool:
		return !x
	case map[string]any:
		return len(x) == 0
	}
	return false
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case nil:
		return ""
	case json.Number:
		return x.String()
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// coerceInt accepts JSON numbers (truncated toward zero) and strings holding
// a whole number.
func coerceInt(v any) *int {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			n := int(i)
			return &n
		}
		if f, err := x.Float64(); err == nil {
			n := int(f)
			return &n
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return &n
		}
	}
	return nil
}

func (c *Client) doJSON(ctx context.Context, method string, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	ctx2, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx2, method, c.baseURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
