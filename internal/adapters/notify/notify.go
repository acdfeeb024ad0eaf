// Package notify delivers qualifying analysis results to alert sinks.
package notify

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"

	"github.com/okian/goalwatch/internal/domain/model"
)

// Sink is one alert destination.
type Sink interface {
	Name() string
	Send(ctx context.Context, r model.AnalysisResult) error
}

// Summary is the compact alert body sent to chat sinks.
type Summary struct {
	Match      string            `json:"match"`
	League     string            `json:"league"`
	Minute     int               `json:"minute"`
	Score      string            `json:"score"`
	Confidence float64           `json:"confidence"`
	Class      string            `json:"class"`
	Reasons    []string          `json:"reasons"`
	Stats      model.ReportStats `json:"stats"`
	Tags       []string          `json:"tags"`
}

// Summarize builds the compact view of r.
func Summarize(r model.AnalysisResult) Summary {
	return Summary{
		Match:      r.Match(),
		League:     r.League,
		Minute:     r.Minute,
		Score:      r.Score,
		Confidence: r.Confidence,
		Class:      string(r.Classification),
		Reasons:    r.Reasons,
		Stats:      r.Stats,
		Tags:       r.Tags,
	}
}

func postJSON(ctx context.Context, hc *http.Client, url string, payload any) error {
	body, err := sonic.Marshal(payload)
	if err != nil {
		return crerr.Wrap(err, "encode payload")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return crerr.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return crerr.Wrap(err, "http post")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return crerr.Mark(crerr.Newf("sink returned HTTP %s: %s", strconv.Itoa(resp.StatusCode), snippet), ErrSinkRejected)
	}
	return nil
}
