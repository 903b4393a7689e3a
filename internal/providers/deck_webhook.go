package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/osvaldoandrade/pitchflow/internal/metrics"
	"github.com/osvaldoandrade/pitchflow/internal/tracing"
	"github.com/osvaldoandrade/pitchflow/pkg/domain"
)

// ErrTransport covers every way a webhook call can fail: network errors,
// timeouts, non-2xx statuses and unparseable bodies.
var ErrTransport = errors.New("deck webhook transport failure")

const maxWebhookBodyBytes = 1 << 20

type DeckWebhook interface {
	Request(ctx context.Context, text string, sessionID domain.SessionID) (domain.RemoteResult, error)
}

type deckWebhook struct {
	endpoint   *url.URL
	timeout    time.Duration
	httpClient *http.Client
}

// NewDeckWebhook builds a client for the deck-generation webhook at rawURL.
// A zero timeout defaults to 30 seconds.
func NewDeckWebhook(rawURL string, timeoutSeconds int, httpClient *http.Client) (DeckWebhook, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid webhook url %q", rawURL)
	}
	if timeoutSeconds <= 0 {
		timeoutSeconds = 30
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &deckWebhook{
		endpoint:   u,
		timeout:    time.Duration(timeoutSeconds) * time.Second,
		httpClient: httpClient,
	}, nil
}

func (w *deckWebhook) Request(ctx context.Context, text string, sessionID domain.SessionID) (domain.RemoteResult, error) {
	call := tracing.StartWebhookCall(ctx, sessionID, w.endpoint)

	ctx, cancel := context.WithTimeout(call.Context(), w.timeout)
	defer cancel()

	start := time.Now()
	res, err := w.do(ctx, call, text, sessionID)
	call.End(res, err)
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	metrics.WebhookRequestsTotal.WithLabelValues(outcome).Inc()
	metrics.WebhookLatencySeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
	return res, err
}

func (w *deckWebhook) do(ctx context.Context, call *tracing.WebhookCall, text string, sessionID domain.SessionID) (domain.RemoteResult, error) {
	u := *w.endpoint
	q := u.Query()
	q.Set("text", text)
	q.Set("sessionId", string(sessionID))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.RemoteResult{}, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	call.Inject(req.Header)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return domain.RemoteResult{}, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	call.StatusCode(resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxWebhookBodyBytes))
		return domain.RemoteResult{}, fmt.Errorf("%w: status %d", ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxWebhookBodyBytes))
	if err != nil {
		return domain.RemoteResult{}, fmt.Errorf("%w: read body: %v", ErrTransport, err)
	}
	var out domain.RemoteResult
	if err := json.Unmarshal(body, &out); err != nil {
		return domain.RemoteResult{}, fmt.Errorf("%w: decode body: %v", ErrTransport, err)
	}
	out.ResultURL = strings.TrimSpace(out.ResultURL)
	return out, nil
}
