package tracing

import (
	"context"
	"net/http"
	"net/url"

	"github.com/osvaldoandrade/pitchflow/pkg/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const (
	webhookTracer   = "pitchflow/webhook"
	webhookSpanName = "pitchflow.webhook.request"

	AttrSessionID = attribute.Key("pitchflow.session_id")
	AttrHasResult = attribute.Key("pitchflow.has_result")
	AttrOutcome   = attribute.Key("pitchflow.webhook.outcome")
)

// WebhookCall is the client span around one deck webhook request.
type WebhookCall struct {
	ctx  context.Context
	span trace.Span
}

// StartWebhookCall opens a client span for the request that carries session
// to endpoint. Use the returned call's Context for the outgoing request.
func StartWebhookCall(ctx context.Context, session domain.SessionID, endpoint *url.URL) *WebhookCall {
	attrs := []attribute.KeyValue{AttrSessionID.String(string(session))}
	if endpoint != nil {
		attrs = append(attrs, attribute.String("server.address", endpoint.Host))
	}
	ctx, span := otel.Tracer(webhookTracer).Start(ctx, webhookSpanName,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return &WebhookCall{ctx: ctx, span: span}
}

func (w *WebhookCall) Context() context.Context {
	return w.ctx
}

// Inject writes traceparent and tracestate for the call into h. Baggage is
// never forwarded to the deck webhook.
func (w *WebhookCall) Inject(h http.Header) {
	InjectHeaders(w.ctx, h)
}

// StatusCode records the HTTP status the webhook answered with.
func (w *WebhookCall) StatusCode(code int) {
	w.span.SetAttributes(attribute.Int("http.response.status_code", code))
}

// End closes the span with the call's result. A failed call marks the span
// as an error; a successful one records whether a result link came back.
func (w *WebhookCall) End(res domain.RemoteResult, err error) {
	defer w.span.End()
	if err != nil {
		w.span.SetAttributes(AttrOutcome.String("failure"))
		w.span.RecordError(err)
		w.span.SetStatus(codes.Error, err.Error())
		return
	}
	w.span.SetAttributes(AttrOutcome.String("success"), AttrHasResult.Bool(res.HasResult()))
}

// InjectHeaders writes the W3C trace context of ctx into h.
func InjectHeaders(ctx context.Context, h http.Header) {
	if h == nil {
		return
	}
	propagation.TraceContext{}.Inject(ctx, propagation.HeaderCarrier(h))
}
