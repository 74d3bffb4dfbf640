package domain

import "context"

// IngestResult reports what the pipeline did with one delivery.
type IngestResult struct {
	Provider string
	Kind     EventKind
	Intent   Intent
	// Outcome is one of "processed", "duplicate", "ignored",
	// "invalid", "unverified", "unmatched". Signature failures never
	// produce a result; they surface as ErrInvalidSignature.
	Outcome string
}

// IWebhookService is the verify, parse, dedupe, verify-again,
// reconcile pipeline behind the webhook endpoint.
type IWebhookService interface {
	Ingest(ctx context.Context, provider, signature string, body []byte) (*IngestResult, error)
}
