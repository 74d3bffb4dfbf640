package domain

import "context"

// IAdapter translates one provider's webhook dialect into the
// normalized Event model.
type IAdapter interface {
	// Provider is the stable name used in webhook URLs and ledger rows.
	Provider() string

	// VerifySignature checks the webhook signature header against the
	// raw request body. It must run before any parsing.
	VerifySignature(signature string, body []byte) error

	// Parse normalizes the raw body. Event types the engine does not
	// reconcile return ErrEventIgnored; malformed bodies return
	// ErrInvalidPayload.
	Parse(body []byte) (*Event, error)
}

// IVerifier re-fetches a charge from the provider's API. Webhooks are
// treated as hints; the verifier's answer is authoritative.
type IVerifier interface {
	VerifyTransaction(ctx context.Context, reference string) (*Charge, error)
}

// IRegistry resolves the adapter for a provider name.
type IRegistry interface {
	Adapter(provider string) (IAdapter, error)
}
