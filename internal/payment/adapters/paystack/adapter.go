// Package paystack adapts Paystack webhook deliveries and its
// transaction verify API to the normalized payment event model.
package paystack

import (
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nyumbahq/nyumba/internal/payment/domain"
)

const ProviderName = "paystack"

// SignatureHeader carries the HMAC-SHA512 hex digest of the raw body.
const SignatureHeader = "x-paystack-signature"

type Adapter struct {
	secret []byte
}

func NewAdapter(secretKey string) *Adapter {
	return &Adapter{secret: []byte(secretKey)}
}

func (a *Adapter) Provider() string { return ProviderName }

// VerifySignature compares the header digest with our own HMAC of the
// raw body in constant time.
func (a *Adapter) VerifySignature(signature string, body []byte) error {
	signature = strings.TrimSpace(signature)
	if signature == "" || len(a.secret) == 0 {
		return domain.ErrInvalidSignature
	}
	mac := hmac.New(sha512.New, a.secret)
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(signature))) {
		return domain.ErrInvalidSignature
	}
	return nil
}

// Sign computes the signature Paystack would send for the body. Used
// by tests and the replay tool.
func (a *Adapter) Sign(body []byte) string {
	mac := hmac.New(sha512.New, a.secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// envelope is the wire shape of every Paystack webhook.
type envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type chargeData struct {
	Reference string          `json:"reference"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	PaidAt    string          `json:"paid_at"`
	Customer  customerData    `json:"customer"`
	Metadata  json.RawMessage `json:"metadata"`
}

type subscriptionData struct {
	SubscriptionCode string       `json:"subscription_code"`
	Customer         customerData `json:"customer"`
}

type customerData struct {
	Email string `json:"email"`
}

func (a *Adapter) Parse(body []byte) (*domain.Event, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if env.Event == "" || len(env.Data) == 0 {
		return nil, domain.ErrInvalidPayload
	}

	switch env.Event {
	case "charge.success":
		return a.parseCharge(env, body)
	case "subscription.disable":
		return a.parseSubscriptionDisable(env, body)
	default:
		return nil, domain.ErrEventIgnored
	}
}

func (a *Adapter) parseCharge(env envelope, body []byte) (*domain.Event, error) {
	var data chargeData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	if data.Reference == "" || data.Amount <= 0 {
		return nil, domain.ErrInvalidPayload
	}

	paidAt, _ := time.Parse(time.RFC3339, data.PaidAt)

	return &domain.Event{
		Provider: ProviderName,
		// Paystack sends no event id, so one logical charge event
		// always maps to the same key across redeliveries.
		DedupeKey:     fmt.Sprintf("%s:%s", env.Event, data.Reference),
		Kind:          domain.EventChargeSuccess,
		Reference:     data.Reference,
		Amount:        data.Amount,
		Currency:      strings.ToUpper(data.Currency),
		CustomerEmail: strings.ToLower(strings.TrimSpace(data.Customer.Email)),
		Metadata:      decodeMetadata(data.Metadata),
		PaidAt:        paidAt,
		Raw:           body,
	}, nil
}

// decodeMetadata tolerates non-string metadata values. Paystack
// merchants put arbitrary JSON there and a bad value must not fail
// the whole event.
func decodeMetadata(raw json.RawMessage) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	var generic map[string]any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil
	}
	out := make(map[string]string, len(generic))
	for k, v := range generic {
		switch t := v.(type) {
		case string:
			out[k] = t
		case float64:
			out[k] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			out[k] = strconv.FormatBool(t)
		}
	}
	return out
}

func (a *Adapter) parseSubscriptionDisable(env envelope, body []byte) (*domain.Event, error) {
	var data subscriptionData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, domain.ErrInvalidPayload
	}
	email := strings.ToLower(strings.TrimSpace(data.Customer.Email))
	if email == "" {
		return nil, domain.ErrInvalidPayload
	}

	key := data.SubscriptionCode
	if key == "" {
		key = email
	}

	return &domain.Event{
		Provider:      ProviderName,
		DedupeKey:     fmt.Sprintf("%s:%s", env.Event, key),
		Kind:          domain.EventSubscriptionDisable,
		CustomerEmail: email,
		Raw:           body,
	}, nil
}
