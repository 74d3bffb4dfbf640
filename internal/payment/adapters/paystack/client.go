package paystack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nyumbahq/nyumba/internal/payment/domain"
)

// Client calls the Paystack REST API. Webhook payloads are only
// hints; reconcilers trust this client's answer.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
	log       *zap.Logger
}

type ClientConfig struct {
	BaseURL   string
	SecretKey string
	Timeout   time.Duration
}

func NewClient(cfg ClientConfig, log *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = "https://api.paystack.co"
	}
	return &Client{
		baseURL:   base,
		secretKey: cfg.SecretKey,
		http:      &http.Client{Timeout: timeout},
		log:       log.Named("paystack.client"),
	}
}

type verifyResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    struct {
		Status    string          `json:"status"`
		Reference string          `json:"reference"`
		Amount    int64           `json:"amount"`
		Currency  string          `json:"currency"`
		PaidAt    string          `json:"paid_at"`
		Metadata  json.RawMessage `json:"metadata"`
		Customer  struct {
			Email string `json:"email"`
		} `json:"customer"`
	} `json:"data"`
}

// VerifyTransaction fetches GET /transaction/verify/{reference}.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*domain.Charge, error) {
	endpoint := fmt.Sprintf("%s/transaction/verify/%s", c.baseURL, url.PathEscape(reference))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, domain.ErrUnknownReference
	}
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("verify returned non-200",
			zap.String("reference", reference),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: http %d", domain.ErrVerificationFailed, resp.StatusCode)
	}

	var body verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVerificationFailed, err)
	}
	if !body.Status {
		return nil, fmt.Errorf("%w: %s", domain.ErrVerificationFailed, body.Message)
	}

	paidAt, _ := time.Parse(time.RFC3339, body.Data.PaidAt)
	return &domain.Charge{
		Reference:     body.Data.Reference,
		Status:        body.Data.Status,
		Amount:        body.Data.Amount,
		Currency:      strings.ToUpper(body.Data.Currency),
		CustomerEmail: strings.ToLower(strings.TrimSpace(body.Data.Customer.Email)),
		Metadata:      decodeMetadata(body.Data.Metadata),
		PaidAt:        paidAt,
	}, nil
}
