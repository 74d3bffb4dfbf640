package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nyumbahq/nyumba/internal/payment/adapters/paystack"
	paymentdomain "github.com/nyumbahq/nyumba/internal/payment/domain"
)

// maxWebhookBody caps how much of a delivery we will read. Provider
// payloads are a few KB; anything near this is abuse.
const maxWebhookBody = 1 << 20

// handlePaymentWebhook acknowledges everything the provider should
// not redeliver. Only rejected signatures and unknown providers get a
// 403, everything past that point is our problem, not the provider's.
func (s *Server) handlePaymentWebhook(c *gin.Context) {
	provider := c.Param("provider")

	ok, lerr := s.limiter.Allow(c.Request.Context(), "webhook:"+provider+":"+c.ClientIP())
	if lerr != nil {
		s.log.Warn("rate limiter degraded", zap.Error(lerr))
	}
	if !ok {
		s.metrics.RecordRateLimitDenied(c.Request.Context(), "webhook", "bucket_empty")
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate_limited"})
		return
	}
	s.metrics.RecordRateLimitAllowed(c.Request.Context(), "webhook")

	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	signature := c.GetHeader(paystack.SignatureHeader)
	result, err := s.webhooks.Ingest(c.Request.Context(), provider, signature, body)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrInvalidSignature) ||
			errors.Is(err, paymentdomain.ErrProviderNotFound) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		s.log.Error("webhook ingest failed",
			zap.String("provider", provider),
			zap.Error(err),
		)
		// Transient failures are acknowledged too; the unprocessed
		// ledger row makes the next redelivery retry reconciliation.
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	s.log.Debug("webhook handled",
		zap.String("provider", result.Provider),
		zap.String("outcome", result.Outcome),
	)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
