package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	agentdomain "github.com/nyumbahq/nyumba/internal/agent/domain"
	coopdomain "github.com/nyumbahq/nyumba/internal/cooperative/domain"
	listingdomain "github.com/nyumbahq/nyumba/internal/listing/domain"
	subdomain "github.com/nyumbahq/nyumba/internal/subscription/domain"
)

// respondError translates domain errors into API responses without
// leaking internals.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, agentdomain.ErrAgentNotFound),
		errors.Is(err, listingdomain.ErrListingNotFound),
		errors.Is(err, coopdomain.ErrCooperativeNotFound),
		errors.Is(err, coopdomain.ErrContributionNotFound),
		errors.Is(err, subdomain.ErrSubscriptionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, agentdomain.ErrDuplicateEmail),
		errors.Is(err, listingdomain.ErrDuplicateSlug),
		errors.Is(err, coopdomain.ErrDuplicateReference),
		errors.Is(err, subdomain.ErrDuplicateReference):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, listingdomain.ErrQuotaExceeded):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, coopdomain.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, agentdomain.ErrInvalidAgent),
		errors.Is(err, agentdomain.ErrInvalidTier),
		errors.Is(err, listingdomain.ErrInvalidListing),
		errors.Is(err, coopdomain.ErrInvalidCooperative),
		errors.Is(err, coopdomain.ErrInvalidContribution),
		errors.Is(err, subdomain.ErrInvalidActivation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
