package server

import (
	"net/http"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	listingdomain "github.com/nyumbahq/nyumba/internal/listing/domain"
)

func (s *Server) handleCreateListing(c *gin.Context) {
	var req listingdomain.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	listing, err := s.listings.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, listing)
}

func (s *Server) handleListListings(c *gin.Context) {
	filter := listingdomain.ListFilter{
		Status: listingdomain.Status(c.Query("status")),
		Limit:  intQuery(c, "limit", 20),
		Offset: intQuery(c, "offset", 0),
	}
	if raw := c.Query("agent_id"); raw != "" {
		id, err := snowflake.ParseString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_agent_id"})
			return
		}
		filter.AgentID = id
	}

	listings, total, err := s.listings.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  listings,
		"total": total,
	})
}

func (s *Server) handleGetListing(c *gin.Context) {
	listing, err := s.listings.GetBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (s *Server) handleArchiveListing(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := s.listings.Archive(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
