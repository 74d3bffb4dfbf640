package server

import (
	"errors"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	agentdomain "github.com/nyumbahq/nyumba/internal/agent/domain"
	subdomain "github.com/nyumbahq/nyumba/internal/subscription/domain"
)

func parseID(c *gin.Context, name string) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_id"})
		return 0, false
	}
	return id, true
}

func (s *Server) handleCreateAgent(c *gin.Context) {
	var req agentdomain.CreateAgentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	agent, err := s.agents.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, agent)
}

func (s *Server) handleGetAgent(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	agent, err := s.agents.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, agent)
}

func (s *Server) handleGetAgentSubscription(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	sub, err := s.subscriptions.GetActiveForAgent(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, subdomain.ErrSubscriptionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}
