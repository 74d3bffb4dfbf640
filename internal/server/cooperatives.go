package server

import (
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"

	coopdomain "github.com/nyumbahq/nyumba/internal/cooperative/domain"
)

func (s *Server) handleCreateCooperative(c *gin.Context) {
	var req coopdomain.CreateCooperativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	coop, err := s.cooperatives.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, coop)
}

func (s *Server) handleListCooperatives(c *gin.Context) {
	coops, total, err := s.cooperatives.List(c.Request.Context(),
		intQuery(c, "limit", 20), intQuery(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  coops,
		"total": total,
	})
}

func (s *Server) handleGetCooperative(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	coop, err := s.cooperatives.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coop)
}

func (s *Server) handleListContributions(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	contributions, total, err := s.cooperatives.ListContributions(c.Request.Context(), id,
		intQuery(c, "limit", 20), intQuery(c, "offset", 0))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":  contributions,
		"total": total,
	})
}

type initiateContributionBody struct {
	MemberID snowflake.ID `json:"member_id" binding:"required"`
	Amount   int64        `json:"amount" binding:"required"`
	Provider string       `json:"provider"`
}

func (s *Server) handleInitiateContribution(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var body initiateContributionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	contribution, err := s.cooperatives.Initiate(c.Request.Context(), coopdomain.InitiateContributionRequest{
		CooperativeID: id,
		MemberID:      body.MemberID,
		Amount:        body.Amount,
		Provider:      body.Provider,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, contribution)
}

func (s *Server) handleCompleteCooperative(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	coop, err := s.cooperatives.Complete(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coop)
}

func (s *Server) handleDissolveCooperative(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	coop, err := s.cooperatives.Dissolve(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, coop)
}
