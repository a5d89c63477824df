package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prospect-crm/internal/domain"
	"prospect-crm/internal/scoring"
	"prospect-crm/internal/service"
)

// ScoringHandler calcula scores sin persistir nada.
type ScoringHandler struct {
	logger    *zap.Logger
	evaluator *service.QualificationService
}

func NewScoringHandler(logger *zap.Logger, evaluator *service.QualificationService) *ScoringHandler {
	return &ScoringHandler{logger: logger, evaluator: evaluator}
}

// Evaluate maneja POST /scoring/evaluate.
func (h *ScoringHandler) Evaluate(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req service.EvaluationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "evaluate", err)
		return
	}
	eval, err := h.evaluator.EvaluateAs(c.Request.Context(), owner, req)
	if err != nil {
		respondError(c, h.logger, "evaluate", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluation": eval})
}

// Rapid maneja POST /scoring/rapid. Es puro y no consume cuota del generador.
func (h *ScoringHandler) Rapid(c *gin.Context) {
	var req struct {
		scoring.RapidFlags
		FollowerCount *int `json:"followerCount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "rapid score", err)
		return
	}
	if req.ValueProposition != "" && !req.ValueProposition.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown value proposition", "field": "valueProposition"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"evaluation": service.RapidEvaluate(req.RapidFlags, req.FollowerCount)})
}

// Vocabulary maneja GET /scoring/vocabulary para poblar los filtros del front.
func (h *ScoringHandler) Vocabulary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"painPoints": domain.PainPointVocabulary,
		"goals":      domain.GoalVocabulary,
	})
}
