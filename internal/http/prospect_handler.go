package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prospect-crm/internal/domain"
	"prospect-crm/internal/scoring"
	"prospect-crm/internal/service"
)

// ProspectHandler expone el CRUD de prospectos y sus dos modelos de calificacion.
type ProspectHandler struct {
	logger    *zap.Logger
	prospects *service.ProspectService
}

func NewProspectHandler(logger *zap.Logger, prospects *service.ProspectService) *ProspectHandler {
	return &ProspectHandler{logger: logger, prospects: prospects}
}

// Create maneja POST /prospects.
func (h *ProspectHandler) Create(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req struct {
		InstagramHandle string                `json:"instagram_handle" binding:"required,max=64"`
		FullName        string                `json:"full_name"`
		Metrics         domain.ProfileMetrics `json:"metrics"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "create prospect", err)
		return
	}

	p, err := h.prospects.Create(c.Request.Context(), owner, service.CreateProspectInput{
		InstagramHandle: req.InstagramHandle,
		FullName:        req.FullName,
		Metrics:         req.Metrics,
	})
	if err != nil {
		respondError(c, h.logger, "create prospect", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"prospect": p})
}

// List maneja GET /prospects?status=&scoring_model=&min_score=&limit=&offset=.
func (h *ProspectHandler) List(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var q struct {
		Status       string `form:"status"`
		ScoringModel string `form:"scoring_model"`
		MinScore     *int   `form:"min_score" binding:"omitempty,min=0"`
		Limit        int    `form:"limit" binding:"omitempty,min=1,max=200"`
		Offset       int    `form:"offset" binding:"omitempty,min=0"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, h.logger, "list prospects", err)
		return
	}

	items, err := h.prospects.List(c.Request.Context(), owner, domain.ProspectFilter{
		Status:       domain.ProspectStatus(q.Status),
		ScoringModel: domain.ScoringModel(q.ScoringModel),
		MinScore:     q.MinScore,
		Limit:        q.Limit,
		Offset:       q.Offset,
	})
	if err != nil {
		respondError(c, h.logger, "list prospects", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prospects": items})
}

// Get maneja GET /prospects/:id.
func (h *ProspectHandler) Get(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	p, err := h.prospects.Get(c.Request.Context(), owner, c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "get prospect", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prospect": p, "tier": tierOf(p)})
}

// UpdateStatus maneja PATCH /prospects/:id/status.
func (h *ProspectHandler) UpdateStatus(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, h.logger, "update status", err)
		return
	}
	p, err := h.prospects.UpdateStatus(c.Request.Context(), owner, c.Param("id"), domain.ProspectStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, "update status", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prospect": p})
}

// UpdateMetrics maneja PUT /prospects/:id/metrics.
func (h *ProspectHandler) UpdateMetrics(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var metrics domain.ProfileMetrics
	if err := c.ShouldBindJSON(&metrics); err != nil {
		badRequest(c, h.logger, "update metrics", err)
		return
	}
	p, err := h.prospects.UpdateMetrics(c.Request.Context(), owner, c.Param("id"), metrics)
	if err != nil {
		respondError(c, h.logger, "update metrics", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prospect": p})
}

// Qualify maneja POST /prospects/:id/qualify con las tres respuestas del humano.
func (h *ProspectHandler) Qualify(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var assessment service.HumanAssessment
	if err := c.ShouldBindJSON(&assessment); err != nil {
		badRequest(c, h.logger, "qualify", err)
		return
	}
	p, eval, err := h.prospects.Qualify(c.Request.Context(), owner, c.Param("id"), assessment)
	if err != nil {
		respondError(c, h.logger, "qualify prospect", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prospect": p, "evaluation": eval})
}

// RapidQualify maneja POST /prospects/:id/rapid con el checklist si/no.
func (h *ProspectHandler) RapidQualify(c *gin.Context) {
	owner, ok := ownerID(c)
	if !ok {
		return
	}
	var flags scoring.RapidFlags
	if err := c.ShouldBindJSON(&flags); err != nil {
		badRequest(c, h.logger, "rapid qualify", err)
		return
	}
	p, eval, err := h.prospects.RapidQualify(c.Request.Context(), owner, c.Param("id"), flags)
	if err != nil {
		respondError(c, h.logger, "rapid qualify prospect", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prospect": p, "evaluation": eval})
}

// tierOf solo aplica a scores del evaluador; la escala rapida no comparte badges.
func tierOf(p domain.Prospect) scoring.Tier {
	if p.LeadScore == nil || p.ScoringModel != domain.ScoringModelEvaluator {
		return ""
	}
	return scoring.TierFromScore(*p.LeadScore)
}
