package service

import (
	"context"

	"prospect-crm/internal/domain"
)

// HumanAssessment son las tres respuestas libres del humano que audita el perfil.
type HumanAssessment struct {
	Profitability string `json:"profitability" validate:"required"`
	Visuals       string `json:"visuals" validate:"required"`
	Strategy      string `json:"strategy" validate:"required"`
}

// EvaluationRequest es la entrada del evaluador.
type EvaluationRequest struct {
	Metrics    domain.ProfileMetrics `json:"metrics"`
	Assessment HumanAssessment       `json:"assessment"`
}

// QualificationDraft es lo que produce un backend de calificacion antes de que el
// servicio recalcule el score y normalice las etiquetas.
type QualificationDraft struct {
	Data          domain.QualificationData
	ReportedScore *int
	PainPoints    []string
	Goals         []string
	Summary       string
	BackendName   string
}

// Qualifier traduce metricas + juicio humano en señales estructuradas.
// Implementaciones: LLMQualifier (generador de texto) y RuleQualifier (tablas de keywords).
type Qualifier interface {
	Qualify(ctx context.Context, req EvaluationRequest) (QualificationDraft, error)
}
