package service

import (
	"context"

	"prospect-crm/internal/scoring"
)

// RuleQualifier reemplaza al generador de texto por tablas de keywords. Es totalmente
// local y deterministico.
type RuleQualifier struct{}

func NewRuleQualifier() *RuleQualifier {
	return &RuleQualifier{}
}

func (RuleQualifier) Qualify(ctx context.Context, req EvaluationRequest) (QualificationDraft, error) {
	if err := ctx.Err(); err != nil {
		return QualificationDraft{}, err
	}

	data := scoring.InferFromMetrics(req.Metrics)
	data.ProfitabilityPotential = scoring.ClassifyProfitability(req.Assessment.Profitability)
	data.HasInconsistentGrid = scoring.ClassifyVisuals(req.Assessment.Visuals)
	data.ValueProposition = scoring.ClassifyStrategy(req.Assessment.Strategy)

	score := scoring.EvaluatorScore(data, req.Metrics.FollowerCount).Score
	return QualificationDraft{
		Data:          data,
		ReportedScore: &score,
		Summary:       scoring.RuleSummary(req.Metrics.InstagramHandle, data, score),
		BackendName:   "rules",
	}, nil
}
