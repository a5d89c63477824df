// Package scoring contiene el nucleo deterministico de calificacion de prospectos:
// el modelo aditivo del evaluador, el scorer rapido, la tabla de etiquetas y el
// clasificador por palabras clave.
package scoring

import "prospect-crm/internal/domain"

const (
	evaluatorBase = 10

	pointsBusiness          = 15
	pointsProfitHigh        = 20
	pointsProfitMedium      = 10
	pointsProfitLow         = -15
	pointsFunnelStrong      = 10
	pointsFunnelWeak        = 5
	pointsFollowersLarge    = 10
	pointsFollowersMid      = 5
	pointsUnclearPillars    = 10
	pointsLowEngagement     = 10
	pointsInconsistentGrid  = 10
	pointsNoClearCTA        = 5
	followersLargeThreshold = 10000
	followersMidThreshold   = 1000

	MinLeadScore = 0
	MaxLeadScore = 100
)

// Factor es un termino aplicado del modelo aditivo.
type Factor struct {
	Name   string `json:"factor"`
	Points int    `json:"points"`
}

// Result guarda el score final, la suma sin recortar y el desglose.
type Result struct {
	Score     int      `json:"score"`
	Raw       int      `json:"raw"`
	Breakdown []Factor `json:"breakdown"`
}

// EvaluatorScore aplica el modelo Foundation + Opportunity y recorta a [0,100].
// Los tiers de seguidores son excluyentes: gana el mas alto.
func EvaluatorScore(q domain.QualificationData, followerCount *int) Result {
	q = q.Normalize()
	breakdown := []Factor{{Name: "base", Points: evaluatorBase}}
	add := func(name string, points int) {
		breakdown = append(breakdown, Factor{Name: name, Points: points})
	}

	if q.IsBusiness == domain.Yes {
		add("is_business", pointsBusiness)
	}

	switch q.ProfitabilityPotential {
	case domain.ProfitabilityHigh:
		add("profitability_high", pointsProfitHigh)
	case domain.ProfitabilityMedium:
		add("profitability_medium", pointsProfitMedium)
	case domain.ProfitabilityLow:
		add("profitability_low", pointsProfitLow)
	}

	switch q.SalesFunnelStrength {
	case domain.FunnelStrong:
		add("sales_funnel_strong", pointsFunnelStrong)
	case domain.FunnelWeak:
		add("sales_funnel_weak", pointsFunnelWeak)
	}

	if followerCount != nil {
		switch {
		case *followerCount > followersLargeThreshold:
			add("followers_over_10000", pointsFollowersLarge)
		case *followerCount > followersMidThreshold:
			add("followers_over_1000", pointsFollowersMid)
		}
	}

	if q.ContentPillarClarity == domain.PillarsUnclear {
		add("content_pillars_unclear", pointsUnclearPillars)
	}
	if q.HasLowEngagement == domain.Yes {
		add("low_engagement", pointsLowEngagement)
	}
	if q.HasInconsistentGrid == domain.Yes {
		add("inconsistent_grid", pointsInconsistentGrid)
	}
	if q.HasNoClearCTA == domain.Yes {
		add("no_clear_cta", pointsNoClearCTA)
	}

	raw := 0
	for _, f := range breakdown {
		raw += f.Points
	}
	return Result{
		Score:     Clamp(raw),
		Raw:       raw,
		Breakdown: breakdown,
	}
}

// Clamp recorta un score al rango [0,100].
func Clamp(score int) int {
	if score < MinLeadScore {
		return MinLeadScore
	}
	if score > MaxLeadScore {
		return MaxLeadScore
	}
	return score
}
