package scoring

import "prospect-crm/internal/domain"

type tagRule struct {
	name       string
	match      func(q domain.QualificationData) bool
	painPoints []domain.PainPoint
	goals      []domain.Goal
}

// tagRules es la unica fuente de verdad que mapea señales a etiquetas.
var tagRules = []tagRule{
	{
		name:       "inconsistent_grid",
		match:      func(q domain.QualificationData) bool { return q.HasInconsistentGrid == domain.Yes },
		painPoints: []domain.PainPoint{domain.PainInconsistentGrid, domain.PainWeakBranding},
		goals:      []domain.Goal{domain.GoalElevateBrand},
	},
	{
		name:       "low_engagement",
		match:      func(q domain.QualificationData) bool { return q.HasLowEngagement == domain.Yes },
		painPoints: []domain.PainPoint{domain.PainLowEngagement},
		goals:      []domain.Goal{domain.GoalIncreaseEngagement},
	},
	{
		name:       "no_clear_cta",
		match:      func(q domain.QualificationData) bool { return q.HasNoClearCTA == domain.Yes },
		painPoints: []domain.PainPoint{domain.PainNoClearCTA},
		goals:      []domain.Goal{domain.GoalConvertFollowers},
	},
	{
		name:       "unclear_pillars",
		match:      func(q domain.QualificationData) bool { return q.ContentPillarClarity == domain.PillarsUnclear },
		painPoints: []domain.PainPoint{domain.PainUnclearPillars},
		goals:      []domain.Goal{domain.GoalClarifyMessaging},
	},
	{
		name:       "no_funnel",
		match:      func(q domain.QualificationData) bool { return q.SalesFunnelStrength == domain.FunnelNone },
		painPoints: []domain.PainPoint{domain.PainNoSalesFunnel},
		goals:      []domain.Goal{domain.GoalConvertFollowers},
	},
	{
		name: "business_low_profit",
		match: func(q domain.QualificationData) bool {
			return q.IsBusiness == domain.Yes && q.ProfitabilityPotential == domain.ProfitabilityLow
		},
		painPoints: []domain.PainPoint{domain.PainNotMonetizing},
	},
	{
		name:  "value_visuals",
		match: func(q domain.QualificationData) bool { return q.ValueProposition == domain.ValuePropVisuals },
		goals: []domain.Goal{domain.GoalElevateBrand},
	},
	{
		name:  "value_leads",
		match: func(q domain.QualificationData) bool { return q.ValueProposition == domain.ValuePropLeads },
		goals: []domain.Goal{domain.GoalAttractIdealClients},
	},
	{
		name:  "value_engagement",
		match: func(q domain.QualificationData) bool { return q.ValueProposition == domain.ValuePropEngagement },
		goals: []domain.Goal{domain.GoalGrowFollowers, domain.GoalIncreaseEngagement},
	},
}

// DeriveTags aplica la tabla de reglas. El resultado sigue el orden del vocabulario
// y no tiene duplicados, asi que la misma QualificationData siempre da las mismas etiquetas.
func DeriveTags(q domain.QualificationData) ([]domain.PainPoint, []domain.Goal) {
	q = q.Normalize()
	pains := make(map[domain.PainPoint]bool)
	goals := make(map[domain.Goal]bool)
	for _, rule := range tagRules {
		if !rule.match(q) {
			continue
		}
		for _, p := range rule.painPoints {
			pains[p] = true
		}
		for _, g := range rule.goals {
			goals[g] = true
		}
	}
	return orderPainPoints(pains), orderGoals(goals)
}

// MergeTags une etiquetas derivadas con propuestas externas, descartando lo que no
// pertenece al vocabulario cerrado.
func MergeTags(derivedPains []domain.PainPoint, derivedGoals []domain.Goal, extraPains []string, extraGoals []string) ([]domain.PainPoint, []domain.Goal) {
	pains := make(map[domain.PainPoint]bool)
	goals := make(map[domain.Goal]bool)
	for _, p := range derivedPains {
		pains[p] = true
	}
	for _, g := range derivedGoals {
		goals[g] = true
	}
	for _, raw := range extraPains {
		if p := domain.PainPoint(raw); p.Valid() {
			pains[p] = true
		}
	}
	for _, raw := range extraGoals {
		if g := domain.Goal(raw); g.Valid() {
			goals[g] = true
		}
	}
	return orderPainPoints(pains), orderGoals(goals)
}

func orderPainPoints(set map[domain.PainPoint]bool) []domain.PainPoint {
	out := make([]domain.PainPoint, 0, len(set))
	for _, p := range domain.PainPointVocabulary {
		if set[p] {
			out = append(out, p)
		}
	}
	return out
}

func orderGoals(set map[domain.Goal]bool) []domain.Goal {
	out := make([]domain.Goal, 0, len(set))
	for _, g := range domain.GoalVocabulary {
		if set[g] {
			out = append(out, g)
		}
	}
	return out
}
