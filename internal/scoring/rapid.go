package scoring

import "prospect-crm/internal/domain"

const (
	rapidPointsBusiness         = 20
	rapidPointsInconsistentGrid = 15
	rapidPointsLowEngagement    = 15
	rapidPointsNoClearCTA       = 10
	rapidPointsValueProposition = 5
	rapidPointsFollowers        = 10
	rapidFollowersThreshold     = 500
)

// RapidFlags son las respuestas del checklist manual si/no.
type RapidFlags struct {
	IsBusiness          bool                    `json:"isBusiness"`
	HasInconsistentGrid bool                    `json:"hasInconsistentGrid"`
	HasLowEngagement    bool                    `json:"hasLowEngagement"`
	HasNoClearCTA       bool                    `json:"hasNoClearCTA"`
	ValueProposition    domain.ValueProposition `json:"valueProposition"`
}

// RapidScore es el modelo simplificado sin base. No se recorta: su escala es 0-75
// y no debe mezclarse con la del evaluador.
func RapidScore(flags RapidFlags, followerCount *int) int {
	return RapidBreakdown(flags, followerCount).Score
}

// RapidBreakdown devuelve el mismo score que RapidScore con el desglose de terminos.
func RapidBreakdown(flags RapidFlags, followerCount *int) Result {
	var breakdown []Factor
	add := func(name string, points int) {
		breakdown = append(breakdown, Factor{Name: name, Points: points})
	}

	if flags.IsBusiness {
		add("is_business", rapidPointsBusiness)
	}
	if flags.HasInconsistentGrid {
		add("inconsistent_grid", rapidPointsInconsistentGrid)
	}
	if flags.HasLowEngagement {
		add("low_engagement", rapidPointsLowEngagement)
	}
	if flags.HasNoClearCTA {
		add("no_clear_cta", rapidPointsNoClearCTA)
	}
	if flags.hasValueProposition() {
		add("value_proposition_known", rapidPointsValueProposition)
	}
	if followerCount != nil && *followerCount > rapidFollowersThreshold {
		add("followers_over_500", rapidPointsFollowers)
	}

	total := 0
	for _, f := range breakdown {
		total += f.Points
	}
	return Result{Score: total, Raw: total, Breakdown: breakdown}
}

func (f RapidFlags) hasValueProposition() bool {
	return f.ValueProposition != "" && f.ValueProposition != domain.ValuePropUnknown
}

// QualificationData arma el borrador de QualificationData a partir del checklist.
// Lo que el checklist no pregunta queda en unknown.
func (f RapidFlags) QualificationData() domain.QualificationData {
	q := domain.DefaultQualificationData()
	q.IsBusiness = domain.TriStateFromBool(f.IsBusiness)
	q.HasInconsistentGrid = domain.TriStateFromBool(f.HasInconsistentGrid)
	q.HasLowEngagement = domain.TriStateFromBool(f.HasLowEngagement)
	q.HasNoClearCTA = domain.TriStateFromBool(f.HasNoClearCTA)
	if f.hasValueProposition() {
		q.ValueProposition = f.ValueProposition
	}
	return q
}
