package scoring

import "prospect-crm/internal/domain"

const (
	hotThreshold  = 70
	warmThreshold = 40
)

// Tier es la etiqueta de temperatura que se muestra como badge.
type Tier string

const (
	TierHot  Tier = "hot"
	TierWarm Tier = "warm"
	TierCold Tier = "cold"
)

func TierFromScore(score int) Tier {
	switch {
	case score >= hotThreshold:
		return TierHot
	case score >= warmThreshold:
		return TierWarm
	default:
		return TierCold
	}
}

// RecommendNextAction mapea el score a la siguiente accion del pipeline de outreach.
func RecommendNextAction(score int) domain.NextAction {
	switch TierFromScore(score) {
	case TierHot:
		return domain.NextActionSendDM
	case TierWarm:
		return domain.NextActionWarmUp
	default:
		return domain.NextActionNurture
	}
}
