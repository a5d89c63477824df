package domain

// PainPoint es una etiqueta del vocabulario cerrado de problemas del prospecto.
type PainPoint string

const (
	PainInconsistentGrid PainPoint = "Inconsistent grid"
	PainLowEngagement    PainPoint = "Low engagement"
	PainNoClearCTA       PainPoint = "No clear CTA / no DMs"
	PainWeakBranding     PainPoint = "Weak branding or visuals"
	PainUnclearPillars   PainPoint = "Unclear content pillars"
	PainNoSalesFunnel    PainPoint = "No sales funnel"
	PainNotMonetizing    PainPoint = "Not monetizing audience"
)

// Goal es una etiqueta del vocabulario cerrado de objetivos del prospecto.
type Goal string

const (
	GoalAttractIdealClients Goal = "Attract ideal clients"
	GoalGrowFollowers       Goal = "Grow followers"
	GoalIncreaseEngagement  Goal = "Increase engagement"
	GoalElevateBrand        Goal = "Elevate brand aesthetic"
	GoalConvertFollowers    Goal = "Convert followers into sales"
	GoalClarifyMessaging    Goal = "Clarify messaging"
)

// PainPointVocabulary define el orden canonico de las etiquetas de dolor.
var PainPointVocabulary = []PainPoint{
	PainInconsistentGrid,
	PainLowEngagement,
	PainNoClearCTA,
	PainWeakBranding,
	PainUnclearPillars,
	PainNoSalesFunnel,
	PainNotMonetizing,
}

// GoalVocabulary define el orden canonico de las etiquetas de objetivo.
var GoalVocabulary = []Goal{
	GoalAttractIdealClients,
	GoalGrowFollowers,
	GoalIncreaseEngagement,
	GoalElevateBrand,
	GoalConvertFollowers,
	GoalClarifyMessaging,
}

func (p PainPoint) Valid() bool {
	for _, v := range PainPointVocabulary {
		if v == p {
			return true
		}
	}
	return false
}

func (g Goal) Valid() bool {
	for _, v := range GoalVocabulary {
		if v == g {
			return true
		}
	}
	return false
}
