package domain

import "time"

// ProspectStatus es la etapa del prospecto dentro del pipeline de outreach.
type ProspectStatus string

const (
	ProspectStatusNew           ProspectStatus = "new"
	ProspectStatusQualified     ProspectStatus = "qualified"
	ProspectStatusWarmingUp     ProspectStatus = "warming_up"
	ProspectStatusContacted     ProspectStatus = "contacted"
	ProspectStatusReplied       ProspectStatus = "replied"
	ProspectStatusConverted     ProspectStatus = "converted"
	ProspectStatusNotInterested ProspectStatus = "not_interested"
)

func (s ProspectStatus) Valid() bool {
	switch s {
	case ProspectStatusNew, ProspectStatusQualified, ProspectStatusWarmingUp,
		ProspectStatusContacted, ProspectStatusReplied, ProspectStatusConverted,
		ProspectStatusNotInterested:
		return true
	}
	return false
}

// ScoringModel indica cual de los dos modelos independientes produjo el score.
// Los scores de modelos distintos no son comparables entre si.
type ScoringModel string

const (
	ScoringModelEvaluator ScoringModel = "evaluator"
	ScoringModelRapid     ScoringModel = "rapid"
)

func (m ScoringModel) Valid() bool {
	return m == ScoringModelEvaluator || m == ScoringModelRapid
}

// NextAction es la accion recomendada para el prospecto segun su score.
type NextAction string

const (
	NextActionSendDM  NextAction = "send_dm"
	NextActionWarmUp  NextAction = "warm_up"
	NextActionNurture NextAction = "nurture"
)

// ProfileMetrics son las metricas crudas del perfil. Los nil significan "no disponible".
type ProfileMetrics struct {
	InstagramHandle string   `json:"instagramHandle"`
	FollowerCount   *int     `json:"followerCount"`
	PostCount       *int     `json:"postCount"`
	AvgLikes        *float64 `json:"avgLikes"`
	AvgComments     *float64 `json:"avgComments"`
	Biography       *string  `json:"biography"`
}

// EngagementRate devuelve (likes+comments)/followers en porcentaje, si hay datos.
func (m ProfileMetrics) EngagementRate() (float64, bool) {
	if m.FollowerCount == nil || *m.FollowerCount <= 0 || m.AvgLikes == nil {
		return 0, false
	}
	interactions := *m.AvgLikes
	if m.AvgComments != nil {
		interactions += *m.AvgComments
	}
	return interactions / float64(*m.FollowerCount) * 100, true
}

type Prospect struct {
	ID                string             `json:"id"`
	OwnerID           string             `json:"owner_id"`
	InstagramHandle   string             `json:"instagram_handle"`
	FullName          string             `json:"full_name,omitempty"`
	Status            ProspectStatus     `json:"status"`
	Metrics           ProfileMetrics     `json:"metrics"`
	LeadScore         *int               `json:"lead_score,omitempty"`
	ScoringModel      ScoringModel       `json:"scoring_model,omitempty"`
	QualificationData *QualificationData `json:"qualification_data,omitempty"`
	PainPoints        []PainPoint        `json:"pain_points"`
	Goals             []Goal             `json:"goals"`
	Summary           string             `json:"summary,omitempty"`
	NextAction        NextAction         `json:"next_action,omitempty"`
	QualifiedAt       *time.Time         `json:"qualified_at,omitempty"`
	CreatedAt         time.Time          `json:"created_at"`
	UpdatedAt         time.Time          `json:"updated_at"`
}

// QualificationUpdate es lo que el nucleo de scoring entrega a la capa de persistencia.
type QualificationUpdate struct {
	ProspectID        string
	OwnerID           string
	LeadScore         int
	ScoringModel      ScoringModel
	QualificationData QualificationData
	PainPoints        []PainPoint
	Goals             []Goal
	Summary           string
	NextAction        NextAction
	QualifiedAt       time.Time
}

// ProspectFilter restringe los listados. MinScore solo tiene sentido dentro de un
// ScoringModel: las dos escalas no se mezclan.
type ProspectFilter struct {
	Status       ProspectStatus
	ScoringModel ScoringModel
	MinScore     *int
	Limit        int
	Offset       int
}
