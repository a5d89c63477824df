package domain

import "fmt"

// TriState representa una señal si/no que puede no haberse observado.
type TriState string

const (
	Yes     TriState = "yes"
	No      TriState = "no"
	Unknown TriState = "unknown"
)

// ValueProposition es el eje principal de mejora que se le ofrece al prospecto.
type ValueProposition string

const (
	ValuePropVisuals    ValueProposition = "visuals"
	ValuePropLeads      ValueProposition = "leads"
	ValuePropEngagement ValueProposition = "engagement"
	ValuePropUnknown    ValueProposition = "unknown"
)

type ProfitabilityPotential string

const (
	ProfitabilityLow     ProfitabilityPotential = "low"
	ProfitabilityMedium  ProfitabilityPotential = "medium"
	ProfitabilityHigh    ProfitabilityPotential = "high"
	ProfitabilityUnknown ProfitabilityPotential = "unknown"
)

type ContentPillarClarity string

const (
	PillarsUnclear       ContentPillarClarity = "unclear"
	PillarsSomewhatClear ContentPillarClarity = "somewhat-clear"
	PillarsVeryClear     ContentPillarClarity = "very-clear"
	PillarsUnknown       ContentPillarClarity = "unknown"
)

type SalesFunnelStrength string

const (
	FunnelNone    SalesFunnelStrength = "none"
	FunnelWeak    SalesFunnelStrength = "weak"
	FunnelStrong  SalesFunnelStrength = "strong"
	FunnelUnknown SalesFunnelStrength = "unknown"
)

// QualificationData es la foto de señales derivadas de metricas y juicio humano.
// Las claves JSON son parte del contrato con el generador de texto.
type QualificationData struct {
	IsBusiness             TriState               `json:"isBusiness"`
	HasInconsistentGrid    TriState               `json:"hasInconsistentGrid"`
	HasLowEngagement       TriState               `json:"hasLowEngagement"`
	HasNoClearCTA          TriState               `json:"hasNoClearCTA"`
	ValueProposition       ValueProposition       `json:"valueProposition"`
	ProfitabilityPotential ProfitabilityPotential `json:"profitabilityPotential"`
	ContentPillarClarity   ContentPillarClarity   `json:"contentPillarClarity"`
	SalesFunnelStrength    SalesFunnelStrength    `json:"salesFunnelStrength"`
}

// DefaultQualificationData devuelve todas las señales en unknown.
func DefaultQualificationData() QualificationData {
	return QualificationData{
		IsBusiness:             Unknown,
		HasInconsistentGrid:    Unknown,
		HasLowEngagement:       Unknown,
		HasNoClearCTA:          Unknown,
		ValueProposition:       ValuePropUnknown,
		ProfitabilityPotential: ProfitabilityUnknown,
		ContentPillarClarity:   PillarsUnknown,
		SalesFunnelStrength:    FunnelUnknown,
	}
}

// Normalize rellena con unknown cualquier campo vacio. Nunca deja un campo ausente.
func (q QualificationData) Normalize() QualificationData {
	d := DefaultQualificationData()
	if q.IsBusiness != "" {
		d.IsBusiness = q.IsBusiness
	}
	if q.HasInconsistentGrid != "" {
		d.HasInconsistentGrid = q.HasInconsistentGrid
	}
	if q.HasLowEngagement != "" {
		d.HasLowEngagement = q.HasLowEngagement
	}
	if q.HasNoClearCTA != "" {
		d.HasNoClearCTA = q.HasNoClearCTA
	}
	if q.ValueProposition != "" {
		d.ValueProposition = q.ValueProposition
	}
	if q.ProfitabilityPotential != "" {
		d.ProfitabilityPotential = q.ProfitabilityPotential
	}
	if q.ContentPillarClarity != "" {
		d.ContentPillarClarity = q.ContentPillarClarity
	}
	if q.SalesFunnelStrength != "" {
		d.SalesFunnelStrength = q.SalesFunnelStrength
	}
	return d
}

// Validate verifica que cada campo pertenezca a su vocabulario cerrado.
func (q QualificationData) Validate() error {
	triStates := []struct {
		name  string
		value TriState
	}{
		{"isBusiness", q.IsBusiness},
		{"hasInconsistentGrid", q.HasInconsistentGrid},
		{"hasLowEngagement", q.HasLowEngagement},
		{"hasNoClearCTA", q.HasNoClearCTA},
	}
	for _, ts := range triStates {
		if !ts.value.Valid() {
			return fmt.Errorf("%s: invalid value %q", ts.name, ts.value)
		}
	}
	if !q.ValueProposition.Valid() {
		return fmt.Errorf("valueProposition: invalid value %q", q.ValueProposition)
	}
	if !q.ProfitabilityPotential.Valid() {
		return fmt.Errorf("profitabilityPotential: invalid value %q", q.ProfitabilityPotential)
	}
	if !q.ContentPillarClarity.Valid() {
		return fmt.Errorf("contentPillarClarity: invalid value %q", q.ContentPillarClarity)
	}
	if !q.SalesFunnelStrength.Valid() {
		return fmt.Errorf("salesFunnelStrength: invalid value %q", q.SalesFunnelStrength)
	}
	return nil
}

func (t TriState) Valid() bool {
	switch t {
	case Yes, No, Unknown:
		return true
	}
	return false
}

func (v ValueProposition) Valid() bool {
	switch v {
	case ValuePropVisuals, ValuePropLeads, ValuePropEngagement, ValuePropUnknown:
		return true
	}
	return false
}

func (p ProfitabilityPotential) Valid() bool {
	switch p {
	case ProfitabilityLow, ProfitabilityMedium, ProfitabilityHigh, ProfitabilityUnknown:
		return true
	}
	return false
}

func (c ContentPillarClarity) Valid() bool {
	switch c {
	case PillarsUnclear, PillarsSomewhatClear, PillarsVeryClear, PillarsUnknown:
		return true
	}
	return false
}

func (s SalesFunnelStrength) Valid() bool {
	switch s {
	case FunnelNone, FunnelWeak, FunnelStrong, FunnelUnknown:
		return true
	}
	return false
}

// TriStateFromBool convierte una respuesta del checklist rapido.
func TriStateFromBool(b bool) TriState {
	if b {
		return Yes
	}
	return No
}
