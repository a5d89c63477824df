package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"prospect-crm/internal/domain"
	"prospect-crm/internal/llm"
)

const qualificationPromptTemplate = `You are a lead-qualification analyst for a social-media marketing agency.
Evaluate the Instagram prospect below and return ONLY a JSON object, no prose, with exactly this shape:
{
  "qualificationData": {
    "isBusiness": "yes|no|unknown",
    "hasInconsistentGrid": "yes|no|unknown",
    "hasLowEngagement": "yes|no|unknown",
    "hasNoClearCTA": "yes|no|unknown",
    "valueProposition": "visuals|leads|engagement|unknown",
    "profitabilityPotential": "low|medium|high|unknown",
    "contentPillarClarity": "unclear|somewhat-clear|very-clear|unknown",
    "salesFunnelStrength": "none|weak|strong|unknown"
  },
  "leadScore": 0,
  "painPoints": [],
  "goals": [],
  "summary": ""
}

Rules:
1. Infer isBusiness, hasLowEngagement, hasNoClearCTA, contentPillarClarity and salesFunnelStrength from the profile metrics and bio. Use "unknown" when the data is missing.
2. Map the human profitability answer to profitabilityPotential (e.g. "high-ticket" -> high, "products" -> medium, "hobby" -> low).
3. Map the human visuals answer to hasInconsistentGrid (e.g. "messy" -> yes, "polished" -> no).
4. Map the human strategy answer to valueProposition (visuals, leads or engagement).
5. leadScore = 10 (base)
   +15 if isBusiness is yes
   +20 if profitabilityPotential is high, +10 if medium, -15 if low
   +10 if salesFunnelStrength is strong, +5 if weak
   +10 if followerCount > 10000, otherwise +5 if followerCount > 1000
   +10 if contentPillarClarity is unclear
   +10 if hasLowEngagement is yes
   +10 if hasInconsistentGrid is yes
   +5 if hasNoClearCTA is yes
   Clamp the result to 0..100.
6. painPoints must be chosen only from: %s
7. goals must be chosen only from: %s
8. summary: one or two sentences.

Profile metrics:
%s

Human assessment:
- How the account monetizes: %s
- Visual branding impression: %s
- Biggest strategic opportunity: %s`

// qualificationResponseSchema fija la presencia y el tipo de cada campo del contrato.
// Los valores de los enums se validan despues, una vez normalizado el case.
const qualificationResponseSchema = `{
  "type": "object",
  "required": ["qualificationData", "leadScore", "painPoints", "goals", "summary"],
  "properties": {
    "qualificationData": {
      "type": "object",
      "required": [
        "isBusiness", "hasInconsistentGrid", "hasLowEngagement", "hasNoClearCTA",
        "valueProposition", "profitabilityPotential", "contentPillarClarity", "salesFunnelStrength"
      ],
      "properties": {
        "isBusiness": {"type": "string"},
        "hasInconsistentGrid": {"type": "string"},
        "hasLowEngagement": {"type": "string"},
        "hasNoClearCTA": {"type": "string"},
        "valueProposition": {"type": "string"},
        "profitabilityPotential": {"type": "string"},
        "contentPillarClarity": {"type": "string"},
        "salesFunnelStrength": {"type": "string"}
      }
    },
    "leadScore": {"type": "number"},
    "painPoints": {"type": "array", "items": {"type": "string"}},
    "goals": {"type": "array", "items": {"type": "string"}},
    "summary": {"type": "string"}
  }
}`

var qualificationSchema = mustCompileSchema(qualificationResponseSchema)

func mustCompileSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("compile qualification schema: %v", err))
	}
	return schema
}

// LLMQualifier delega el juicio al generador de texto y valida su salida contra el contrato.
type LLMQualifier struct {
	llmClient llm.LLMClient
	logger    *zap.Logger
}

func NewLLMQualifier(llmClient llm.LLMClient, logger *zap.Logger) *LLMQualifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LLMQualifier{llmClient: llmClient, logger: logger}
}

func (q *LLMQualifier) Qualify(ctx context.Context, req EvaluationRequest) (QualificationDraft, error) {
	prompt, err := buildQualificationPrompt(req)
	if err != nil {
		return QualificationDraft{}, fmt.Errorf("build prompt: %w", err)
	}

	rawResp, err := q.llmClient.Generate(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return QualificationDraft{}, generationFailure("generation timed out", err)
		}
		return QualificationDraft{}, generationFailure("llm generate", err)
	}

	draft, err := parseQualificationResponse(rawResp)
	if err != nil {
		q.logger.Warn("llm qualification response rejected",
			zap.String("handle", req.Metrics.InstagramHandle),
			zap.Error(err),
		)
		return QualificationDraft{}, err
	}
	draft.BackendName = "llm"
	return draft, nil
}

func buildQualificationPrompt(req EvaluationRequest) (string, error) {
	metricsJSON, err := json.MarshalIndent(req.Metrics, "", "  ")
	if err != nil {
		return "", err
	}

	pains := make([]string, 0, len(domain.PainPointVocabulary))
	for _, p := range domain.PainPointVocabulary {
		pains = append(pains, fmt.Sprintf("%q", p))
	}
	goals := make([]string, 0, len(domain.GoalVocabulary))
	for _, g := range domain.GoalVocabulary {
		goals = append(goals, fmt.Sprintf("%q", g))
	}

	return fmt.Sprintf(qualificationPromptTemplate,
		strings.Join(pains, ", "),
		strings.Join(goals, ", "),
		string(metricsJSON),
		strings.TrimSpace(req.Assessment.Profitability),
		strings.TrimSpace(req.Assessment.Visuals),
		strings.TrimSpace(req.Assessment.Strategy),
	), nil
}

type qualificationResponse struct {
	QualificationData domain.QualificationData `json:"qualificationData"`
	LeadScore         float64                  `json:"leadScore"`
	PainPoints        []string                 `json:"painPoints"`
	Goals             []string                 `json:"goals"`
	Summary           string                   `json:"summary"`
}

// parseQualificationResponse exige que esten todos los campos del contrato. Un campo
// ausente o null es GenerationFailure; nunca se completa con valores por defecto.
func parseQualificationResponse(raw string) (QualificationDraft, error) {
	payload, ok := extractJSONPayload(raw)
	if !ok {
		return QualificationDraft{}, generationFailure("no structured output in response", nil)
	}

	result, err := qualificationSchema.Validate(gojsonschema.NewStringLoader(payload))
	if err != nil {
		return QualificationDraft{}, generationFailure("parse llm response", err)
	}
	if !result.Valid() {
		return QualificationDraft{}, generationFailure("schema violations: "+describeSchemaErrors(result.Errors()), nil)
	}

	var parsed qualificationResponse
	if err := json.Unmarshal([]byte(payload), &parsed); err != nil {
		return QualificationDraft{}, generationFailure("decode llm response", err)
	}

	data := normalizeEnumCase(parsed.QualificationData)
	if err := data.Validate(); err != nil {
		return QualificationDraft{}, generationFailure("invalid qualificationData", err)
	}

	summary := strings.TrimSpace(parsed.Summary)
	if summary == "" {
		return QualificationDraft{}, generationFailure("empty summary", nil)
	}

	reported := int(parsed.LeadScore)
	return QualificationDraft{
		Data:          data,
		ReportedScore: &reported,
		PainPoints:    parsed.PainPoints,
		Goals:         parsed.Goals,
		Summary:       summary,
	}, nil
}

// describeSchemaErrors ordena los errores para que el mensaje sea estable.
func describeSchemaErrors(errs []gojsonschema.ResultError) string {
	out := make([]string, 0, len(errs))
	for _, e := range errs {
		out = append(out, e.Field()+": "+e.Description())
	}
	sort.Strings(out)
	return strings.Join(out, "; ")
}

func normalizeEnumCase(q domain.QualificationData) domain.QualificationData {
	lower := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return domain.QualificationData{
		IsBusiness:             domain.TriState(lower(string(q.IsBusiness))),
		HasInconsistentGrid:    domain.TriState(lower(string(q.HasInconsistentGrid))),
		HasLowEngagement:       domain.TriState(lower(string(q.HasLowEngagement))),
		HasNoClearCTA:          domain.TriState(lower(string(q.HasNoClearCTA))),
		ValueProposition:       domain.ValueProposition(lower(string(q.ValueProposition))),
		ProfitabilityPotential: domain.ProfitabilityPotential(lower(string(q.ProfitabilityPotential))),
		ContentPillarClarity:   domain.ContentPillarClarity(lower(string(q.ContentPillarClarity))),
		SalesFunnelStrength:    domain.SalesFunnelStrength(lower(string(q.SalesFunnelStrength))),
	}
}
