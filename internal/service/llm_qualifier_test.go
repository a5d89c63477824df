package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"prospect-crm/internal/domain"
	"prospect-crm/internal/llm"
)

const scenarioThreeResponse = "```json\n" + `{
  "qualificationData": {
    "isBusiness": "yes",
    "hasInconsistentGrid": "Yes",
    "hasLowEngagement": "yes",
    "hasNoClearCTA": "yes",
    "valueProposition": "leads",
    "profitabilityPotential": "high",
    "contentPillarClarity": "unclear",
    "salesFunnelStrength": "weak"
  },
  "leadScore": 95,
  "painPoints": ["Inconsistent grid", "Bad vibes"],
  "goals": ["Grow followers"],
  "summary": "High-ticket coach with a messy grid and no clear CTA."
}` + "\n```"

func TestParseQualificationResponse_Valid(t *testing.T) {
	draft, err := parseQualificationResponse(scenarioThreeResponse)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.Data.HasInconsistentGrid != domain.Yes {
		t.Fatalf("expected enum case normalized, got %q", draft.Data.HasInconsistentGrid)
	}
	if draft.ReportedScore == nil || *draft.ReportedScore != 95 {
		t.Fatalf("expected reported score 95, got %v", draft.ReportedScore)
	}
	if draft.Summary == "" || len(draft.PainPoints) != 2 {
		t.Fatalf("unexpected draft: %+v", draft)
	}
}

func TestParseQualificationResponse_Failures(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantMsg string
	}{
		{"no json", "I cannot evaluate this profile.", "no structured output"},
		{
			"missing top-level field",
			`{"qualificationData": {}, "leadScore": 10, "painPoints": [], "goals": []}`,
			"summary",
		},
		{
			"missing nested field",
			`{"qualificationData": {"isBusiness": "yes"}, "leadScore": 10, "painPoints": [], "goals": [], "summary": "x"}`,
			"hasInconsistentGrid",
		},
		{
			"null counts as missing",
			`{"qualificationData": null, "leadScore": 10, "painPoints": [], "goals": [], "summary": "x"}`,
			"qualificationData",
		},
		{
			"wrong type",
			`{"qualificationData": {"isBusiness": "yes", "hasInconsistentGrid": "no", "hasLowEngagement": "no",
			  "hasNoClearCTA": "no", "valueProposition": "leads", "profitabilityPotential": "high",
			  "contentPillarClarity": "unclear", "salesFunnelStrength": "weak"},
			  "leadScore": "very high", "painPoints": [], "goals": [], "summary": "x"}`,
			"leadScore",
		},
		{
			"out of vocabulary enum",
			`{"qualificationData": {"isBusiness": "maybe", "hasInconsistentGrid": "no", "hasLowEngagement": "no",
			  "hasNoClearCTA": "no", "valueProposition": "leads", "profitabilityPotential": "high",
			  "contentPillarClarity": "unclear", "salesFunnelStrength": "weak"},
			  "leadScore": 10, "painPoints": [], "goals": [], "summary": "x"}`,
			"invalid qualificationData",
		},
		{
			"blank summary",
			`{"qualificationData": {"isBusiness": "yes", "hasInconsistentGrid": "no", "hasLowEngagement": "no",
			  "hasNoClearCTA": "no", "valueProposition": "leads", "profitabilityPotential": "high",
			  "contentPillarClarity": "unclear", "salesFunnelStrength": "weak"},
			  "leadScore": 10, "painPoints": [], "goals": [], "summary": "  "}`,
			"empty summary",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseQualificationResponse(tt.raw)
			var gf *GenerationFailure
			if !errors.As(err, &gf) {
				t.Fatalf("expected GenerationFailure, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("expected %q in error, got %q", tt.wantMsg, err.Error())
			}
		})
	}
}

func TestLLMQualifier_PromptCarriesContract(t *testing.T) {
	mock := &llm.MockClient{Response: scenarioThreeResponse}
	q := NewLLMQualifier(mock, zap.NewNop())

	bio := "Business coach"
	req := EvaluationRequest{
		Metrics: domain.ProfileMetrics{InstagramHandle: "coach.ana", Biography: &bio},
		Assessment: HumanAssessment{
			Profitability: "sells high-ticket coaching",
			Visuals:       "messy grid",
			Strategy:      "needs more leads",
		},
	}
	draft, err := q.Qualify(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if draft.BackendName != "llm" {
		t.Fatalf("expected llm backend, got %q", draft.BackendName)
	}
	for _, fragment := range []string{"coach.ana", "sells high-ticket coaching", "No clear CTA / no DMs", "Clarify messaging", "-15 if low"} {
		if !strings.Contains(mock.LastPrompt, fragment) {
			t.Fatalf("expected prompt to contain %q", fragment)
		}
	}
}

func TestLLMQualifier_GenerateErrorsAreGenerationFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		reason string
	}{
		{"timeout", context.DeadlineExceeded, "generation timed out"},
		{"transport", errors.New("connection refused"), "llm generate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := NewLLMQualifier(&llm.MockClient{Err: tt.err}, nil)
			_, err := q.Qualify(context.Background(), EvaluationRequest{})
			var gf *GenerationFailure
			if !errors.As(err, &gf) || gf.Reason != tt.reason {
				t.Fatalf("expected GenerationFailure %q, got %v", tt.reason, err)
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected wrapped cause, got %v", err)
			}
		})
	}
}
