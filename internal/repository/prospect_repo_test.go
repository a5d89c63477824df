package repository

import (
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"prospect-crm/internal/domain"
)

func TestBuildListQuery(t *testing.T) {
	minScore := 40
	tests := []struct {
		name      string
		filter    domain.ProspectFilter
		contains  []string
		wantArgs  int
		wantLimit int
	}{
		{
			name:      "owner only",
			filter:    domain.ProspectFilter{},
			contains:  []string{"owner_id = $1", "LIMIT $2 OFFSET $3"},
			wantArgs:  3,
			wantLimit: defaultListLimit,
		},
		{
			name:      "status and min score",
			filter:    domain.ProspectFilter{Status: domain.ProspectStatusQualified, MinScore: &minScore, Limit: 10},
			contains:  []string{"status = $2", "lead_score >= $3", "LIMIT $4 OFFSET $5"},
			wantArgs:  5,
			wantLimit: 10,
		},
		{
			name:      "model and min score",
			filter:    domain.ProspectFilter{ScoringModel: domain.ScoringModelRapid, MinScore: &minScore},
			contains:  []string{"scoring_model = $2", "lead_score >= $3", "LIMIT $4 OFFSET $5"},
			wantArgs:  5,
			wantLimit: defaultListLimit,
		},
		{
			name:      "oversized limit falls back",
			filter:    domain.ProspectFilter{Limit: 5000, Offset: -3},
			contains:  []string{"LIMIT $2 OFFSET $3"},
			wantArgs:  3,
			wantLimit: defaultListLimit,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args := buildListQuery("owner-1", tt.filter)
			for _, fragment := range tt.contains {
				if !strings.Contains(query, fragment) {
					t.Fatalf("expected %q in query: %s", fragment, query)
				}
			}
			if len(args) != tt.wantArgs {
				t.Fatalf("expected %d args, got %d (%v)", tt.wantArgs, len(args), args)
			}
			if args[0] != "owner-1" {
				t.Fatalf("expected owner as first arg, got %v", args[0])
			}
			if got := args[len(args)-2]; got != tt.wantLimit {
				t.Fatalf("expected limit %d, got %v", tt.wantLimit, got)
			}
			if got := args[len(args)-1]; got.(int) < 0 {
				t.Fatalf("expected non-negative offset, got %v", got)
			}
		})
	}
}

func TestBuildListQuery_OrdersWithinScale(t *testing.T) {
	query, _ := buildListQuery("owner-1", domain.ProspectFilter{})
	rank := strings.Index(query, scoringModelRank)
	score := strings.Index(query, "lead_score DESC")
	if rank < 0 || score < 0 || rank > score {
		t.Fatalf("expected scoring model rank before lead_score in ORDER BY: %s", query)
	}
}

func TestTranslateError(t *testing.T) {
	if !errors.Is(translateError(pgx.ErrNoRows), ErrNotFound) {
		t.Fatalf("expected ErrNoRows -> ErrNotFound")
	}
	if !errors.Is(translateError(&pgconn.PgError{Code: "23505"}), ErrDuplicate) {
		t.Fatalf("expected unique violation -> ErrDuplicate")
	}
	if !errors.Is(translateError(&pgconn.PgError{Code: "22P02"}), ErrNotFound) {
		t.Fatalf("expected malformed uuid -> ErrNotFound")
	}
	other := errors.New("boom")
	if translateError(other) != other {
		t.Fatalf("expected unrelated errors untouched")
	}
	if translateError(nil) != nil {
		t.Fatalf("expected nil passthrough")
	}
}
