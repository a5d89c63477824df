package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"prospect-crm/internal/domain"
)

const (
	defaultListLimit = 50
	scoringModelRank = `CASE scoring_model WHEN 'evaluator' THEN 0 WHEN 'rapid' THEN 1 ELSE 2 END`
)

// ProspectRepository persiste prospectos. Todas las operaciones estan acotadas al dueño.
type ProspectRepository interface {
	Create(ctx context.Context, prospect domain.Prospect) error
	GetByID(ctx context.Context, ownerID, id string) (domain.Prospect, error)
	List(ctx context.Context, ownerID string, filter domain.ProspectFilter) ([]domain.Prospect, error)
	UpdateStatus(ctx context.Context, ownerID, id string, status domain.ProspectStatus, updatedAt time.Time) (domain.Prospect, error)
	UpdateMetrics(ctx context.Context, ownerID, id string, metrics domain.ProfileMetrics, updatedAt time.Time) (domain.Prospect, error)
	UpdateQualification(ctx context.Context, update domain.QualificationUpdate) (domain.Prospect, error)
}

type PgProspectRepository struct {
	pool *pgxpool.Pool
}

func NewPgProspectRepository(pool *pgxpool.Pool) *PgProspectRepository {
	return &PgProspectRepository{pool: pool}
}

const prospectColumns = `id, owner_id, instagram_handle, full_name, status, metrics, lead_score, scoring_model,
	qualification_data, pain_points, goals, summary, next_action, qualified_at, created_at, updated_at`

func (r *PgProspectRepository) Create(ctx context.Context, p domain.Prospect) error {
	const query = `
		INSERT INTO prospects (id, owner_id, instagram_handle, full_name, status, metrics, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	metrics, err := json.Marshal(p.Metrics)
	if err != nil {
		return fmt.Errorf("marshal metrics: %w", err)
	}
	_, err = r.pool.Exec(ctx, query,
		p.ID,
		p.OwnerID,
		p.InstagramHandle,
		p.FullName,
		string(p.Status),
		metrics,
		p.CreatedAt,
		p.UpdatedAt,
	)
	return translateError(err)
}

func (r *PgProspectRepository) GetByID(ctx context.Context, ownerID, id string) (domain.Prospect, error) {
	query := `SELECT ` + prospectColumns + ` FROM prospects WHERE owner_id = $1 AND id = $2`
	return scanProspect(r.pool.QueryRow(ctx, query, ownerID, id))
}

func (r *PgProspectRepository) List(ctx context.Context, ownerID string, filter domain.ProspectFilter) ([]domain.Prospect, error) {
	query, args := buildListQuery(ownerID, filter)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	prospects := make([]domain.Prospect, 0)
	for rows.Next() {
		p, err := scanProspect(rows)
		if err != nil {
			return nil, err
		}
		prospects = append(prospects, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return prospects, nil
}

func buildListQuery(ownerID string, filter domain.ProspectFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + prospectColumns + ` FROM prospects WHERE owner_id = $1`)
	args := []any{ownerID}

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if filter.ScoringModel != "" {
		args = append(args, string(filter.ScoringModel))
		fmt.Fprintf(&sb, " AND scoring_model = $%d", len(args))
	}
	if filter.MinScore != nil {
		args = append(args, *filter.MinScore)
		fmt.Fprintf(&sb, " AND lead_score >= $%d", len(args))
	}

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = defaultListLimit
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)
	// Primero los del evaluador, despues los rapidos, al final los no calificados: el
	// orden por score solo compara dentro de la misma escala.
	fmt.Fprintf(&sb, " ORDER BY %s, lead_score DESC NULLS LAST, created_at DESC LIMIT $%d OFFSET $%d",
		scoringModelRank, len(args)-1, len(args))
	return sb.String(), args
}

func (r *PgProspectRepository) UpdateStatus(ctx context.Context, ownerID, id string, status domain.ProspectStatus, updatedAt time.Time) (domain.Prospect, error) {
	query := `
		UPDATE prospects SET status = $3, updated_at = $4
		WHERE owner_id = $1 AND id = $2
		RETURNING ` + prospectColumns
	return scanProspect(r.pool.QueryRow(ctx, query, ownerID, id, string(status), updatedAt))
}

func (r *PgProspectRepository) UpdateMetrics(ctx context.Context, ownerID, id string, metrics domain.ProfileMetrics, updatedAt time.Time) (domain.Prospect, error) {
	payload, err := json.Marshal(metrics)
	if err != nil {
		return domain.Prospect{}, fmt.Errorf("marshal metrics: %w", err)
	}
	query := `
		UPDATE prospects SET metrics = $3, updated_at = $4
		WHERE owner_id = $1 AND id = $2
		RETURNING ` + prospectColumns
	return scanProspect(r.pool.QueryRow(ctx, query, ownerID, id, payload, updatedAt))
}

// UpdateQualification guarda el resultado de un modelo de scoring. Un prospecto en
// "new" pasa a "qualified"; cualquier otra etapa del pipeline se conserva.
func (r *PgProspectRepository) UpdateQualification(ctx context.Context, u domain.QualificationUpdate) (domain.Prospect, error) {
	data, err := json.Marshal(u.QualificationData)
	if err != nil {
		return domain.Prospect{}, fmt.Errorf("marshal qualification data: %w", err)
	}
	query := `
		UPDATE prospects SET
			lead_score = $3,
			scoring_model = $4,
			qualification_data = $5,
			pain_points = $6,
			goals = $7,
			summary = $8,
			next_action = $9,
			qualified_at = $10,
			updated_at = $10,
			status = CASE WHEN status = 'new' THEN 'qualified' ELSE status END
		WHERE owner_id = $1 AND id = $2
		RETURNING ` + prospectColumns
	return scanProspect(r.pool.QueryRow(ctx, query,
		u.OwnerID,
		u.ProspectID,
		u.LeadScore,
		string(u.ScoringModel),
		data,
		painPointStrings(u.PainPoints),
		goalStrings(u.Goals),
		u.Summary,
		string(u.NextAction),
		u.QualifiedAt,
	))
}

func scanProspect(row pgx.Row) (domain.Prospect, error) {
	var (
		p            domain.Prospect
		status       string
		metrics      []byte
		scoringModel string
		qualData     []byte
		pains        []string
		goals        []string
		nextAction   string
	)
	err := row.Scan(
		&p.ID,
		&p.OwnerID,
		&p.InstagramHandle,
		&p.FullName,
		&status,
		&metrics,
		&p.LeadScore,
		&scoringModel,
		&qualData,
		&pains,
		&goals,
		&p.Summary,
		&nextAction,
		&p.QualifiedAt,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return domain.Prospect{}, translateError(err)
	}

	p.Status = domain.ProspectStatus(status)
	p.ScoringModel = domain.ScoringModel(scoringModel)
	p.NextAction = domain.NextAction(nextAction)
	if len(metrics) > 0 {
		if err := json.Unmarshal(metrics, &p.Metrics); err != nil {
			return domain.Prospect{}, fmt.Errorf("decode metrics: %w", err)
		}
	}
	if len(qualData) > 0 {
		var q domain.QualificationData
		if err := json.Unmarshal(qualData, &q); err != nil {
			return domain.Prospect{}, fmt.Errorf("decode qualification data: %w", err)
		}
		q = q.Normalize()
		p.QualificationData = &q
	}
	p.PainPoints = make([]domain.PainPoint, 0, len(pains))
	for _, v := range pains {
		p.PainPoints = append(p.PainPoints, domain.PainPoint(v))
	}
	p.Goals = make([]domain.Goal, 0, len(goals))
	for _, v := range goals {
		p.Goals = append(p.Goals, domain.Goal(v))
	}
	return p, nil
}

func painPointStrings(in []domain.PainPoint) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		out = append(out, string(v))
	}
	return out
}

func goalStrings(in []domain.Goal) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		out = append(out, string(v))
	}
	return out
}
