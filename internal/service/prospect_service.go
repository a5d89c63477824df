package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"prospect-crm/internal/domain"
	"prospect-crm/internal/metrics"
	"prospect-crm/internal/repository"
	"prospect-crm/internal/scoring"
)

// RapidEvaluation es el resultado del scorer rapido. Su score vive en la escala 0-75.
type RapidEvaluation struct {
	QualificationData domain.QualificationData `json:"qualificationData"`
	LeadScore         int                      `json:"leadScore"`
	PainPoints        []domain.PainPoint       `json:"painPoints"`
	Goals             []domain.Goal            `json:"goals"`
	NextAction        domain.NextAction        `json:"nextAction"`
	Breakdown         []scoring.Factor         `json:"breakdown"`
}

// RapidEvaluate es puro: mismo checklist y seguidores, mismo resultado.
func RapidEvaluate(flags scoring.RapidFlags, followerCount *int) RapidEvaluation {
	result := scoring.RapidBreakdown(flags, followerCount)
	data := flags.QualificationData()
	pains, goals := scoring.DeriveTags(data)
	return RapidEvaluation{
		QualificationData: data,
		LeadScore:         result.Score,
		PainPoints:        pains,
		Goals:             goals,
		NextAction:        scoring.RecommendNextAction(result.Score),
		Breakdown:         result.Breakdown,
	}
}

// ProspectService maneja el ciclo de vida de los prospectos de un usuario.
type ProspectService struct {
	prospects repository.ProspectRepository
	evaluator *QualificationService
	logger    *zap.Logger
	now       func() time.Time
}

func NewProspectService(prospects repository.ProspectRepository, evaluator *QualificationService, logger *zap.Logger) *ProspectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProspectService{
		prospects: prospects,
		evaluator: evaluator,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type CreateProspectInput struct {
	InstagramHandle string
	FullName        string
	Metrics         domain.ProfileMetrics
}

func (s *ProspectService) Create(ctx context.Context, ownerID string, input CreateProspectInput) (domain.Prospect, error) {
	handle := normalizeHandle(input.InstagramHandle)
	if handle == "" {
		return domain.Prospect{}, &ValidationError{Field: "instagram_handle", Reason: "is required"}
	}

	now := s.now()
	metrics := input.Metrics
	metrics.InstagramHandle = handle
	p := domain.Prospect{
		ID:              uuid.NewString(),
		OwnerID:         ownerID,
		InstagramHandle: handle,
		FullName:        strings.TrimSpace(input.FullName),
		Status:          domain.ProspectStatusNew,
		Metrics:         metrics,
		PainPoints:      []domain.PainPoint{},
		Goals:           []domain.Goal{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.prospects.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.Prospect{}, ErrProspectExists
		}
		return domain.Prospect{}, fmt.Errorf("create prospect: %w", err)
	}
	return p, nil
}

func (s *ProspectService) Get(ctx context.Context, ownerID, id string) (domain.Prospect, error) {
	if !validProspectID(id) {
		return domain.Prospect{}, ErrProspectNotFound
	}
	p, err := s.prospects.GetByID(ctx, ownerID, id)
	return p, mapRepoError(err)
}

func (s *ProspectService) List(ctx context.Context, ownerID string, filter domain.ProspectFilter) ([]domain.Prospect, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, &ValidationError{Field: "status", Reason: "is not a pipeline status"}
	}
	if filter.ScoringModel != "" && !filter.ScoringModel.Valid() {
		return nil, &ValidationError{Field: "scoring_model", Reason: "must be evaluator or rapid"}
	}
	// Un umbral sin modelo se lee en la escala del evaluador (0-100).
	if filter.MinScore != nil && filter.ScoringModel == "" {
		filter.ScoringModel = domain.ScoringModelEvaluator
	}
	return s.prospects.List(ctx, ownerID, filter)
}

func (s *ProspectService) UpdateStatus(ctx context.Context, ownerID, id string, status domain.ProspectStatus) (domain.Prospect, error) {
	if !status.Valid() {
		return domain.Prospect{}, &ValidationError{Field: "status", Reason: "is not a pipeline status"}
	}
	if !validProspectID(id) {
		return domain.Prospect{}, ErrProspectNotFound
	}
	p, err := s.prospects.UpdateStatus(ctx, ownerID, id, status, s.now())
	return p, mapRepoError(err)
}

// UpdateMetrics reemplaza las metricas. El score guardado no se recalcula hasta la
// proxima calificacion.
func (s *ProspectService) UpdateMetrics(ctx context.Context, ownerID, id string, metrics domain.ProfileMetrics) (domain.Prospect, error) {
	if !validProspectID(id) {
		return domain.Prospect{}, ErrProspectNotFound
	}
	current, err := s.prospects.GetByID(ctx, ownerID, id)
	if err != nil {
		return domain.Prospect{}, mapRepoError(err)
	}
	metrics.InstagramHandle = current.InstagramHandle
	p, err := s.prospects.UpdateMetrics(ctx, ownerID, id, metrics, s.now())
	return p, mapRepoError(err)
}

// Qualify corre el evaluador sobre las metricas guardadas y persiste el resultado.
func (s *ProspectService) Qualify(ctx context.Context, ownerID, id string, assessment HumanAssessment) (domain.Prospect, Evaluation, error) {
	if s.evaluator == nil {
		return domain.Prospect{}, Evaluation{}, errors.New("evaluator not configured")
	}
	if !validProspectID(id) {
		return domain.Prospect{}, Evaluation{}, ErrProspectNotFound
	}
	current, err := s.prospects.GetByID(ctx, ownerID, id)
	if err != nil {
		return domain.Prospect{}, Evaluation{}, mapRepoError(err)
	}

	eval, err := s.evaluator.EvaluateAs(ctx, ownerID, EvaluationRequest{
		Metrics:    current.Metrics,
		Assessment: assessment,
	})
	if err != nil {
		return domain.Prospect{}, Evaluation{}, err
	}

	updated, err := s.prospects.UpdateQualification(ctx, domain.QualificationUpdate{
		ProspectID:        id,
		OwnerID:           ownerID,
		LeadScore:         eval.LeadScore,
		ScoringModel:      domain.ScoringModelEvaluator,
		QualificationData: eval.QualificationData,
		PainPoints:        eval.PainPoints,
		Goals:             eval.Goals,
		Summary:           eval.Summary,
		NextAction:        eval.NextAction,
		QualifiedAt:       s.now(),
	})
	if err != nil {
		return domain.Prospect{}, Evaluation{}, mapRepoError(err)
	}

	s.logger.Info("prospect qualified",
		zap.String("prospect_id", id),
		zap.String("backend", eval.Backend),
		zap.Int("lead_score", eval.LeadScore),
	)
	return updated, eval, nil
}

// RapidQualify aplica el checklist manual y persiste el score en la escala rapida.
func (s *ProspectService) RapidQualify(ctx context.Context, ownerID, id string, flags scoring.RapidFlags) (domain.Prospect, RapidEvaluation, error) {
	if flags.ValueProposition != "" && !flags.ValueProposition.Valid() {
		return domain.Prospect{}, RapidEvaluation{}, &ValidationError{Field: "valueProposition", Reason: "is not a known value proposition"}
	}
	if !validProspectID(id) {
		return domain.Prospect{}, RapidEvaluation{}, ErrProspectNotFound
	}
	current, err := s.prospects.GetByID(ctx, ownerID, id)
	if err != nil {
		return domain.Prospect{}, RapidEvaluation{}, mapRepoError(err)
	}

	eval := RapidEvaluate(flags, current.Metrics.FollowerCount)
	updated, err := s.prospects.UpdateQualification(ctx, domain.QualificationUpdate{
		ProspectID:        id,
		OwnerID:           ownerID,
		LeadScore:         eval.LeadScore,
		ScoringModel:      domain.ScoringModelRapid,
		QualificationData: eval.QualificationData,
		PainPoints:        eval.PainPoints,
		Goals:             eval.Goals,
		Summary:           scoring.RuleSummary(current.InstagramHandle, eval.QualificationData, eval.LeadScore),
		NextAction:        eval.NextAction,
		QualifiedAt:       s.now(),
	})
	if err != nil {
		return domain.Prospect{}, RapidEvaluation{}, mapRepoError(err)
	}
	metrics.LeadScores.WithLabelValues(string(domain.ScoringModelRapid)).Observe(float64(eval.LeadScore))
	return updated, eval, nil
}

// validProspectID: los ids son UUID; cualquier otra cosa no puede existir.
func validProspectID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func mapRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return ErrProspectNotFound
	}
	return err
}
