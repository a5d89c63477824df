package service

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"prospect-crm/internal/domain"
	"prospect-crm/internal/metrics"
	"prospect-crm/internal/scoring"
)

const defaultGenerationTimeout = 30 * time.Second

// Evaluation es el resultado completo del evaluador.
type Evaluation struct {
	QualificationData domain.QualificationData `json:"qualificationData"`
	LeadScore         int                      `json:"leadScore"`
	PainPoints        []domain.PainPoint       `json:"painPoints"`
	Goals             []domain.Goal            `json:"goals"`
	Summary           string                   `json:"summary"`
	NextAction        domain.NextAction        `json:"nextAction"`
	Tier              scoring.Tier             `json:"tier"`
	Breakdown         []scoring.Factor         `json:"breakdown"`
	Backend           string                   `json:"backend"`
}

// QualificationService es el evaluador: valida la entrada, delega el juicio al Qualifier
// configurado y recalcula localmente el score y las etiquetas.
type QualificationService struct {
	qualifier Qualifier
	backend   string
	limiter   GenerationLimiter
	validate  *validator.Validate
	timeout   time.Duration
	logger    *zap.Logger
}

func NewQualificationService(qualifier Qualifier, limiter GenerationLimiter, timeout time.Duration, logger *zap.Logger) *QualificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limiter == nil {
		limiter = noopGenerationLimiter{}
	}
	if timeout <= 0 {
		timeout = defaultGenerationTimeout
	}
	return &QualificationService{
		qualifier: qualifier,
		backend:   backendName(qualifier),
		limiter:   limiter,
		validate:  newRequestValidator(),
		timeout:   timeout,
		logger:    logger,
	}
}

func backendName(q Qualifier) string {
	switch q.(type) {
	case *LLMQualifier:
		return "llm"
	case *RuleQualifier:
		return "rules"
	case nil:
		return "none"
	default:
		return "custom"
	}
}

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// EvaluateAs aplica el limite de generaciones del usuario antes de evaluar.
func (s *QualificationService) EvaluateAs(ctx context.Context, userID string, req EvaluationRequest) (Evaluation, error) {
	req = trimRequest(req)
	if err := s.validateRequest(req); err != nil {
		s.countOutcome(err)
		return Evaluation{}, err
	}
	if !s.limiter.Allow(ctx, userID) {
		s.countOutcome(ErrRateLimited)
		return Evaluation{}, ErrRateLimited
	}
	return s.evaluate(ctx, req)
}

// Evaluate no conoce al usuario: solo depende de las metricas y del juicio humano.
func (s *QualificationService) Evaluate(ctx context.Context, req EvaluationRequest) (Evaluation, error) {
	req = trimRequest(req)
	if err := s.validateRequest(req); err != nil {
		s.countOutcome(err)
		return Evaluation{}, err
	}
	return s.evaluate(ctx, req)
}

func (s *QualificationService) evaluate(ctx context.Context, req EvaluationRequest) (_ Evaluation, err error) {
	defer func() { s.countOutcome(err) }()

	if s.qualifier == nil {
		return Evaluation{}, errors.New("qualification service not configured")
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	draft, err := s.qualifier.Qualify(genCtx, req)
	metrics.GenerationDuration.WithLabelValues(s.backend).Observe(time.Since(start).Seconds())
	if err != nil {
		return Evaluation{}, err
	}

	data := draft.Data.Normalize()
	result := scoring.EvaluatorScore(data, req.Metrics.FollowerCount)
	if draft.ReportedScore != nil && *draft.ReportedScore != result.Score {
		s.logger.Warn("reported lead score differs from local model",
			zap.String("handle", req.Metrics.InstagramHandle),
			zap.String("backend", draft.BackendName),
			zap.Int("reported", *draft.ReportedScore),
			zap.Int("computed", result.Score),
		)
		metrics.ScoreMismatches.WithLabelValues(s.backend).Inc()
	}
	metrics.LeadScores.WithLabelValues(string(domain.ScoringModelEvaluator)).Observe(float64(result.Score))

	derivedPains, derivedGoals := scoring.DeriveTags(data)
	pains, goals := scoring.MergeTags(derivedPains, derivedGoals, draft.PainPoints, draft.Goals)

	summary := strings.TrimSpace(draft.Summary)
	if summary == "" {
		summary = scoring.RuleSummary(req.Metrics.InstagramHandle, data, result.Score)
	}

	return Evaluation{
		QualificationData: data,
		LeadScore:         result.Score,
		PainPoints:        pains,
		Goals:             goals,
		Summary:           summary,
		NextAction:        scoring.RecommendNextAction(result.Score),
		Tier:              scoring.TierFromScore(result.Score),
		Breakdown:         result.Breakdown,
		Backend:           draft.BackendName,
	}, nil
}

func (s *QualificationService) countOutcome(err error) {
	metrics.EvaluationsTotal.WithLabelValues(s.backend, outcomeOf(err)).Inc()
}

func outcomeOf(err error) string {
	var (
		validationErr *ValidationError
		generationErr *GenerationFailure
	)
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case errors.As(err, &validationErr):
		return metrics.OutcomeInvalid
	case errors.As(err, &generationErr):
		return metrics.OutcomeGenerationFailed
	case errors.Is(err, ErrRateLimited):
		return metrics.OutcomeRateLimited
	default:
		return metrics.OutcomeError
	}
}

func trimRequest(req EvaluationRequest) EvaluationRequest {
	req.Assessment.Profitability = strings.TrimSpace(req.Assessment.Profitability)
	req.Assessment.Visuals = strings.TrimSpace(req.Assessment.Visuals)
	req.Assessment.Strategy = strings.TrimSpace(req.Assessment.Strategy)
	req.Metrics.InstagramHandle = normalizeHandle(req.Metrics.InstagramHandle)
	return req
}

func (s *QualificationService) validateRequest(req EvaluationRequest) error {
	err := s.validate.Struct(req.Assessment)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return &ValidationError{Field: fe.Field(), Reason: "is required"}
	}
	return &ValidationError{Reason: err.Error()}
}

// normalizeHandle deja el handle en minusculas y sin "@".
func normalizeHandle(handle string) string {
	handle = strings.TrimSpace(handle)
	handle = strings.TrimPrefix(handle, "@")
	return strings.ToLower(handle)
}
