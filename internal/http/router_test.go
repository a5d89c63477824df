package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prospect-crm/internal/domain"
	"prospect-crm/internal/llm"
	"prospect-crm/internal/repository"
	"prospect-crm/internal/service"
)

type memoryUserRepo struct {
	byID    map[string]domain.User
	byEmail map[string]string
}

func (m *memoryUserRepo) Create(_ context.Context, u domain.User) error {
	if _, ok := m.byEmail[u.Email]; ok {
		return repository.ErrDuplicate
	}
	m.byID[u.ID] = u
	m.byEmail[u.Email] = u.ID
	return nil
}

func (m *memoryUserRepo) GetByID(_ context.Context, id string) (domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memoryUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	id, ok := m.byEmail[email]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return m.GetByID(ctx, id)
}

type memoryProspectRepo struct {
	items map[string]domain.Prospect
}

func (m *memoryProspectRepo) Create(_ context.Context, p domain.Prospect) error {
	m.items[p.ID] = p
	return nil
}

func (m *memoryProspectRepo) GetByID(_ context.Context, ownerID, id string) (domain.Prospect, error) {
	p, ok := m.items[id]
	if !ok || p.OwnerID != ownerID {
		return domain.Prospect{}, repository.ErrNotFound
	}
	return p, nil
}

func (m *memoryProspectRepo) List(_ context.Context, ownerID string, _ domain.ProspectFilter) ([]domain.Prospect, error) {
	out := []domain.Prospect{}
	for _, p := range m.items {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memoryProspectRepo) UpdateStatus(ctx context.Context, ownerID, id string, status domain.ProspectStatus, at time.Time) (domain.Prospect, error) {
	p, err := m.GetByID(ctx, ownerID, id)
	if err != nil {
		return p, err
	}
	p.Status, p.UpdatedAt = status, at
	m.items[id] = p
	return p, nil
}

func (m *memoryProspectRepo) UpdateMetrics(ctx context.Context, ownerID, id string, metrics domain.ProfileMetrics, at time.Time) (domain.Prospect, error) {
	p, err := m.GetByID(ctx, ownerID, id)
	if err != nil {
		return p, err
	}
	p.Metrics, p.UpdatedAt = metrics, at
	m.items[id] = p
	return p, nil
}

func (m *memoryProspectRepo) UpdateQualification(ctx context.Context, u domain.QualificationUpdate) (domain.Prospect, error) {
	p, err := m.GetByID(ctx, u.OwnerID, u.ProspectID)
	if err != nil {
		return p, err
	}
	score, data, at := u.LeadScore, u.QualificationData, u.QualifiedAt
	p.LeadScore, p.QualificationData, p.QualifiedAt = &score, &data, &at
	p.ScoringModel, p.PainPoints, p.Goals = u.ScoringModel, u.PainPoints, u.Goals
	p.Summary, p.NextAction = u.Summary, u.NextAction
	if p.Status == domain.ProspectStatusNew {
		p.Status = domain.ProspectStatusQualified
	}
	m.items[p.ID] = p
	return p, nil
}

type testAPI struct {
	router *gin.Engine
	llm    *llm.MockClient
	token  string
}

const validLLMResponse = `{"qualificationData": {"isBusiness": "yes", "hasInconsistentGrid": "yes", "hasLowEngagement": "yes",
	"hasNoClearCTA": "yes", "valueProposition": "leads", "profitabilityPotential": "high",
	"contentPillarClarity": "unclear", "salesFunnelStrength": "weak"},
	"leadScore": 95, "painPoints": ["Inconsistent grid"], "goals": [], "summary": "Great fit."}`

func newTestAPI(t *testing.T, limiter service.GenerationLimiter) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	mock := &llm.MockClient{Response: validLLMResponse}
	users := &memoryUserRepo{byID: map[string]domain.User{}, byEmail: map[string]string{}}
	prospects := &memoryProspectRepo{items: map[string]domain.Prospect{}}

	jwtSvc := service.NewJWTService("secret", 15*time.Minute, time.Hour)
	userSvc := service.NewUserService(logger, users)
	evaluator := service.NewQualificationService(service.NewLLMQualifier(mock, logger), limiter, time.Second, logger)
	prospectSvc := service.NewProspectService(prospects, evaluator, logger)

	router := NewRouter(logger, []string{"https://crm.example.com"}, jwtSvc,
		NewAuthHandler(logger, userSvc, jwtSvc),
		NewProspectHandler(logger, prospectSvc),
		NewScoringHandler(logger, evaluator),
	)
	api := &testAPI{router: router, llm: mock}

	rec := api.do(t, http.MethodPost, "/auth/register", map[string]string{
		"email":    "setter@agency.io",
		"password": "long-enough",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Tokens service.TokenPair `json:"tokens"`
	}
	decode(t, rec, &resp)
	api.token = resp.Tokens.AccessToken
	return api
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
}

func (a *testAPI) createProspect(t *testing.T) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/prospects", map[string]any{
		"instagram_handle": "@Coach.Ana",
		"metrics":          map[string]any{"followerCount": 15000},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create prospect: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Prospect domain.Prospect `json:"prospect"`
	}
	decode(t, rec, &resp)
	return resp.Prospect.ID
}

func TestRouter_QualifyFlow(t *testing.T) {
	api := newTestAPI(t, nil)
	id := api.createProspect(t)

	rec := api.do(t, http.MethodPost, "/prospects/"+id+"/qualify", map[string]string{
		"profitability": "high-ticket coaching",
		"visuals":       "messy",
		"strategy":      "leads",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Prospect   domain.Prospect    `json:"prospect"`
		Evaluation service.Evaluation `json:"evaluation"`
	}
	decode(t, rec, &resp)
	if resp.Evaluation.LeadScore != 95 || resp.Prospect.Status != domain.ProspectStatusQualified {
		t.Fatalf("unexpected qualify response: %+v", resp)
	}

	rec = api.do(t, http.MethodGet, "/prospects/"+id, nil)
	var got struct {
		Tier string `json:"tier"`
	}
	decode(t, rec, &got)
	if got.Tier != "hot" {
		t.Fatalf("expected hot tier, got %q", got.Tier)
	}

	rec = api.do(t, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected metrics 200, got %d", rec.Code)
	}
	for _, name := range []string{"prospect_evaluations_total", "prospect_lead_score"} {
		if !strings.Contains(rec.Body.String(), name) {
			t.Fatalf("expected %s in metrics output", name)
		}
	}
}

func TestRouter_QualifyValidationErrorSkipsGenerator(t *testing.T) {
	api := newTestAPI(t, nil)
	id := api.createProspect(t)

	rec := api.do(t, http.MethodPost, "/prospects/"+id+"/qualify", map[string]string{
		"profitability": "",
		"visuals":       "messy",
		"strategy":      "leads",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	decode(t, rec, &resp)
	if resp["field"] != "profitability" {
		t.Fatalf("expected profitability field, got %v", resp)
	}
	if api.llm.Calls != 0 {
		t.Fatalf("expected no generation call, got %d", api.llm.Calls)
	}
}

func TestRouter_QualifyGenerationFailureIs502(t *testing.T) {
	api := newTestAPI(t, nil)
	id := api.createProspect(t)
	api.llm.Response = `{"leadScore": 40}`

	rec := api.do(t, http.MethodPost, "/prospects/"+id+"/qualify", map[string]string{
		"profitability": "x", "visuals": "y", "strategy": "z",
	})
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestRouter_QualifyRateLimited(t *testing.T) {
	api := newTestAPI(t, service.NewMemoryGenerationLimiter(time.Hour, 1))
	id := api.createProspect(t)
	body := map[string]string{"profitability": "x", "visuals": "y", "strategy": "z"}

	if rec := api.do(t, http.MethodPost, "/prospects/"+id+"/qualify", body); rec.Code != http.StatusOK {
		t.Fatalf("expected first qualify 200, got %d", rec.Code)
	}
	if rec := api.do(t, http.MethodPost, "/prospects/"+id+"/qualify", body); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestRouter_UnknownProspectIs404(t *testing.T) {
	api := newTestAPI(t, nil)
	rec := api.do(t, http.MethodGet, "/prospects/does-not-exist", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_MalformedProspectIDIs404(t *testing.T) {
	api := newTestAPI(t, nil)
	assessment := map[string]string{"profitability": "coaching", "visuals": "messy", "strategy": "leads"}
	tests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/prospects/abc", nil},
		{http.MethodPatch, "/prospects/abc/status", map[string]string{"status": "contacted"}},
		{http.MethodPut, "/prospects/abc/metrics", map[string]any{"followerCount": 10}},
		{http.MethodPost, "/prospects/abc/qualify", assessment},
		{http.MethodPost, "/prospects/abc/rapid", map[string]any{"isBusiness": true}},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := api.do(t, tt.method, tt.path, tt.body)
			if rec.Code != http.StatusNotFound {
				t.Fatalf("expected 404, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
	if api.llm.Calls != 0 {
		t.Fatalf("malformed id must not reach the generator")
	}
}

func TestRouter_ListProspectsFilters(t *testing.T) {
	api := newTestAPI(t, nil)
	api.createProspect(t)

	if rec := api.do(t, http.MethodGet, "/prospects?scoring_model=rapid&min_score=30", nil); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	rec := api.do(t, http.MethodGet, "/prospects?scoring_model=vibes", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scoring model, got %d", rec.Code)
	}
	var resp struct {
		Field string `json:"field"`
	}
	decode(t, rec, &resp)
	if resp.Field != "scoring_model" {
		t.Fatalf("expected scoring_model field, got %q", resp.Field)
	}
	if rec := api.do(t, http.MethodGet, "/prospects?min_score=-1", nil); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for negative min_score, got %d", rec.Code)
	}
}

func TestRouter_RapidPreview(t *testing.T) {
	api := newTestAPI(t, nil)
	rec := api.do(t, http.MethodPost, "/scoring/rapid", map[string]any{
		"isBusiness":          true,
		"hasInconsistentGrid": true,
		"hasNoClearCTA":       true,
		"valueProposition":    "leads",
		"followerCount":       1200,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Evaluation service.RapidEvaluation `json:"evaluation"`
	}
	decode(t, rec, &resp)
	if resp.Evaluation.LeadScore != 60 {
		t.Fatalf("expected 60, got %d", resp.Evaluation.LeadScore)
	}
	if api.llm.Calls != 0 {
		t.Fatalf("rapid preview must not call the generator")
	}

	rec = api.do(t, http.MethodPost, "/scoring/rapid", map[string]any{"valueProposition": "memes"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown value proposition, got %d", rec.Code)
	}
}

func TestRouter_RequiresAuth(t *testing.T) {
	api := newTestAPI(t, nil)
	api.token = ""
	if rec := api.do(t, http.MethodGet, "/prospects", nil); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRouter_LoginAndRefresh(t *testing.T) {
	api := newTestAPI(t, nil)
	api.token = ""

	rec := api.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "setter@agency.io", "password": "wrong-pass"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodPost, "/auth/login", map[string]string{"email": "setter@agency.io", "password": "long-enough"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Tokens service.TokenPair `json:"tokens"`
	}
	decode(t, rec, &resp)

	rec = api.do(t, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": resp.Tokens.RefreshToken})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected refresh 200, got %d", rec.Code)
	}
	rec = api.do(t, http.MethodPost, "/auth/refresh", map[string]string{"refresh_token": resp.Tokens.RefreshToken})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected rotated token rejected, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodPost, "/auth/register", map[string]string{"email": "setter@agency.io", "password": "long-enough"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 on duplicate email, got %d", rec.Code)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	api := newTestAPI(t, nil)
	req := httptest.NewRequest(http.MethodOptions, "/prospects", nil)
	req.Header.Set("Origin", "https://crm.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://crm.example.com" {
		t.Fatalf("unexpected allow origin %q", got)
	}
}
