package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"chatbot-router/internal/domain"
	"chatbot-router/internal/service"
)

type stubApplicationsRepo struct {
	apps      []domain.JobApplication
	lastLimit int
}

func (s *stubApplicationsRepo) Create(_ context.Context, app domain.JobApplication) error {
	s.apps = append(s.apps, app)
	return nil
}

func (s *stubApplicationsRepo) ListRecent(_ context.Context, limit int) ([]domain.JobApplication, error) {
	s.lastLimit = limit
	return s.apps, nil
}

func newAdminRouter(t *testing.T, maxAttempts int) (*gin.Engine, *stubApplicationsRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	repo := &stubApplicationsRepo{apps: []domain.JobApplication{{ID: "a1", UserName: "Sam", JobVacancy: "Sales"}}}
	jwtSvc := service.NewJWTService("secret", time.Minute, time.Hour)
	apps := service.NewJobApplicationService(repo, nil, nil)
	adminSvc := service.NewAdminService("ops@example.com", string(hash), jwtSvc, service.NewMemoryLoginRateLimiter(time.Minute, maxAttempts), apps, nil)

	webhookH := NewWebhookHandler(zap.NewNop(), &recordingBot{}, "verify-me")
	return NewRouter(zap.NewNop(), webhookH, NewAdminHandler(zap.NewNop(), adminSvc), jwtSvc), repo
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAdmin_LoginAndListApplications(t *testing.T) {
	r, repo := newAdminRouter(t, 5)

	rec := postJSON(r, "/admin/login", `{"email":"ops@example.com","password":"s3cret"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Tokens service.TokenPair `json:"tokens"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Tokens.AccessToken == "" {
		t.Fatalf("expected access token")
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/applications?limit=5", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Tokens.AccessToken)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if repo.lastLimit != 5 {
		t.Fatalf("expected limit 5, got %d", repo.lastLimit)
	}
	if !strings.Contains(rec.Body.String(), `"a1"`) {
		t.Fatalf("expected application in body, got %s", rec.Body.String())
	}
}

func TestAdmin_ApplicationsRequireToken(t *testing.T) {
	r, _ := newAdminRouter(t, 5)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/applications", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAdmin_LoginErrors(t *testing.T) {
	r, _ := newAdminRouter(t, 2)

	if rec := postJSON(r, "/admin/login", `{"email":"bad"}`); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if rec := postJSON(r, "/admin/login", `{"email":"ops@example.com","password":"nope"}`); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	postJSON(r, "/admin/login", `{"email":"ops@example.com","password":"nope"}`)
	if rec := postJSON(r, "/admin/login", `{"email":"ops@example.com","password":"s3cret"}`); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestAdmin_RefreshAndLogout(t *testing.T) {
	r, _ := newAdminRouter(t, 5)
	rec := postJSON(r, "/admin/login", `{"email":"ops@example.com","password":"s3cret"}`)
	var resp struct {
		Tokens service.TokenPair `json:"tokens"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rec = postJSON(r, "/admin/logout", `{"refresh_token":"`+resp.Tokens.RefreshToken+`"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	rec = postJSON(r, "/admin/refresh", `{"refresh_token":"`+resp.Tokens.RefreshToken+`"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected revoked token rejected, got %d", rec.Code)
	}
}
