package api_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/school-newsroom-api/internal/api"
	"github.com/school-newsroom-api/internal/config"
	"github.com/school-newsroom-api/internal/events"
	"github.com/school-newsroom-api/internal/identity"
	"github.com/school-newsroom-api/internal/mocks"
	"github.com/school-newsroom-api/internal/models"
	"github.com/school-newsroom-api/internal/ratelimit"
	"github.com/school-newsroom-api/internal/service"
	"golang.org/x/crypto/bcrypt"
)

const cookieName = "newsroom_session"

type testEnv struct {
	router   *gin.Engine
	store    *mocks.Store
	provider identity.Provider
	db       *stubDB
}

type stubDB struct {
	err error
}

func (s *stubDB) HealthCheck(ctx context.Context) error { return s.err }
func (s *stubDB) Stats() sql.DBStats                    { return sql.DBStats{OpenConnections: 3} }

func setupTestRouter(t *testing.T, limiter ratelimit.Limiter) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repos, store := mocks.NewRepositories()
	log := zerolog.Nop()
	publisher := events.NewNopPublisher(log)
	provider := identity.NewLocalProvider(store.Identities, publisher, identity.Options{
		Secret:     "test-secret-test-secret-test-secret",
		SessionTTL: time.Hour,
		InviteTTL:  time.Hour,
		SiteURL:    "http://localhost:3000",
		BcryptCost: bcrypt.MinCost,
	}, log)
	services := service.NewServices(repos, provider, publisher, log)
	t.Cleanup(services.Views.Stop)

	cfg := &config.Config{
		Server: config.ServerConfig{Port: "8080", AllowedOrigin: "*"},
		Auth:   config.AuthConfig{CookieName: cookieName},
	}
	if limiter == nil {
		limiter = ratelimit.Noop{}
	}
	db := &stubDB{}
	return &testEnv{
		router:   api.NewRouter(services, db, limiter, cfg, log),
		store:    store,
		provider: provider,
		db:       db,
	}
}

// sessionFor creates an account with a profile and returns a session token for it
func (e *testEnv) sessionFor(t *testing.T, email string, role models.Role, status models.UserStatus) string {
	t.Helper()
	ctx := context.Background()
	account, err := e.provider.CreateAccount(ctx, email, "geheim123")
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	now := time.Now()
	err = e.store.Users.Create(ctx, &models.User{
		ID:        account.ID,
		Name:      strings.Split(email, "@")[0],
		Email:     email,
		Role:      role,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	token, _, err := e.provider.IssueSession(account)
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	return token
}

func (e *testEnv) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON response %q: %v", w.Body.String(), err)
	}
	return body
}

type denyLimiter struct{}

func (denyLimiter) Allow(ctx context.Context, key string) (bool, error) { return false, nil }
func (denyLimiter) Close() error                                        { return nil }

func TestHealthEndpoint(t *testing.T) {
	env := setupTestRouter(t, nil)

	w := env.do("GET", "/health", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	response := decode(t, w)
	if response["status"] != "healthy" {
		t.Errorf("Expected status 'healthy', got %v", response["status"])
	}
	if response["service"] != "school-newsroom-api" {
		t.Errorf("Expected service name, got %v", response["service"])
	}
}

func TestHealthEndpoint_DatabaseDown(t *testing.T) {
	env := setupTestRouter(t, nil)
	env.db.err = errors.New("connection refused")

	w := env.do("GET", "/health", "", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("Expected status 503, got %d", w.Code)
	}
	response := decode(t, w)
	if response["status"] != "unhealthy" || response["database"] != "unreachable" {
		t.Errorf("Expected unhealthy database, got %v", response)
	}
	if response["open_connections"] != float64(3) {
		t.Errorf("Expected pool stats, got %v", response["open_connections"])
	}
}

func TestMetricsEndpoint(t *testing.T) {
	env := setupTestRouter(t, nil)
	env.do("GET", "/health", "", "")
	env.do("POST", "/api/newsletter", `{"email":"leser@example.com"}`, "")

	w := env.do("GET", "/metrics", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`newsroom_http_requests_total{method="GET",route="/health",status="200"} 1`,
		`newsroom_newsletter_signups_total 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}

func TestNewsletter_Contract(t *testing.T) {
	env := setupTestRouter(t, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"missing body", ``, http.StatusBadRequest, ""},
		{"missing email", `{}`, http.StatusBadRequest, ""},
		{"malformed email", `{"email":"not-an-email"}`, http.StatusBadRequest, ""},
		{"fresh", `{"email":"Leser@Example.com"}`, http.StatusOK, ""},
		{"duplicate", `{"email":"leser@example.com"}`, http.StatusBadRequest, "already_subscribed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("POST", "/api/newsletter", tt.body, "")
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			body := decode(t, w)
			if tt.wantStatus == http.StatusOK {
				if body["success"] != true {
					t.Errorf("Expected success true, got %v", body)
				}
				return
			}
			if body["error"] == nil || body["error"] == "" {
				t.Errorf("Expected an error message, got %v", body)
			}
			if tt.wantCode != "" && body["code"] != tt.wantCode {
				t.Errorf("Expected code %q, got %v", tt.wantCode, body["code"])
			}
		})
	}

	subscriber, _ := env.store.Newsletter.GetByEmail(context.Background(), "leser@example.com")
	if subscriber == nil || !subscriber.Confirmed {
		t.Errorf("Expected a confirmed subscriber, got %+v", subscriber)
	}
}

func TestNewsletter_StoreFailureIs500(t *testing.T) {
	env := setupTestRouter(t, nil)
	env.store.Newsletter.InsertError = errors.New("connection reset by peer")

	w := env.do("POST", "/api/newsletter", `{"email":"leser@example.com"}`, "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("Expected status 500, got %d", w.Code)
	}
	if body := decode(t, w); strings.Contains(body["error"].(string), "connection reset") {
		t.Errorf("driver error leaked to the client: %v", body["error"])
	}
}

func TestInvite_Contract(t *testing.T) {
	env := setupTestRouter(t, nil)
	admin := env.sessionFor(t, "admin@schule.de", models.RoleAdmin, models.UserStatusApproved)
	pendingAdmin := env.sessionFor(t, "neu@schule.de", models.RoleAdmin, models.UserStatusPending)
	editor := env.sessionFor(t, "redaktion@schule.de", models.RoleEditor, models.UserStatusApproved)

	tests := []struct {
		name       string
		token      string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"no session", "", `{"email":"a@schule.de"}`, http.StatusUnauthorized, ""},
		{"invalid session", "garbage", `{"email":"a@schule.de"}`, http.StatusUnauthorized, ""},
		{"pending admin", pendingAdmin, `{"email":"a@schule.de"}`, http.StatusForbidden, ""},
		{"editor", editor, `{"email":"a@schule.de"}`, http.StatusForbidden, ""},
		{"missing email", admin, `{"role":"author"}`, http.StatusBadRequest, ""},
		{"email has profile", admin, `{"email":"Redaktion@Schule.de"}`, http.StatusBadRequest, "email_has_profile"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do("POST", "/api/admin/invite", tt.body, tt.token)
			if w.Code != tt.wantStatus {
				t.Fatalf("Expected status %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if tt.wantCode != "" {
				if body := decode(t, w); body["code"] != tt.wantCode {
					t.Errorf("Expected code %q, got %v", tt.wantCode, body["code"])
				}
			}
		})
	}

	t.Run("success", func(t *testing.T) {
		w := env.do("POST", "/api/admin/invite", `{"email":"autorin@schule.de"}`, admin)
		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
		}
		body := decode(t, w)
		if body["success"] != true {
			t.Errorf("Expected success true, got %v", body)
		}
		userID, _ := body["user_id"].(string)
		created, _ := env.store.Identities.GetByEmail(context.Background(), "autorin@schule.de")
		if created == nil || created.ID != userID {
			t.Fatalf("Expected user_id of the invited identity, got %q", userID)
		}
		if created.InvitedRole == nil || *created.InvitedRole != models.RoleAuthor {
			t.Errorf("Expected default role author, got %v", created.InvitedRole)
		}
	})

	t.Run("provider failure", func(t *testing.T) {
		env.store.Identities.InsertError = errors.New("smtp relay down")
		defer func() { env.store.Identities.InsertError = nil }()

		w := env.do("POST", "/api/admin/invite", `{"email":"fotograf@schule.de"}`, admin)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("Expected status 500, got %d: %s", w.Code, w.Body.String())
		}
	})
}

func TestSetupLoginLogout(t *testing.T) {
	env := setupTestRouter(t, nil)

	setup := `{"name":"Frau Berg","email":"berg@schule.de","password":"geheim123","password_confirm":"geheim123"}`
	w := env.do("POST", "/api/setup", setup, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do("POST", "/api/setup", setup, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected second setup to be refused with 403, got %d", w.Code)
	}
	if body := decode(t, w); body["code"] != "setup_complete" {
		t.Errorf("Expected code setup_complete, got %v", body["code"])
	}

	w = env.do("POST", "/api/admin/login", `{"email":"berg@schule.de","password":"falsch"}`, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 for a wrong password, got %d", w.Code)
	}

	w = env.do("POST", "/api/admin/login", `{"email":"berg@schule.de","password":"geheim123"}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			session = c
		}
	}
	if session == nil || session.Value == "" || !session.HttpOnly {
		t.Fatalf("Expected an HttpOnly session cookie, got %+v", session)
	}

	req := httptest.NewRequest("GET", "/api/admin/me", nil)
	req.AddCookie(session)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200 for /me with cookie, got %d", w.Code)
	}
	if me := decode(t, w); me["email"] != "berg@schule.de" || me["level"] != "admin" {
		t.Errorf("Unexpected /me response: %v", me)
	}

	w = env.do("POST", "/api/admin/logout", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", w.Code)
	}
	cleared := false
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName && c.MaxAge < 0 {
			cleared = true
		}
	}
	if !cleared {
		t.Error("Expected logout to clear the session cookie")
	}
}

func TestAdminRoutesNeedSession(t *testing.T) {
	env := setupTestRouter(t, nil)

	for _, path := range []string{"/api/admin/me", "/api/admin/stats", "/api/admin/articles", "/api/admin/newsletter/export"} {
		w := env.do("GET", path, "", "")
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, w.Code)
		}
	}
}

func TestPublicArticle_OnlyPublishedIsVisible(t *testing.T) {
	env := setupTestRouter(t, nil)
	editor := env.sessionFor(t, "redaktion@schule.de", models.RoleEditor, models.UserStatusApproved)

	w := env.do("POST", "/api/admin/articles", `{"title":"Projektwoche","content":"# Projektwoche\n\nAlle Klassen **machen mit**."}`, editor)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	created := decode(t, w)
	id := created["id"].(string)

	if w := env.do("GET", "/api/articles/projektwoche", "", ""); w.Code != http.StatusNotFound {
		t.Fatalf("Expected draft to be hidden with 404, got %d", w.Code)
	}

	w = env.do("PATCH", "/api/admin/articles/"+id+"/status", `{"status":"published"}`, editor)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do("GET", "/api/articles/projektwoche", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	detail := decode(t, w)
	if html, _ := detail["html"].(string); !strings.Contains(html, "<strong>machen mit</strong>") {
		t.Errorf("Expected rendered HTML, got %q", html)
	}
	if detail["published_at"] == nil {
		t.Error("Expected published_at to be set")
	}
}

func TestAuthorCannotPublish(t *testing.T) {
	env := setupTestRouter(t, nil)
	author := env.sessionFor(t, "autor@schule.de", models.RoleAuthor, models.UserStatusApproved)

	w := env.do("POST", "/api/admin/articles", `{"title":"Mein Text","status":"published"}`, author)
	if w.Code != http.StatusForbidden {
		t.Fatalf("Expected status 403, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do("POST", "/api/admin/articles", `{"title":"Mein Text","status":"review"}`, author)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
}

func TestCommentStatusFromClientIsIgnored(t *testing.T) {
	env := setupTestRouter(t, nil)
	editor := env.sessionFor(t, "redaktion@schule.de", models.RoleEditor, models.UserStatusApproved)

	w := env.do("POST", "/api/admin/articles", `{"title":"Theater AG","status":"published"}`, editor)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}

	w = env.do("POST", "/api/articles/theater-ag/comments", `{"name":"Lea","message":"x","status":"approved"}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	body := decode(t, w)
	if body["status"] != "pending" {
		t.Errorf("Expected pending in the response, got %v", body["status"])
	}
	stored := env.store.Submissions.Comments[body["id"].(string)]
	if stored == nil || stored.Status != models.SubmissionPending {
		t.Fatalf("Expected the stored comment to be pending, got %+v", stored)
	}

	w = env.do("GET", "/api/articles/theater-ag/comments", "", "")
	if list, _ := decode(t, w)["data"].([]interface{}); len(list) != 0 {
		t.Errorf("pending comment must not be listed, got %s", w.Body.String())
	}
}

func TestMalformedIDs(t *testing.T) {
	env := setupTestRouter(t, nil)
	admin := env.sessionFor(t, "admin@schule.de", models.RoleAdmin, models.UserStatusApproved)

	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{"GET", "/api/polls/abc", "", http.StatusNotFound},
		{"POST", "/api/polls/abc/vote", `{"option":"Ja"}`, http.StatusNotFound},
		{"PATCH", "/api/admin/users/x/status", `{"status":"approved"}`, http.StatusNotFound},
		{"GET", "/api/admin/articles/42", "", http.StatusNotFound},
		{"PATCH", "/api/admin/submissions/comments/1", `{"status":"approved"}`, http.StatusNotFound},
		{"DELETE", "/api/admin/newsletter/not-a-uuid", "", http.StatusNotFound},
		{"GET", "/api/articles?category_id=abc", "", http.StatusBadRequest},
		{"GET", "/api/admin/articles?author_id=abc", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := env.do(tt.method, tt.path, tt.body, admin)
		if w.Code != tt.want {
			t.Errorf("%s %s: expected %d, got %d: %s", tt.method, tt.path, tt.want, w.Code, w.Body.String())
		}
	}

	w := env.do("GET", "/api/polls/abc", "", "")
	if body := decode(t, w); body["error"] != "poll not found" {
		t.Errorf("Unexpected error body: %v", body)
	}
	w = env.do("GET", "/api/articles?category_id=abc", "", "")
	if body := decode(t, w); body["error"] == nil {
		t.Errorf("Expected a validation error, got %v", body)
	}
}

func TestLetterSubmission(t *testing.T) {
	env := setupTestRouter(t, nil)

	w := env.do("POST", "/api/letters", `{"name":"Mia","email":"mia@example.com","subject":"Mensa","message":"Bitte mehr vegetarische Gerichte."}`, "")
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if body := decode(t, w); body["id"] == "" || body["success"] != true {
		t.Errorf("Unexpected response: %v", body)
	}

	w = env.do("POST", "/api/letters", `{"name":"Mia"}`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for an incomplete letter, got %d", w.Code)
	}
}

func TestRateLimitedSubmission(t *testing.T) {
	env := setupTestRouter(t, denyLimiter{})

	w := env.do("POST", "/api/newsletter", `{"email":"leser@example.com"}`, "")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("Expected status 429, got %d", w.Code)
	}
	if sub, _ := env.store.Newsletter.GetByEmail(context.Background(), "leser@example.com"); sub != nil {
		t.Error("rate limited request must not reach the store")
	}

	// reads are not limited
	if w := env.do("GET", "/api/articles", "", ""); w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestCORSHeaders(t *testing.T) {
	env := setupTestRouter(t, nil)

	w := env.do("OPTIONS", "/api/newsletter", "", "")
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204 for OPTIONS, got %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Expected CORS origin '*', got %q", got)
	}
}
