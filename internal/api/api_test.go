package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/set-night/greenqash/internal/auth"
	"github.com/set-night/greenqash/internal/domain"
	"github.com/set-night/greenqash/internal/repository/memory"
	"github.com/set-night/greenqash/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

var testRetry = service.RetryPolicy{Initial: time.Millisecond, Max: 2 * time.Millisecond, Attempts: 2}

type catalogDownStore struct {
	*memory.Store
	down bool
}

func (s *catalogDownStore) ListActiveTasks(ctx context.Context, platform *domain.Platform) ([]domain.Task, error) {
	if s.down {
		return nil, domain.ErrStoreUnavailable
	}
	return s.Store.ListActiveTasks(ctx, platform)
}

type denyAfter struct {
	allowed int
	calls   int
}

func (l *denyAfter) Allow(context.Context, string) (bool, error) {
	l.calls++
	return l.calls <= l.allowed, nil
}

type testAPI struct {
	router *gin.Engine
	store  *catalogDownStore
}

func newTestAPI(t *testing.T, limiter Limiter) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &catalogDownStore{Store: memory.New()}
	catalog := service.NewCatalogService(store, nil, testRetry)
	ledger := service.NewLedgerService(store, testRetry)
	earnings := service.NewEarningsService(store, testRetry)
	credits := service.NewCreditService(store, earnings)
	referrals := service.NewReferralService(store, credits, 100)

	deps := Deps{
		Users:     service.NewUserService(store, referrals, credits, 0),
		Catalog:   catalog,
		Ledger:    ledger,
		Earnings:  earnings,
		Claims:    service.NewClaimService(catalog, ledger, earnings, time.Second),
		Referrals: referrals,
		Verifier:  auth.NewVerifier(testSecret),
	}
	if limiter != nil {
		deps.Limiter = limiter
	}
	return &testAPI{router: NewRouter(deps), store: store}
}

func (a *testAPI) addTask(platform domain.Platform, reward int64, active bool) domain.Task {
	task := domain.Task{
		ID:           uuid.New(),
		Title:        string(platform) + " task",
		URL:          "https://example.com/" + string(platform),
		Platform:     platform,
		RewardAmount: reward,
		IsActive:     active,
	}
	a.store.PutTask(task)
	return task
}

func tokenFor(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func (a *testAPI) do(t *testing.T, method, path string, userID uuid.UUID, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, userID))
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &out)
	}
	return w, out
}

func TestHealthz(t *testing.T) {
	a := newTestAPI(t, nil)
	w, body := a.do(t, http.MethodGet, "/healthz", uuid.Nil, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["status"])
}

func TestAuthRequired(t *testing.T) {
	a := newTestAPI(t, nil)

	w, _ := a.do(t, http.MethodGet, "/api/tasks", uuid.Nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestClaimFlow(t *testing.T) {
	a := newTestAPI(t, nil)
	user := uuid.New()
	task := a.addTask(domain.PlatformYouTube, 250, true)

	w, body := a.do(t, http.MethodPost, "/api/tasks/"+task.ID.String()+"/claim", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 250, body["reward_amount"])
	assert.EqualValues(t, 250, body["new_category_total"])
	assert.EqualValues(t, 250, body["new_all_time_total"])
	assert.Equal(t, "2.50", body["reward"])

	w, _ = a.do(t, http.MethodPost, "/api/tasks/"+task.ID.String()+"/claim", user, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, body = a.do(t, http.MethodGet, "/api/tasks/"+task.ID.String()+"/claimed", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["claimed"])

	w, body = a.do(t, http.MethodGet, "/api/tasks/"+task.ID.String()+"/claimed", uuid.New(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["claimed"])

	w, body = a.do(t, http.MethodGet, "/api/earnings", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 250, body["all_time_total"])
	assert.Equal(t, "2.50", body["total"])

	w, body = a.do(t, http.MethodGet, "/api/completions", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	completions := body["completions"].([]any)
	require.Len(t, completions, 1)
	assert.Equal(t, "claimed", completions[0].(map[string]any)["status"])
}

func TestClaimErrors(t *testing.T) {
	a := newTestAPI(t, nil)
	user := uuid.New()
	inactive := a.addTask(domain.PlatformTikTok, 100, false)

	tests := []struct {
		name     string
		path     string
		expected int
	}{
		{name: "invalid id", path: "/api/tasks/not-a-uuid/claim", expected: http.StatusBadRequest},
		{name: "unknown task", path: "/api/tasks/" + uuid.NewString() + "/claim", expected: http.StatusNotFound},
		{name: "inactive task", path: "/api/tasks/" + inactive.ID.String() + "/claim", expected: http.StatusGone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := a.do(t, http.MethodPost, tt.path, user, nil)
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestClaimRateLimited(t *testing.T) {
	a := newTestAPI(t, &denyAfter{allowed: 1})
	user := uuid.New()
	task := a.addTask(domain.PlatformTrivia, 10, true)

	w, _ := a.do(t, http.MethodPost, "/api/tasks/"+task.ID.String()+"/claim", user, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(t, http.MethodPost, "/api/tasks/"+task.ID.String()+"/claim", user, nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestListTasks(t *testing.T) {
	a := newTestAPI(t, nil)
	user := uuid.New()
	yt := a.addTask(domain.PlatformYouTube, 250, true)
	a.addTask(domain.PlatformTikTok, 100, true)
	a.addTask(domain.PlatformTrivia, 50, false)

	w, _ := a.do(t, http.MethodPost, "/api/tasks/"+yt.ID.String()+"/claim", user, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w, body := a.do(t, http.MethodGet, "/api/tasks", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["available"])
	assert.Len(t, body["tasks"], 2)

	w, body = a.do(t, http.MethodGet, "/api/tasks?platform=video-youtube", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tasks := body["tasks"].([]any)
	require.Len(t, tasks, 1)
	assert.Equal(t, true, tasks[0].(map[string]any)["claimed"])

	w, _ = a.do(t, http.MethodGet, "/api/tasks?platform=myspace", user, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListTasksOutage(t *testing.T) {
	a := newTestAPI(t, nil)
	a.addTask(domain.PlatformYouTube, 250, true)
	a.store.down = true

	w, body := a.do(t, http.MethodGet, "/api/tasks", uuid.New(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, body["available"])
	assert.Empty(t, body["tasks"])
}

func TestReferral(t *testing.T) {
	a := newTestAPI(t, nil)
	referrer := uuid.New()
	referee := uuid.New()

	w, me := a.do(t, http.MethodGet, "/api/me", referrer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	code := me["referral_code"].(string)
	require.NotEmpty(t, code)

	w, _ = a.do(t, http.MethodPost, "/api/me/referral", referee, gin.H{"code": code})
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = a.do(t, http.MethodPost, "/api/me/referral", referee, gin.H{"code": code})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = a.do(t, http.MethodPost, "/api/me/referral", referrer, gin.H{"code": code})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = a.do(t, http.MethodPost, "/api/me/referral", referee, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, body := a.do(t, http.MethodGet, "/api/earnings", referrer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	byCategory := body["by_category"].(map[string]any)
	assert.EqualValues(t, 100, byCategory["referral"])
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err      error
		expected int
	}{
		{domain.ErrAlreadyClaimed, http.StatusConflict},
		{domain.ErrTaskNotFound, http.StatusNotFound},
		{domain.ErrTaskInactive, http.StatusGone},
		{domain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{errors.Join(domain.ErrCreditPending, domain.ErrStoreUnavailable), http.StatusAccepted},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, statusFor(tt.err), tt.err.Error())
	}
}
