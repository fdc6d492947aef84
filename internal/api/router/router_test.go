package router

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
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tenant-deployer/internal/model"
	"tenant-deployer/internal/pkg/config"
	"tenant-deployer/internal/pkg/database"
	"tenant-deployer/internal/pkg/hosting/api"
	"tenant-deployer/internal/pkg/hosting/hostingtest"
	"tenant-deployer/internal/pkg/jwt"
	"tenant-deployer/internal/pkg/lock"
	"tenant-deployer/internal/repository"
	"tenant-deployer/internal/service"
	"tenant-deployer/pkg/constants"
)

const (
	tenantID  = "1234567890abcdef"
	secret    = "test-secret"
	deployURL = "/api/v1/deployments"
)

type testServer struct {
	engine   *gin.Engine
	fake     *hostingtest.Fake
	locker   *lock.MemoryLocker
	verifier *jwt.Verifier
}

func newTestServer(t *testing.T, withHosting bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenInMemory(model.AllModels()...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	seed := []interface{}{
		&model.Organization{ID: "org-general-0001", Name: "General", Type: "general"},
		&model.Organization{ID: tenantID, Name: "Acme", Type: "tenant", CreatedByEmail: "creator@general.io"},
		&model.Organization{ID: "foreign-org-0001", Name: "Foreign", Type: "tenant", CreatedByEmail: "someone@else.io"},
		&model.Profile{ID: "creator", Email: "creator@general.io", Role: "user", IsSiteCreator: true, OrganizationID: lo.ToPtr("org-general-0001")},
		&model.Profile{ID: "plain", Email: "plain@general.io", Role: "user", OrganizationID: lo.ToPtr("org-general-0001")},
	}
	for _, row := range seed {
		require.NoError(t, db.Create(row).Error)
	}

	cfg := &config.Config{
		Server: config.ServerConfig{Name: "tenant-deployer", Mode: "test"},
		Hosting: config.HostingConfig{
			SiteDomain:        "vercel.app",
			Framework:         "nextjs",
			DefaultRepository: "https://github.com/acme/tenant-site",
			DefaultBranch:     "main",
		},
		Core: config.CoreConfig{
			Deploy: config.DeployConfig{
				PropagationDelay: time.Millisecond,
				RetryDelay:       time.Millisecond,
				TriggerTimeout:   time.Second,
				LockTTL:          time.Minute,
			},
		},
	}

	fake := hostingtest.New()
	var provider api.HostingProvider
	if withHosting {
		provider = fake
	}

	orgRepo := repository.NewOrganizationRepository(db)
	recordRepo := repository.NewDeploymentRecordRepository(db)
	locker := lock.NewMemoryLocker()
	verifier := jwt.NewVerifier(config.JWTConfig{Secret: secret})

	engine := Setup(cfg, &Deps{
		DB:                db,
		Verifier:          verifier,
		Authz:             service.NewAuthorizationService(repository.NewProfileRepository(db), orgRepo),
		Deploy:            service.NewDeployService(provider, orgRepo, recordRepo, locker, nil, cfg),
		Status:            service.NewDeploymentStatusService(provider, orgRepo, recordRepo, nil),
		HostingConfigured: withHosting,
	})

	return &testServer{engine: engine, fake: fake, locker: locker, verifier: verifier}
}

func (s *testServer) token(t *testing.T, subject string) string {
	t.Helper()
	tok, err := s.verifier.Generate(subject, subject+"@example.com", time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(t *testing.T, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

type deployResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    struct {
		HostingProjectID     string   `json:"hostingProjectId"`
		HostingDeploymentID  *string  `json:"hostingDeploymentId"`
		DeploymentStatus     string   `json:"deploymentStatus"`
		ManualDeploymentNote *string  `json:"manualDeploymentNote"`
		Instructions         []string `json:"instructions"`
	} `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out))
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	decode(t, w, &body)
	return body.Error
}

func TestDeployScenarioTriggered(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodPost, deployURL, s.token(t, "creator"), map[string]string{"organizationId": tenantID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp deployResponse
	decode(t, w, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, "Site deployment initiated successfully", resp.Message)
	assert.Equal(t, constants.DeploymentStatusBuilding, resp.Data.DeploymentStatus)
	assert.NotNil(t, resp.Data.HostingDeploymentID)
	assert.Nil(t, resp.Data.ManualDeploymentNote)
	assert.NotEmpty(t, resp.Data.Instructions)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestDeployScenarioConnectFails(t *testing.T) {
	s := newTestServer(t, true)
	s.fake.ConnectErr = &api.HostingPlatformError{Status: 400, Message: "GitHub integration missing"}

	w := s.do(t, http.MethodPost, deployURL, s.token(t, "creator"), map[string]string{"organizationId": tenantID})
	require.Equal(t, http.StatusOK, w.Code)

	var resp deployResponse
	decode(t, w, &resp)
	assert.Equal(t, "prj_1", resp.Data.HostingProjectID)
	assert.Nil(t, resp.Data.HostingDeploymentID)
	assert.Equal(t, constants.DeploymentStatusCreated, resp.Data.DeploymentStatus)
	assert.NotNil(t, resp.Data.ManualDeploymentNote)
}

func TestDeployScenarioMissingOrganization(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodPost, deployURL, s.token(t, "creator"), map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Organization ID is required", errorOf(t, w))

	w = s.do(t, http.MethodPost, deployURL, s.token(t, "creator"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Organization ID is required", errorOf(t, w))
}

func TestDeployScenarioForeignTenant(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodPost, deployURL, s.token(t, "creator"), map[string]string{"organizationId": "foreign-org-0001"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, s.fake.Projects)
}

func TestDeployScenarioTriggerFails(t *testing.T) {
	s := newTestServer(t, true)
	quota := &api.HostingPlatformError{Status: 402, Message: "Deployment quota exceeded"}
	s.fake.TriggerErrs = []error{quota, quota}

	w := s.do(t, http.MethodPost, deployURL, s.token(t, "creator"), map[string]string{"organizationId": tenantID})
	require.Equal(t, http.StatusOK, w.Code)

	var resp deployResponse
	decode(t, w, &resp)
	assert.Equal(t, constants.DeploymentStatusCreated, resp.Data.DeploymentStatus)
	assert.Equal(t, 1, s.fake.TriggerCount())
}

func TestDeployAuthFailures(t *testing.T) {
	s := newTestServer(t, true)
	body := map[string]string{"organizationId": tenantID}

	w := s.do(t, http.MethodPost, deployURL, "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Unauthorized", errorOf(t, w))

	w = s.do(t, http.MethodPost, deployURL, "not-a-jwt", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Invalid token", errorOf(t, w))

	other := jwt.NewVerifier(config.JWTConfig{Secret: "other-secret"})
	forged, err := other.Generate("creator", "creator@general.io", time.Hour)
	require.NoError(t, err)
	w = s.do(t, http.MethodPost, deployURL, forged, body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodPost, deployURL, s.token(t, "ghost"), body)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, deployURL, s.token(t, "plain"), body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, deployURL, s.token(t, "creator"), map[string]string{"organizationId": "missing"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Organization not found", errorOf(t, w))
}

func TestDeployWithoutHosting(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodPost, deployURL, s.token(t, "creator"), map[string]string{"organizationId": tenantID})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, errorOf(t, w), "Hosting integration not configured")
}

func TestDeployConflict(t *testing.T) {
	s := newTestServer(t, true)
	unlock, ok, err := s.locker.TryLock(context.Background(), constants.LockKeyDeployPrefix+tenantID, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	defer unlock()

	w := s.do(t, http.MethodPost, deployURL, s.token(t, "creator"), map[string]string{"organizationId": tenantID})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func detailOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	decode(t, w, &body)
	return body.Detail
}

func TestDeployRejectsInvalidBody(t *testing.T) {
	s := newTestServer(t, true)
	tok := s.token(t, "creator")

	w := s.do(t, http.MethodPost, deployURL, tok, map[string]string{"organizationId": strings.Repeat("a", 65)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", errorOf(t, w))
	assert.Equal(t, "field 'organizationId' must be at most 64 characters", detailOf(t, w))

	w = s.do(t, http.MethodPost, deployURL, tok, map[string]interface{}{"organizationId": tenantID, "branch": strings.Repeat("b", 129)})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "field 'branch' must be at most 128 characters", detailOf(t, w))

	req := httptest.NewRequest(http.MethodPost, deployURL, strings.NewReader(`{"organizationId":}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	w = httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request body", errorOf(t, w))
	assert.Equal(t, "invalid JSON format", detailOf(t, w))

	w = s.do(t, http.MethodPost, deployURL, tok, map[string]int{"organizationId": 42})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "field 'organizationId' should be string", detailOf(t, w))

	assert.Zero(t, s.fake.TriggerCount())
}

func TestGetDeploymentRejectsInvalidQuery(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodGet, deployURL+"?organizationId="+tenantID+"&deploymentId="+strings.Repeat("x", 37), s.token(t, "creator"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid query parameters", errorOf(t, w))
	assert.Equal(t, "field 'deploymentId' must be at most 36 characters", detailOf(t, w))
}

func TestGetDeployment(t *testing.T) {
	s := newTestServer(t, true)
	tok := s.token(t, "creator")

	w := s.do(t, http.MethodGet, deployURL, "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(t, http.MethodGet, deployURL, tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Organization ID is required", errorOf(t, w))

	w = s.do(t, http.MethodGet, deployURL+"?organizationId="+tenantID, tok, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodPost, deployURL, tok, map[string]string{"organizationId": tenantID})
	require.Equal(t, http.StatusOK, w.Code)
	var created deployResponse
	decode(t, w, &created)
	s.fake.SetState(*created.Data.HostingDeploymentID, "READY")

	first := s.do(t, http.MethodGet, deployURL+"?organizationId="+tenantID, tok, nil)
	require.Equal(t, http.StatusOK, first.Code)

	var resp struct {
		Success    bool `json:"success"`
		Deployment struct {
			Status                string `json:"status"`
			HostingPlatformStatus *struct {
				State string `json:"state"`
			} `json:"hostingPlatformStatus"`
		} `json:"deployment"`
	}
	decode(t, first, &resp)
	assert.True(t, resp.Success)
	assert.Equal(t, constants.DeploymentStatusReady, resp.Deployment.Status)
	require.NotNil(t, resp.Deployment.HostingPlatformStatus)
	assert.Equal(t, "READY", resp.Deployment.HostingPlatformStatus.State)

	second := s.do(t, http.MethodGet, deployURL+"?organizationId="+tenantID, tok, nil)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	decode(t, w, &body)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "not_configured", body.Checks["hosting"])
}
