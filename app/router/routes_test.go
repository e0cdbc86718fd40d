package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/amirphl/lead-connect/app/dto"
	"github.com/amirphl/lead-connect/app/handlers"
	"github.com/amirphl/lead-connect/app/middleware"
	"github.com/amirphl/lead-connect/app/services"
	businessflow "github.com/amirphl/lead-connect/business_flow"
	"github.com/amirphl/lead-connect/config"
	"github.com/amirphl/lead-connect/models"
	"github.com/amirphl/lead-connect/repository"
	testingutil "github.com/amirphl/lead-connect/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type apiEnv struct {
	router Router
	store  *repository.DataStoreImpl
	own    []*models.Lead
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	dir := testingutil.NewDataDir(t.TempDir())
	logger := zap.NewNop()

	users := repository.NewUserRepository(dir.Users, logger)
	store := repository.NewDataStore(users, repository.NewCampaignRepository(dir.Campaigns, logger),
		repository.NewShardStore(repository.ShardStoreConfig{Dir: dir.Leads, Format: repository.SheetFormatCSV}, logger))
	actionLog := repository.NewActionLogRepository(dir.ActionLog)

	own := testingutil.NewLeads(2, "CAMP-001", "ic101")
	snapshot := &models.Snapshot{
		Users:     testingutil.DemoUsers(),
		Campaigns: []*models.Campaign{testingutil.NewCampaign("CAMP-001", "Tech IPO", models.CampaignTypeIPO)},
		Leads:     append(own, testingutil.NewLeads(1, "CAMP-001", "ic201")...),
	}
	require.NoError(t, store.SaveAllData(context.Background(), snapshot))

	coordinator := businessflow.NewStoreCoordinator(businessflow.NewMutexLock(), logger)
	t.Cleanup(coordinator.Close)

	tokens, err := services.NewTokenService(time.Hour, "lead-connect", "lead-connect-api", false, "", "", "0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	h := Handlers{
		Auth:          handlers.NewAuthHandler(businessflow.NewLoginFlow(users, tokens, logger), logger, 0),
		CampaignAdmin: handlers.NewCampaignAdminHandler(businessflow.NewAdminCampaignFlow(store, coordinator, actionLog, logger), logger, 0),
		Lead:          handlers.NewLeadHandler(businessflow.NewLeadFlow(store, coordinator, actionLog, logger), logger, 0),
		Dashboard:     handlers.NewDashboardHandler(businessflow.NewDashboardFlow(store, logger), logger, 0),
	}
	r := NewFiberRouter(h, middleware.NewAuthMiddleware(tokens),
		config.ServerConfig{BodyLimit: 4 << 20, ReadTimeout: 5 * time.Second, WriteTimeout: 5 * time.Second},
		config.MetricsConfig{Enabled: false, Path: "/metrics"}, logger)
	r.SetupRoutes()
	return &apiEnv{router: r, store: store, own: own}
}

// do sends a request and decodes the standard response envelope
func (e *apiEnv) do(t *testing.T, req *http.Request) (int, dto.APIResponse) {
	t.Helper()
	resp, err := e.router.GetApp().Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out dto.APIResponse
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return resp.StatusCode, out
}

func jsonRequest(t *testing.T, method, path, token string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func (e *apiEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	status, resp := e.do(t, jsonRequest(t, http.MethodPost, "/api/v1/auth/login", "", dto.LoginRequest{Username: username, Password: password}))
	require.Equal(t, http.StatusOK, status)
	data := resp.Data.(map[string]any)
	return data["access_token"].(string)
}

func errorCode(resp dto.APIResponse) string {
	detail, _ := resp.Error.(map[string]any)
	code, _ := detail["code"].(string)
	return code
}

func TestHealth(t *testing.T) {
	env := newAPIEnv(t)
	status, resp := env.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	assert.Equal(t, http.StatusOK, status)
	assert.True(t, resp.Success)
}

func TestAuthAndRoles(t *testing.T) {
	env := newAPIEnv(t)
	icToken := env.login(t, "ic101", "password1")
	adminToken := env.login(t, "admin", "admin123")

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
		wantCode   string
	}{
		{name: "wrong password", method: http.MethodPost, path: "/api/v1/auth/login", wantStatus: http.StatusUnauthorized, wantCode: "INVALID_CREDENTIALS"},
		{name: "no token", method: http.MethodGet, path: "/api/v1/admin/campaigns", wantStatus: http.StatusUnauthorized, wantCode: "MISSING_AUTHORIZATION_HEADER"},
		{name: "garbage token", method: http.MethodGet, path: "/api/v1/admin/campaigns", token: "garbage", wantStatus: http.StatusUnauthorized, wantCode: "TOKEN_INVALID"},
		{name: "representative on admin route", method: http.MethodGet, path: "/api/v1/admin/campaigns", token: icToken, wantStatus: http.StatusForbidden, wantCode: "ROLE_FORBIDDEN"},
		{name: "admin on representative route", method: http.MethodGet, path: "/api/v1/ic/campaigns", token: adminToken, wantStatus: http.StatusForbidden, wantCode: "ROLE_FORBIDDEN"},
		{name: "unknown route", method: http.MethodGet, path: "/api/v1/nothing", wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body any
			if tt.path == "/api/v1/auth/login" {
				body = dto.LoginRequest{Username: "ic101", Password: "nope"}
			}
			status, resp := env.do(t, jsonRequest(t, tt.method, tt.path, tt.token, body))
			assert.Equal(t, tt.wantStatus, status)
			assert.False(t, resp.Success)
			assert.Equal(t, tt.wantCode, errorCode(resp))
		})
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newAPIEnv(t)
	token := env.login(t, "ic101", "password1")

	status, _ := env.do(t, jsonRequest(t, http.MethodPost, "/api/v1/auth/logout", token, nil))
	require.Equal(t, http.StatusOK, status)

	status, resp := env.do(t, jsonRequest(t, http.MethodGet, "/api/v1/ic/campaigns", token, nil))
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "TOKEN_REVOKED", errorCode(resp))
}

func TestSaveContactEditsEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	token := env.login(t, "ic101", "password1")
	date, clock := "2024-03-01", "10:00:00"

	t.Run("forbidden edit is reported per lead", func(t *testing.T) {
		status, resp := env.do(t, jsonRequest(t, http.MethodPut, "/api/v1/ic/campaigns/CAMP-001/leads", token, dto.SaveContactEditsRequest{
			Edits: []dto.ContactEdit{{LeadID: env.own[0].LeadID, Status: "not yet contacted", ContactDate: &date, ContactTime: &clock}},
		}))
		assert.Equal(t, http.StatusUnprocessableEntity, status)
		assert.Equal(t, "CONTACT_VALIDATION_FAILED", errorCode(resp))
		details := resp.Error.(map[string]any)["details"].(map[string]any)
		assert.Equal(t, []any{env.own[0].LeadID}, details["forbidden_violations"])
	})

	t.Run("valid edit", func(t *testing.T) {
		status, resp := env.do(t, jsonRequest(t, http.MethodPut, "/api/v1/ic/campaigns/CAMP-001/leads", token, dto.SaveContactEditsRequest{
			Edits: []dto.ContactEdit{{LeadID: env.own[0].LeadID, Status: "contacted", ContactDate: &date, ContactTime: &clock}},
		}))
		require.Equal(t, http.StatusOK, status)
		assert.Equal(t, float64(1), resp.Data.(map[string]any)["changed"])
	})

	t.Run("list shows the contact", func(t *testing.T) {
		status, resp := env.do(t, jsonRequest(t, http.MethodGet, "/api/v1/ic/campaigns/CAMP-001/leads?status=contacted", token, nil))
		require.Equal(t, http.StatusOK, status)
		leads := resp.Data.(map[string]any)["leads"].([]any)
		require.Len(t, leads, 1)
		lead := leads[0].(map[string]any)
		assert.Equal(t, date, lead["contact_date"])
		assert.Equal(t, clock, lead["contact_time"])
	})
}

func TestCreateCampaignEndpoint(t *testing.T) {
	env := newAPIEnv(t)
	token := env.login(t, "admin", "admin123")

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range map[string]string{
		"campaign_name": "Bond Week",
		"campaign_type": "Bond",
		"description":   "Retail bond outreach",
		"start_date":    "2024-03-01",
		"end_date":      "2024-03-31",
	} {
		require.NoError(t, w.WriteField(k, v))
	}
	part, err := w.CreateFormFile("leads_file", "leads.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("campaign_id,customer_name,assigned_ic\nCAMP-002,Alice,ic101\nCAMP-002,Bob,ghost\n"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/campaigns", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	status, resp := env.do(t, req)
	require.Equal(t, http.StatusCreated, status, resp.Message)
	data := resp.Data.(map[string]any)
	assert.Equal(t, "CAMP-002", data["campaign"].(map[string]any)["campaign_id"])
	report := data["import"].(map[string]any)
	assert.Equal(t, float64(1), report["imported"])
	assert.Equal(t, []any{"ghost"}, report["missing_ics"])

	status, resp = env.do(t, jsonRequest(t, http.MethodGet, "/api/v1/admin/campaigns/next-id", token, nil))
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "CAMP-003", resp.Data.(map[string]any)["campaign_id"])
}
