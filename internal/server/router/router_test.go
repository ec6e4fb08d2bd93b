package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/franchise/internal/authz"
	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/format"
	"github.com/mamadbah2/franchise/internal/server/handlers"
	"github.com/mamadbah2/franchise/internal/service/payoutrun"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubReports struct{}

func (stubReports) Dashboard(context.Context) (models.DashboardMetrics, error) {
	return models.DashboardMetrics{TotalUnits: 2}, nil
}

func (stubReports) MonthlySummary(_ context.Context, m format.Month) (models.MonthlySummary, error) {
	return models.MonthlySummary{Month: m.String()}, nil
}

func (stubReports) Trend(context.Context, format.Month, int) ([]models.RevenueHistory, error) {
	return nil, nil
}

type stubHistory struct{}

func (stubHistory) ListRuns(context.Context, string, string, int64) ([]models.PayoutRun, error) {
	return nil, nil
}

func newEngine(t *testing.T, mode authz.Mode) *gin.Engine {
	t.Helper()
	a, err := authz.NewAuthorizer("", mode)
	require.NoError(t, err)

	runs := payoutrun.NewService(nil, nil, nil, nil, nil, nil)
	return New(Handlers{
		PayoutRun: handlers.NewPayoutRunHandler(runs, stubHistory{}, nil),
		Reports:   handlers.NewReportHandler(stubReports{}, nil, nil),
	}, a, nil)
}

func call(e *gin.Engine, method, path, tenantID, role string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if tenantID != "" {
		req.Header.Set(headerTenant, tenantID)
	}
	if role != "" {
		req.Header.Set(headerRole, role)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

func TestHealthzIsOpen(t *testing.T) {
	w := call(newEngine(t, authz.ModeEnforce), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRoleAccess(t *testing.T) {
	e := newEngine(t, authz.ModeEnforce)

	tests := []struct {
		name   string
		method string
		path   string
		role   string
		want   int
	}{
		{"anonymous cannot read reports", http.MethodGet, "/api/v1/reports/dashboard", "", http.StatusForbidden},
		{"student cannot read reports", http.MethodGet, "/api/v1/reports/dashboard", authz.RoleStudent, http.StatusForbidden},
		{"manager reads reports", http.MethodGet, "/api/v1/reports/dashboard", authz.RoleManager, http.StatusOK},
		{"manager cannot start payout runs", http.MethodPost, "/api/v1/payout-runs", authz.RoleManager, http.StatusForbidden},
		{"finance starts payout runs", http.MethodPost, "/api/v1/payout-runs", authz.RoleFinance, http.StatusCreated},
		{"admin starts payout runs", http.MethodPost, "/api/v1/payout-runs", authz.RoleAdmin, http.StatusCreated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := call(e, tt.method, tt.path, "acme", tt.role)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestShadowModeOnlyObserves(t *testing.T) {
	e := newEngine(t, authz.ModeShadow)
	w := call(e, http.MethodGet, "/api/v1/reports/dashboard", "acme", authz.RoleStudent)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPayoutRunsAreIsolatedByTenant(t *testing.T) {
	e := newEngine(t, authz.ModeEnforce)

	w := call(e, http.MethodPost, "/api/v1/payout-runs", "acme", authz.RoleAdmin)
	require.Equal(t, http.StatusCreated, w.Code)
	var sess struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sess))

	w = call(e, http.MethodGet, "/api/v1/payout-runs/"+sess.ID, "ACME ", authz.RoleAdmin)
	assert.Equal(t, http.StatusOK, w.Code)

	w = call(e, http.MethodGet, "/api/v1/payout-runs/"+sess.ID, "outra", authz.RoleAdmin)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
