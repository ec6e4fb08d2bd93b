package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/franchise/internal/config"
	"github.com/mamadbah2/franchise/internal/domain/models"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(config.BackendConfig{BaseURL: srv.URL + "/", Token: "tok", Timeout: 5 * time.Second})
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func TestListStudentsTranslatesDTO(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/students", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "ana", r.URL.Query().Get("q"))
		writeJSON(w, http.StatusOK, `[
			{"id":"s1","name":"Ana","payment_method":"Crédito","status":"Inactive","guardian_name":"Maria","guardian_phone":"11999990000","unit_id":"u1"},
			{"id":"s2","name":"Bia","payment_method":"Dinheiro"},
			{"id":"s3","name":"Caio","payment_method":"boleto","status":"Trial"}
		]`)
	})
	client := newTestClient(t, mux)

	students, err := client.ListStudents(context.Background(), "  ana ")
	require.NoError(t, err)
	require.Len(t, students, 3)

	assert.Equal(t, models.PaymentCard, students[0].PaymentMethod)
	assert.Equal(t, models.StudentInactive, students[0].Status)
	assert.Equal(t, "Maria", students[0].Guardian.Name)
	assert.Equal(t, "u1", students[0].UnitID)

	assert.Equal(t, models.PaymentCash, students[1].PaymentMethod)
	assert.Equal(t, models.StudentActive, students[1].Status)

	assert.Equal(t, models.PaymentPix, students[2].PaymentMethod)
	assert.Equal(t, models.StudentTrial, students[2].Status)
}

func TestPaymentMethodMapping(t *testing.T) {
	tests := []struct {
		raw  string
		want models.PaymentMethod
	}{
		{raw: "PIX", want: models.PaymentPix},
		{raw: "Débito", want: models.PaymentCard},
		{raw: "debito", want: models.PaymentCard},
		{raw: "cash", want: models.PaymentCash},
		{raw: "Transferência", want: models.PaymentTransfer},
		{raw: "", want: models.PaymentPix},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, paymentMethodFromBackend(tt.raw))
		})
	}
	assert.Equal(t, "PIX", paymentMethodToBackend(models.PaymentTransfer))
	assert.Equal(t, "Crédito", paymentMethodToBackend(models.PaymentCard))
}

func TestCreateStudentSendsBackendEnums(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/students", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Léo", body["name"])
		assert.Equal(t, "Crédito", body["payment_method"])
		assert.NotContains(t, body, "birthdate")
		assert.NotContains(t, body, "created_at")
		writeJSON(w, http.StatusCreated, `{"id":"s9","name":"Léo","payment_method":"Crédito"}`)
	})
	client := newTestClient(t, mux)

	created, err := client.CreateStudent(context.Background(), models.Student{Name: "Léo", BirthDate: "  ", PaymentMethod: models.PaymentCard})
	require.NoError(t, err)
	assert.Equal(t, "s9", created.ID)
	assert.Equal(t, models.PaymentCard, created.PaymentMethod)
}

func TestProfessionalTranslation(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/professionals", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `[
			{"id":"p1","name":"Carlos","role_position":"Coordenação","repass_type":"Percentual","repass_value":10,"status":"Active"},
			{"id":"p2","name":"Dani"}
		]`)
	})
	client := newTestClient(t, mux)

	staff, err := client.ListProfessionals(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, staff, 2)

	assert.Equal(t, models.RoleCoordinator, staff[0].Role)
	assert.Equal(t, models.PayoutPercentage, staff[0].Payout.Type)
	assert.True(t, decimal.NewFromInt(10).Equal(staff[0].Payout.Value))
	assert.Equal(t, models.ProfessionalActive, staff[0].Status)

	assert.Equal(t, models.RoleTeacher, staff[1].Role)
	assert.Equal(t, models.PayoutFixed, staff[1].Payout.Type)
	assert.Empty(t, staff[1].UnitIDs)
}

func TestUpdateUnitMapsStatusAndPayoutType(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/units/u1", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var body unitDTO
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Inativo", body.Status)
		assert.Equal(t, "Fixo", body.RepassType)
		writeJSON(w, http.StatusOK, `{"id":"u1","name":"Centro","status":"Inativo","repass_type":"Valor Fixo","repass_value":1500}`)
	})
	client := newTestClient(t, mux)

	unit, err := client.UpdateUnit(context.Background(), "u1", models.Unit{Name: "Centro", Status: models.UnitInactive})
	require.NoError(t, err)
	assert.Equal(t, models.UnitInactive, unit.Status)
	assert.Equal(t, models.PayoutFixed, unit.Payout.Type)
	assert.True(t, decimal.NewFromInt(1500).Equal(unit.Payout.Value))
}

func TestListClassesScheduleShapes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/classes", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "u1", r.URL.Query().Get("unit_id"))
		assert.Empty(t, r.URL.Query().Get("status"))
		writeJSON(w, http.StatusOK, `[
			{"id":"c1","unit_id":"u1","name":"Sub-11","schedule":{"slots":[{"day":"Segunda","start":"18:00","end":"19:00"}]},"teacher_ids":null},
			{"id":"c2","unit_id":"u1","name":"Sub-13","schedule":[{"day":"Quarta","start":"17:00","end":"18:00"}]},
			{"id":"c3","unit_id":"u1","name":"Adulto","schedule":null,"category":"Livre"}
		]`)
	})
	client := newTestClient(t, mux)

	classes, err := client.ListClasses(context.Background(), ClassQuery{UnitID: "u1"})
	require.NoError(t, err)
	require.Len(t, classes, 3)

	assert.Equal(t, []models.ScheduleSlot{{Day: models.Monday, Start: "18:00", End: "19:00"}}, classes[0].Schedule)
	assert.Equal(t, models.Wednesday, classes[1].Schedule[0].Day)
	assert.Empty(t, classes[2].Schedule)
	assert.Equal(t, "Livre", classes[2].Category)
	assert.Equal(t, []string{}, classes[0].TeacherIDs)
}

func TestMarkInvoicePaidDefaults(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/invoices/i1/mark-paid", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "PIX", body["payment_method"])
		assert.NotEmpty(t, body["paid_at"])
		assert.Nil(t, body["receipt_url"])
		assert.Contains(t, body, "professional_id")
		w.WriteHeader(http.StatusNoContent)
	})
	client := newTestClient(t, mux)

	require.NoError(t, client.MarkInvoicePaid(context.Background(), "i1", MarkInvoicePaidInput{}))
}

func TestAPIErrorCarriesBackendMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repasses/r1/mark-paid", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, `{"error":"repasse já pago"}`)
	})
	mux.HandleFunc("/expenses/e1/mark-paid", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	client := newTestClient(t, mux)

	err := client.MarkRepassPaid(context.Background(), "r1", MarkRepassPaidInput{ReceiptURL: "https://x/r.pdf"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "repasse já pago", apiErr.Message)

	err = client.MarkExpensePaid(context.Background(), "e1")
	require.True(t, errors.As(err, &apiErr))
	assert.Empty(t, apiErr.Message)
	assert.Equal(t, "backend returned status 500", apiErr.Error())
}

func TestDashboardMetrics(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/dashboard/metrics", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"totalUnidades":3,"totalAlunos":120,"faturamentoMensal":45000.5,"inadimplencia":4.2,"churn":1,
			"receitaPorUnidade":[{"unidade":"Centro","receita":20000,"alunos":50}],
			"evolucaoFaturamento":[{"mes":"2025-09","receita":40000,"despesas":10000,"lucro":30000}]}`)
	})
	client := newTestClient(t, mux)

	metrics, err := client.DashboardMetrics(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, metrics.TotalUnits)
	assert.Equal(t, 120, metrics.TotalStudents)
	assert.Equal(t, "45000.5", metrics.MonthlyRevenue.String())
	require.Len(t, metrics.RevenueByUnit, 1)
	assert.Equal(t, "Centro", metrics.RevenueByUnit[0].Unit)
}
