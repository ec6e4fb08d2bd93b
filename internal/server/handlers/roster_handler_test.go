package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/franchise/internal/domain/models"
	"github.com/mamadbah2/franchise/internal/service/roster"
)

type rosterBackend struct {
	roster.Backend
	writes int
}

func (b *rosterBackend) CreateUnit(_ context.Context, u models.Unit) (models.Unit, error) {
	b.writes++
	u.ID = "u9"
	return u, nil
}

func (b *rosterBackend) CreateProfessional(_ context.Context, p models.Professional) (models.Professional, error) {
	b.writes++
	p.ID = "p9"
	return p, nil
}

func TestCreateRejectsInvalidPayoutTerms(t *testing.T) {
	tests := []struct {
		name   string
		target string
		body   string
		field  string
	}{
		{"negative unit value", "/units", `{"nome":"X","repasse":{"repass_type":"Fixo","repass_value":-500}}`, "repass_value"},
		{"unknown unit type", "/units", `{"nome":"X","repasse":{"repass_type":"bogus","repass_value":10}}`, "repass_type"},
		{"negative professional value", "/professionals", `{"nome":"Rita","repasse":{"repass_type":"Percentual","repass_value":-1}}`, "repass_value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &rosterBackend{}
			h := NewRosterHandler(roster.NewService(b, nil, nil), 20, nil)

			w := serve(t, func(g *gin.RouterGroup) { h.Register(g) }, http.MethodPost, tt.target, tt.body)

			require.Equal(t, http.StatusBadRequest, w.Code)
			fields, ok := decode(t, w)["fields"].(map[string]interface{})
			require.True(t, ok)
			assert.Contains(t, fields, tt.field)
			assert.Zero(t, b.writes)
		})
	}
}

func TestCreateUnitAcceptsValorFixo(t *testing.T) {
	b := &rosterBackend{}
	h := NewRosterHandler(roster.NewService(b, nil, nil), 20, nil)

	w := serve(t, func(g *gin.RouterGroup) { h.Register(g) }, http.MethodPost, "/units",
		`{"nome":"Centro","estado":"BA","repasse":{"repass_type":"Valor Fixo","repass_value":1500}}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, b.writes)
	repasse, ok := decode(t, w)["repasse"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Fixo", repasse["repass_type"])
}
