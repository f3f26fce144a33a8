package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"

	apierrors "github.com/das-elb/email-agent-go/pkg/errors"
)

func TestRespondError_TraduzAPIError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "not found",
			err:        apierrors.NotFound("Registro", nil),
			wantStatus: http.StatusNotFound,
			wantBody:   "Registro não encontrado",
		},
		{
			name:       "conflict",
			err:        apierrors.Conflict("Resposta já enviada para este registro", nil),
			wantStatus: http.StatusConflict,
			wantBody:   "Resposta já enviada",
		},
		{
			name:       "erro não mapeado vira 500 genérico",
			err:        errors.New("detalhe interno que não deve vazar"),
			wantStatus: http.StatusInternalServerError,
			wantBody:   "Erro interno do servidor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			respondError(c, zaptest.NewLogger(t), tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
			assert.NotContains(t, w.Body.String(), "detalhe interno")
		})
	}
}
