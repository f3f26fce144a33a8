package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apierrors "github.com/das-elb/email-agent-go/pkg/errors"
)

// respondError traduz um erro na resposta HTTP correspondente. Um
// APIError carrega o status e a mensagem; qualquer outro erro vira
// um 500 genérico sem vazar detalhes internos.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		if logger != nil && apiErr.Code >= http.StatusInternalServerError {
			logger.Error("Erro interno ao atender requisição", zap.Error(err))
		}
		payload := gin.H{"error": apiErr.Message}
		if apiErr.Details != nil {
			payload["details"] = apiErr.Details
		}
		c.JSON(apiErr.Code, payload)
		return
	}

	if logger != nil {
		logger.Error("Erro não mapeado ao atender requisição", zap.Error(err))
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Erro interno do servidor"})
}
