// Package hotelapi consulta as APIs públicas do sistema de gestão do hotel
// para obter disponibilidade e preços em tempo real.
package hotelapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/das-elb/email-agent-go/internal/domain/model"
	"github.com/das-elb/email-agent-go/internal/infra/metrics"
	"github.com/das-elb/email-agent-go/pkg/config"
	"github.com/das-elb/email-agent-go/pkg/resilience"
)

// Client acessa a API de gestão com circuit breaker. Falhas degradam para
// respostas vazias: o agente de políticas consegue trabalhar sem dados ao
// vivo, apenas com a base de conhecimento.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *resilience.CircuitBreaker
	logger     *zap.Logger
}

// NewClient cria um cliente da API de gestão do hotel
func NewClient(cfg *config.HotelAPIConfig, m *metrics.AgentMetrics, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	breaker := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:            "hotel-management-api",
		MaxRequestsFail: 5,
		Interval:        time.Minute,
		Timeout:         30 * time.Second,
	}, logger, m)

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.ManagementBase, "/"),
		breaker:    breaker,
		logger:     logger,
	}
}

// FetchAvailability consulta a disponibilidade de um tipo de quarto.
// Retorna mapa vazio quando a API está indisponível.
func (c *Client) FetchAvailability(ctx context.Context, roomType, checkIn, checkOut string) model.JSONMap {
	params := url.Values{}
	params.Set("check_in", checkIn)
	params.Set("check_out", checkOut)
	params.Set("room_type", roomType)

	endpoint := fmt.Sprintf("%s/api/public/availability?%s", c.baseURL, params.Encode())

	result, err := c.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		var out model.JSONMap
		if err := c.getJSON(ctx, endpoint, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		c.logger.Warn("consulta de disponibilidade falhou",
			zap.String("roomType", roomType),
			zap.Error(err))
		return model.JSONMap{}
	}

	return result.(model.JSONMap)
}

// FetchRooms consulta os preços ao vivo dos quartos.
// Retorna lista vazia quando a API está indisponível.
func (c *Client) FetchRooms(ctx context.Context) []interface{} {
	endpoint := c.baseURL + "/api/public/rooms"

	result, err := c.breaker.Execute(ctx, func(ctx context.Context) (interface{}, error) {
		var out []interface{}
		if err := c.getJSON(ctx, endpoint, &out); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		c.logger.Warn("consulta de quartos falhou", zap.Error(err))
		return nil
	}

	return result.([]interface{})
}

func (c *Client) getJSON(ctx context.Context, endpoint string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("API de gestão retornou status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	return json.Unmarshal(body, dest)
}
