package weather

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

	"chatbot-router/internal/domain"
)

// Client consulta el clima actual de una ciudad. Devuelve nil si no hay pronostico.
type Client interface {
	Current(ctx context.Context, city string) (*domain.Weather, error)
}

// HTTPClient implementa Client contra la API de OpenWeatherMap.
type HTTPClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

func NewHTTPClient(baseURL, apiKey string, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.openweathermap.org/data/2.5"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

func (c *HTTPClient) Current(ctx context.Context, city string) (*domain.Weather, error) {
	q := url.Values{}
	q.Set("q", city)
	q.Set("appid", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/weather?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	// Ciudad desconocida u otro error de la API: sin pronostico.
	if resp.StatusCode != http.StatusOK {
		c.logger.Info("weather lookup without forecast", zap.String("city", city), zap.Int("status", resp.StatusCode))
		return nil, nil
	}

	var wr weatherResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if len(wr.Weather) == 0 {
		return nil, nil
	}

	name := wr.Name
	if name == "" {
		name = city
	}
	return &domain.Weather{
		City:        name,
		Description: wr.Weather[0].Description,
		TempKelvin:  wr.Main.Temp,
	}, nil
}

type weatherResponse struct {
	Name    string `json:"name"`
	Weather []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
}
