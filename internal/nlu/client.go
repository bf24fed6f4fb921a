package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"chatbot-router/internal/domain"
)

// Client define la consulta al servicio de NLU.
type Client interface {
	Query(ctx context.Context, sessionID, text string) (domain.NLUResult, error)
}

var ErrNLUEmpty = errors.New("nlu empty result")

const protocolVersion = "20150910"

// HTTPClient implementa Client contra el endpoint /query del agente.
type HTTPClient struct {
	baseURL     string
	accessToken string
	lang        string
	client      *http.Client
	logger      *zap.Logger
}

// NewHTTPClient construye un cliente HTTP para el agente NLU.
func NewHTTPClient(baseURL, accessToken, lang string, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "https://api.api.ai/v1"
	}
	if lang == "" {
		lang = "en"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		accessToken: accessToken,
		lang:        lang,
		client:      &http.Client{Timeout: 15 * time.Second},
		logger:      logger,
	}
}

func (c *HTTPClient) Query(ctx context.Context, sessionID, text string) (domain.NLUResult, error) {
	reqBody := queryRequest{
		Query:     text,
		SessionID: sessionID,
		Lang:      c.lang,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return domain.NLUResult{}, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query?v="+protocolVersion, bytes.NewReader(bodyBytes))
	if err != nil {
		return domain.NLUResult{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return domain.NLUResult{}, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NLUResult{}, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		c.logger.Warn("nlu error status", zap.Int("status", resp.StatusCode), zap.ByteString("body", respBody))
		return domain.NLUResult{}, fmt.Errorf("nlu http error: status=%d", resp.StatusCode)
	}

	var qr queryResponse
	if err := json.Unmarshal(respBody, &qr); err != nil {
		return domain.NLUResult{}, fmt.Errorf("unmarshal response: %w", err)
	}

	if qr.Status != nil && qr.Status.Code >= 400 {
		return domain.NLUResult{}, fmt.Errorf("nlu api error: %s", qr.Status.ErrorDetails)
	}
	if qr.Result == nil {
		return domain.NLUResult{}, ErrNLUEmpty
	}

	return c.toDomain(qr.Result), nil
}
