package nlu

import (
	"context"
	"sync"

	"chatbot-router/internal/domain"
)

// MockClient permite tests sin llamar al NLU real.
type MockClient struct {
	mu      sync.Mutex
	Result  domain.NLUResult
	Err     error
	Queries []MockQuery
}

type MockQuery struct {
	SessionID string
	Text      string
}

func (m *MockClient) Query(_ context.Context, sessionID, text string) (domain.NLUResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, MockQuery{SessionID: sessionID, Text: text})
	return m.Result, m.Err
}

// Calls devuelve una copia de las consultas registradas.
func (m *MockClient) Calls() []MockQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockQuery(nil), m.Queries...)
}
