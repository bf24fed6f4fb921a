package service

import (
	"context"
	"sync"
	"time"

	"chatbot-router/internal/domain"
)

type sentMessage struct {
	Kind      string
	Recipient string
	Text      string
	Buttons   []domain.Button
	Options   []domain.QuickReplyOption
	Fragments []domain.Fragment
}

type mockMessenger struct {
	mu       sync.Mutex
	sent     []sentMessage
	textErrs map[string]error
}

func (m *mockMessenger) record(msg sentMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
}

func (m *mockMessenger) SendText(_ context.Context, recipient, text string) error {
	m.record(sentMessage{Kind: "text", Recipient: recipient, Text: text})
	if m.textErrs != nil {
		return m.textErrs[text]
	}
	return nil
}

func (m *mockMessenger) SendButtons(_ context.Context, recipient, text string, buttons []domain.Button) error {
	m.record(sentMessage{Kind: "buttons", Recipient: recipient, Text: text, Buttons: buttons})
	return nil
}

func (m *mockMessenger) SendQuickReplies(_ context.Context, recipient, text string, options []domain.QuickReplyOption) error {
	m.record(sentMessage{Kind: "quick_replies", Recipient: recipient, Text: text, Options: options})
	return nil
}

func (m *mockMessenger) SendImage(_ context.Context, recipient, imageURL string) error {
	m.record(sentMessage{Kind: "image", Recipient: recipient, Text: imageURL})
	return nil
}

func (m *mockMessenger) SendTypingOn(_ context.Context, recipient string) error {
	m.record(sentMessage{Kind: "typing_on", Recipient: recipient})
	return nil
}

func (m *mockMessenger) SendTypingOff(_ context.Context, recipient string) error {
	m.record(sentMessage{Kind: "typing_off", Recipient: recipient})
	return nil
}

func (m *mockMessenger) HandleMessage(_ context.Context, fragment domain.Fragment, recipient string) error {
	m.record(sentMessage{Kind: "fragment", Recipient: recipient, Fragments: []domain.Fragment{fragment}})
	return nil
}

func (m *mockMessenger) HandleCardBatch(_ context.Context, cards []domain.Fragment, recipient string) error {
	m.record(sentMessage{Kind: "cards", Recipient: recipient, Fragments: cards})
	return nil
}

func (m *mockMessenger) HandleAttachments(_ context.Context, attachments []domain.Attachment, sender string) error {
	m.record(sentMessage{Kind: "attachments", Recipient: sender})
	return nil
}

func (m *mockMessenger) Sent() []sentMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]sentMessage(nil), m.sent...)
}

// texts devuelve solo los envios de tipo texto, en orden.
func (m *mockMessenger) texts() []string {
	var out []string
	for _, s := range m.Sent() {
		if s.Kind == "text" {
			out = append(out, s.Text)
		}
	}
	return out
}

type scheduledCall struct {
	Delay time.Duration
	fn    func()
}

type fakeTask struct {
	canceled bool
}

func (t *fakeTask) Cancel() bool {
	was := t.canceled
	t.canceled = true
	return !was
}

// fakeScheduler guarda lo agendado sin ejecutarlo hasta RunAll.
type fakeScheduler struct {
	mu    sync.Mutex
	calls []scheduledCall
}

func (s *fakeScheduler) Schedule(delay time.Duration, fn func()) Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, scheduledCall{Delay: delay, fn: fn})
	return &fakeTask{}
}

func (s *fakeScheduler) Delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, 0, len(s.calls))
	for _, c := range s.calls {
		out = append(out, c.Delay)
	}
	return out
}

func (s *fakeScheduler) RunAll() {
	s.mu.Lock()
	calls := append([]scheduledCall(nil), s.calls...)
	s.mu.Unlock()
	for _, c := range calls {
		c.fn()
	}
}

type mockWeather struct {
	result  *domain.Weather
	err     error
	queries []string
}

func (m *mockWeather) Current(_ context.Context, city string) (*domain.Weather, error) {
	m.queries = append(m.queries, city)
	return m.result, m.err
}

type creatorCall struct {
	Phone, Name, PreviousJob, Years, Vacancy string
}

type mockCreator struct {
	mu    sync.Mutex
	calls []creatorCall
	err   error

	// si no es nil, Create espera a que se cierre antes de volver
	release chan struct{}
}

func (m *mockCreator) Create(_ context.Context, phone, name, previousJob, years, vacancy string) (domain.JobApplication, error) {
	if m.release != nil {
		<-m.release
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, creatorCall{phone, name, previousJob, years, vacancy})
	return domain.JobApplication{ID: "app-1"}, m.err
}

func (m *mockCreator) Calls() []creatorCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]creatorCall(nil), m.calls...)
}

type mockFetcher struct {
	mu      sync.Mutex
	calls   int
	profile domain.UserProfile
	err     error
}

func (m *mockFetcher) FetchProfile(_ context.Context, userID string) (domain.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return domain.UserProfile{}, m.err
	}
	p := m.profile
	p.UserID = userID
	return p, nil
}

func (m *mockFetcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

type mockJobApplicationRepo struct {
	created   []domain.JobApplication
	createErr error
	lastLimit int
	list      []domain.JobApplication
}

func (m *mockJobApplicationRepo) Create(_ context.Context, app domain.JobApplication) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, app)
	return nil
}

func (m *mockJobApplicationRepo) ListRecent(_ context.Context, limit int) ([]domain.JobApplication, error) {
	m.lastLimit = limit
	return m.list, nil
}

type mockEmailSender struct {
	sent []domain.JobApplication
	err  error
}

func (m *mockEmailSender) SendJobApplication(_ context.Context, app domain.JobApplication) error {
	m.sent = append(m.sent, app)
	return m.err
}
