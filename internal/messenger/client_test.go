package messenger

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"chatbot-router/internal/domain"
)

type capturedRequest struct {
	path  string
	query string
	body  map[string]any
}

func newGraphServer(t *testing.T, status int, response string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var captured []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		if len(raw) > 0 {
			_ = json.Unmarshal(raw, &body)
		}
		captured = append(captured, capturedRequest{path: r.URL.Path, query: r.URL.RawQuery, body: body})
		w.WriteHeader(status)
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestGraphClientSendText(t *testing.T) {
	srv, captured := newGraphServer(t, http.StatusOK, `{"recipient_id":"u1","message_id":"m1"}`)
	c := NewGraphClient(srv.URL, "page-token", zap.NewNop())

	if err := c.SendText(context.Background(), "u1", "hola"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(*captured) != 1 {
		t.Fatalf("expected 1 request, got %d", len(*captured))
	}
	req := (*captured)[0]
	if req.path != "/me/messages" || !strings.Contains(req.query, "access_token=page-token") {
		t.Fatalf("unexpected endpoint %s?%s", req.path, req.query)
	}
	recipient := req.body["recipient"].(map[string]any)
	message := req.body["message"].(map[string]any)
	if recipient["id"] != "u1" || message["text"] != "hola" {
		t.Fatalf("unexpected body %+v", req.body)
	}
}

func TestGraphClientSendButtons(t *testing.T) {
	srv, captured := newGraphServer(t, http.StatusOK, `{}`)
	c := NewGraphClient(srv.URL, "tok", zap.NewNop())

	buttons := []domain.Button{
		{Type: domain.ButtonWebURL, Title: "Track", URL: "https://example.com"},
		{Type: domain.ButtonPostback, Title: "Chat", Payload: "CHAT"},
	}
	if err := c.SendButtons(context.Background(), "u1", "next?", buttons); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	payload := (*captured)[0].body["message"].(map[string]any)["attachment"].(map[string]any)["payload"].(map[string]any)
	if payload["template_type"] != "button" || payload["text"] != "next?" {
		t.Fatalf("unexpected template payload %+v", payload)
	}
	if got := len(payload["buttons"].([]any)); got != 2 {
		t.Fatalf("expected 2 buttons, got %d", got)
	}
}

func TestGraphClientTypingIndicators(t *testing.T) {
	srv, captured := newGraphServer(t, http.StatusOK, `{}`)
	c := NewGraphClient(srv.URL, "tok", zap.NewNop())

	_ = c.SendTypingOn(context.Background(), "u1")
	_ = c.SendTypingOff(context.Background(), "u1")

	if (*captured)[0].body["sender_action"] != "typing_on" || (*captured)[1].body["sender_action"] != "typing_off" {
		t.Fatalf("unexpected sender actions %+v", *captured)
	}
	if _, ok := (*captured)[0].body["message"]; ok {
		t.Fatalf("sender action must not carry a message")
	}
}

func TestGraphClientErrorMessage(t *testing.T) {
	srv, _ := newGraphServer(t, http.StatusBadRequest, `{"error":{"message":"Invalid OAuth access token.","code":190}}`)
	c := NewGraphClient(srv.URL, "tok", zap.NewNop())

	err := c.SendText(context.Background(), "u1", "hola")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "Invalid OAuth access token.") {
		t.Fatalf("expected graph message in error, got %v", err)
	}
}

func TestGraphClientHandleCardBatch(t *testing.T) {
	srv, captured := newGraphServer(t, http.StatusOK, `{}`)
	c := NewGraphClient(srv.URL, "tok", zap.NewNop())

	cards := []domain.Fragment{
		{Type: domain.FragmentCard, Card: &domain.CardFragment{
			Title: "Accountant", Subtitle: "Full time",
			Buttons: []domain.CardButton{{Text: "Apply", Postback: "JOB_APPLY"}, {Text: "Read", Postback: "https://jobs.example.com"}},
		}},
		{Type: domain.FragmentCard, Card: &domain.CardFragment{Title: "Sales"}},
	}
	if err := c.HandleCardBatch(context.Background(), cards, "u1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(*captured) != 1 {
		t.Fatalf("expected a single grouped send, got %d", len(*captured))
	}
	payload := (*captured)[0].body["message"].(map[string]any)["attachment"].(map[string]any)["payload"].(map[string]any)
	elements := payload["elements"].([]any)
	if payload["template_type"] != "generic" || len(elements) != 2 {
		t.Fatalf("unexpected generic payload %+v", payload)
	}
	buttons := elements[0].(map[string]any)["buttons"].([]any)
	if buttons[0].(map[string]any)["type"] != "postback" || buttons[1].(map[string]any)["type"] != "web_url" {
		t.Fatalf("unexpected button types %+v", buttons)
	}
}

func TestGraphClientHandleMessageQuickReplies(t *testing.T) {
	srv, captured := newGraphServer(t, http.StatusOK, `{}`)
	c := NewGraphClient(srv.URL, "tok", zap.NewNop())

	f := domain.Fragment{Type: domain.FragmentQuickReplies, QuickReplies: &domain.QuickRepliesFragment{
		Title: "Pick one", Replies: []string{"A", "B"},
	}}
	if err := c.HandleMessage(context.Background(), f, "u1"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	message := (*captured)[0].body["message"].(map[string]any)
	if message["text"] != "Pick one" || len(message["quick_replies"].([]any)) != 2 {
		t.Fatalf("unexpected quick replies body %+v", message)
	}
}

func TestGraphClientFetchProfile(t *testing.T) {
	srv, captured := newGraphServer(t, http.StatusOK, `{"first_name":"Sam","last_name":"Lee","locale":"en_US","timezone":2,"id":"u1"}`)
	c := NewGraphClient(srv.URL, "tok", zap.NewNop())

	p, err := c.FetchProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.UserID != "u1" || p.FirstName != "Sam" || p.Timezone != 2 {
		t.Fatalf("unexpected profile %+v", p)
	}
	if (*captured)[0].path != "/u1" || !strings.Contains((*captured)[0].query, "fields=") {
		t.Fatalf("unexpected profile request %+v", (*captured)[0])
	}
}

func TestConsoleClientPrintsReplies(t *testing.T) {
	var sb strings.Builder
	c := NewConsoleClient(&sb)
	ctx := context.Background()

	_ = c.SendText(ctx, "u1", "hola")
	_ = c.SendQuickReplies(ctx, "u1", "Pick", domain.TextOptions("A", "B"))

	out := sb.String()
	if !strings.Contains(out, "bot> hola") || !strings.Contains(out, "(A) (B)") {
		t.Fatalf("unexpected console output %q", out)
	}
}
