package messenger

import (
	"bytes"
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

// Client define los envios hacia la plataforma de mensajeria.
type Client interface {
	SendText(ctx context.Context, recipient, text string) error
	SendButtons(ctx context.Context, recipient, text string, buttons []domain.Button) error
	SendQuickReplies(ctx context.Context, recipient, text string, options []domain.QuickReplyOption) error
	SendImage(ctx context.Context, recipient, imageURL string) error
	SendTypingOn(ctx context.Context, recipient string) error
	SendTypingOff(ctx context.Context, recipient string) error
	HandleMessage(ctx context.Context, fragment domain.Fragment, recipient string) error
	HandleCardBatch(ctx context.Context, cards []domain.Fragment, recipient string) error
	HandleAttachments(ctx context.Context, attachments []domain.Attachment, sender string) error
}

// ProfileFetcher obtiene el perfil publico de un usuario.
type ProfileFetcher interface {
	FetchProfile(ctx context.Context, userID string) (domain.UserProfile, error)
}

const attachmentAck = "Attachment received. Thank you."

// GraphClient implementa Client y ProfileFetcher contra la Graph API.
type GraphClient struct {
	baseURL   string
	pageToken string
	client    *http.Client
	logger    *zap.Logger
}

// NewGraphClient construye un cliente apuntando a la Graph API.
func NewGraphClient(baseURL, pageToken string, logger *zap.Logger) *GraphClient {
	if baseURL == "" {
		baseURL = "https://graph.facebook.com/v3.2"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphClient{
		baseURL:   strings.TrimRight(baseURL, "/"),
		pageToken: pageToken,
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    logger,
	}
}

func (c *GraphClient) SendText(ctx context.Context, recipient, text string) error {
	return c.sendMessage(ctx, recipient, outMessage{Text: text})
}

func (c *GraphClient) SendButtons(ctx context.Context, recipient, text string, buttons []domain.Button) error {
	return c.sendMessage(ctx, recipient, outMessage{
		Attachment: &outAttachment{
			Type: "template",
			Payload: templatePayload{
				TemplateType: "button",
				Text:         text,
				Buttons:      buttons,
			},
		},
	})
}

func (c *GraphClient) SendQuickReplies(ctx context.Context, recipient, text string, options []domain.QuickReplyOption) error {
	return c.sendMessage(ctx, recipient, outMessage{Text: text, QuickReplies: options})
}

func (c *GraphClient) SendImage(ctx context.Context, recipient, imageURL string) error {
	return c.sendMessage(ctx, recipient, outMessage{
		Attachment: &outAttachment{
			Type:    "image",
			Payload: mediaPayload{URL: imageURL},
		},
	})
}

func (c *GraphClient) SendTypingOn(ctx context.Context, recipient string) error {
	return c.callSendAPI(ctx, sendRequest{Recipient: participant{ID: recipient}, SenderAction: "typing_on"})
}

func (c *GraphClient) SendTypingOff(ctx context.Context, recipient string) error {
	return c.callSendAPI(ctx, sendRequest{Recipient: participant{ID: recipient}, SenderAction: "typing_off"})
}

// HandleMessage renderiza un fragmento suelto del NLU.
func (c *GraphClient) HandleMessage(ctx context.Context, fragment domain.Fragment, recipient string) error {
	switch fragment.Type {
	case domain.FragmentText:
		if fragment.Text == "" {
			return nil
		}
		return c.SendText(ctx, recipient, fragment.Text)
	case domain.FragmentQuickReplies:
		if fragment.QuickReplies == nil {
			return nil
		}
		return c.SendQuickReplies(ctx, recipient, fragment.QuickReplies.Title, domain.TextOptions(fragment.QuickReplies.Replies...))
	case domain.FragmentImage:
		return c.SendImage(ctx, recipient, fragment.ImageURL)
	case domain.FragmentCustomPayload:
		raw, ok := fragment.Payload["facebook"]
		if !ok {
			return nil
		}
		return c.callSendAPI(ctx, sendRequest{Recipient: participant{ID: recipient}, Message: raw})
	case domain.FragmentCard:
		return c.HandleCardBatch(ctx, []domain.Fragment{fragment}, recipient)
	default:
		c.logger.Warn("unsupported fragment type", zap.Int("type", int(fragment.Type)))
		return nil
	}
}

// HandleCardBatch envia una tarjeta por elemento en un unico generic template.
func (c *GraphClient) HandleCardBatch(ctx context.Context, cards []domain.Fragment, recipient string) error {
	elements := cardElements(cards)
	if len(elements) == 0 {
		return nil
	}
	return c.sendMessage(ctx, recipient, outMessage{
		Attachment: &outAttachment{
			Type: "template",
			Payload: templatePayload{
				TemplateType: "generic",
				Elements:     elements,
			},
		},
	})
}

func (c *GraphClient) HandleAttachments(ctx context.Context, _ []domain.Attachment, sender string) error {
	return c.SendText(ctx, sender, attachmentAck)
}

// FetchProfile consulta el perfil publico del usuario.
func (c *GraphClient) FetchProfile(ctx context.Context, userID string) (domain.UserProfile, error) {
	q := url.Values{}
	q.Set("fields", "first_name,last_name,profile_pic,locale,timezone,gender")
	q.Set("access_token", c.pageToken)
	endpoint := c.baseURL + "/" + url.PathEscape(userID) + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("create request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return domain.UserProfile{}, err
	}

	var profile domain.UserProfile
	if err := json.Unmarshal(body, &profile); err != nil {
		return domain.UserProfile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	profile.UserID = userID
	return profile, nil
}

func (c *GraphClient) sendMessage(ctx context.Context, recipient string, msg outMessage) error {
	return c.callSendAPI(ctx, sendRequest{Recipient: participant{ID: recipient}, Message: msg})
}

func (c *GraphClient) callSendAPI(ctx context.Context, payload sendRequest) error {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	endpoint := c.baseURL + "/me/messages?access_token=" + url.QueryEscape(c.pageToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, err := c.do(req)
	if err != nil {
		return err
	}

	var sr sendResponse
	if err := json.Unmarshal(respBody, &sr); err == nil && sr.MessageID != "" {
		c.logger.Debug("message sent",
			zap.String("recipient", sr.RecipientID),
			zap.String("message_id", sr.MessageID),
		)
	}
	return nil
}

func (c *GraphClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var ge graphError
		if json.Unmarshal(respBody, &ge) == nil && ge.Error != nil && ge.Error.Message != "" {
			return nil, fmt.Errorf("graph api error: %s", ge.Error.Message)
		}
		return nil, fmt.Errorf("graph http error: status=%d", resp.StatusCode)
	}
	return respBody, nil
}

func cardElements(cards []domain.Fragment) []genericElement {
	elements := make([]genericElement, 0, len(cards))
	for _, f := range cards {
		if f.Card == nil {
			continue
		}
		el := genericElement{
			Title:    f.Card.Title,
			Subtitle: f.Card.Subtitle,
			ImageURL: f.Card.ImageURL,
		}
		for _, b := range f.Card.Buttons {
			if strings.HasPrefix(b.Postback, "http") {
				el.Buttons = append(el.Buttons, domain.Button{Type: domain.ButtonWebURL, Title: b.Text, URL: b.Postback})
			} else {
				el.Buttons = append(el.Buttons, domain.Button{Type: domain.ButtonPostback, Title: b.Text, Payload: b.Postback})
			}
		}
		elements = append(elements, el)
	}
	return elements
}

type participant struct {
	ID string `json:"id"`
}

type sendRequest struct {
	Recipient    participant `json:"recipient"`
	Message      any         `json:"message,omitempty"`
	SenderAction string      `json:"sender_action,omitempty"`
}

type outMessage struct {
	Text         string                    `json:"text,omitempty"`
	QuickReplies []domain.QuickReplyOption `json:"quick_replies,omitempty"`
	Attachment   *outAttachment            `json:"attachment,omitempty"`
}

type outAttachment struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type templatePayload struct {
	TemplateType string           `json:"template_type"`
	Text         string           `json:"text,omitempty"`
	Buttons      []domain.Button  `json:"buttons,omitempty"`
	Elements     []genericElement `json:"elements,omitempty"`
}

type mediaPayload struct {
	URL string `json:"url"`
}

type genericElement struct {
	Title    string          `json:"title"`
	Subtitle string          `json:"subtitle,omitempty"`
	ImageURL string          `json:"image_url,omitempty"`
	Buttons  []domain.Button `json:"buttons,omitempty"`
}

type sendResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
}

type graphError struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error,omitempty"`
}
