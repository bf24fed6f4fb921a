package nlu

import (
	"encoding/json"
	"strconv"

	"go.uber.org/zap"

	"chatbot-router/internal/domain"
)

type queryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"sessionId"`
	Lang      string `json:"lang"`
}

type queryResponse struct {
	ID        string       `json:"id"`
	Result    *queryResult `json:"result"`
	Status    *queryStatus `json:"status"`
	SessionID string       `json:"sessionId"`
}

type queryStatus struct {
	Code         int    `json:"code"`
	ErrorType    string `json:"errorType"`
	ErrorDetails string `json:"errorDetails"`
}

type queryResult struct {
	ResolvedQuery string          `json:"resolvedQuery"`
	Action        string          `json:"action"`
	Parameters    map[string]any  `json:"parameters"`
	Contexts      []wireContext   `json:"contexts"`
	Fulfillment   wireFulfillment `json:"fulfillment"`
}

type wireContext struct {
	Name       string         `json:"name"`
	Parameters map[string]any `json:"parameters"`
	Lifespan   int            `json:"lifespan"`
}

type wireFulfillment struct {
	Speech   string                     `json:"speech"`
	Messages []wireMessage              `json:"messages"`
	Data     map[string]json.RawMessage `json:"data"`
}

type wireMessage struct {
	Type     int             `json:"type"`
	Platform string          `json:"platform,omitempty"`
	Speech   json.RawMessage `json:"speech,omitempty"`
	Title    string          `json:"title,omitempty"`
	Subtitle string          `json:"subtitle,omitempty"`
	ImageURL string          `json:"imageUrl,omitempty"`
	Buttons  []wireButton    `json:"buttons,omitempty"`
	Replies  []string        `json:"replies,omitempty"`
	Payload  map[string]any  `json:"payload,omitempty"`
}

type wireButton struct {
	Text     string `json:"text"`
	Postback string `json:"postback"`
}

// toDomain valida la respuesta cruda y la convierte al resultado tipado.
func (c *HTTPClient) toDomain(r *queryResult) domain.NLUResult {
	out := domain.NLUResult{
		FulfillmentText: r.Fulfillment.Speech,
		Action:          r.Action,
		Parameters:      normalizeParams(r.Parameters),
		ResolvedQuery:   r.ResolvedQuery,
	}

	if raw, ok := r.Fulfillment.Data["facebook"]; ok && len(raw) > 0 && string(raw) != "null" {
		out.FulfillmentData = domain.FulfillmentData{Facebook: rawText(raw), HasFacebook: true}
	}

	for _, wc := range r.Contexts {
		out.Contexts = append(out.Contexts, domain.ContextFrame{
			Name:       wc.Name,
			Lifespan:   wc.Lifespan,
			Parameters: normalizeParams(wc.Parameters),
		})
	}

	for _, m := range r.Fulfillment.Messages {
		f, ok := toFragment(m)
		if !ok {
			c.logger.Warn("dropping unsupported nlu message", zap.Int("type", m.Type))
			continue
		}
		out.FulfillmentMessages = append(out.FulfillmentMessages, f)
	}
	return out
}

func toFragment(m wireMessage) (domain.Fragment, bool) {
	switch domain.FragmentType(m.Type) {
	case domain.FragmentText:
		return domain.Fragment{Type: domain.FragmentText, Text: speechText(m.Speech)}, true
	case domain.FragmentCard:
		card := &domain.CardFragment{Title: m.Title, Subtitle: m.Subtitle, ImageURL: m.ImageURL}
		for _, b := range m.Buttons {
			card.Buttons = append(card.Buttons, domain.CardButton{Text: b.Text, Postback: b.Postback})
		}
		return domain.Fragment{Type: domain.FragmentCard, Card: card}, true
	case domain.FragmentQuickReplies:
		return domain.Fragment{
			Type:         domain.FragmentQuickReplies,
			QuickReplies: &domain.QuickRepliesFragment{Title: m.Title, Replies: m.Replies},
		}, true
	case domain.FragmentImage:
		return domain.Fragment{Type: domain.FragmentImage, ImageURL: m.ImageURL}, true
	case domain.FragmentCustomPayload:
		return domain.Fragment{Type: domain.FragmentCustomPayload, Payload: m.Payload}, true
	default:
		return domain.Fragment{}, false
	}
}

// speechText acepta speech como string o como lista de variantes (toma la primera).
func speechText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil && len(list) > 0 {
		return list[0]
	}
	return ""
}

func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func normalizeParams(in map[string]any) domain.Params {
	if in == nil {
		return nil
	}
	out := make(domain.Params, len(in))
	for k, v := range in {
		out[k] = paramString(v)
	}
	return out
}

func paramString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	case []any:
		if len(val) == 0 {
			return ""
		}
	case map[string]any:
		if len(val) == 0 {
			return ""
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
