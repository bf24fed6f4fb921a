package domain

// EventKind clasifica un evento entrante del webhook.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventEcho
	EventQuickReply
	EventPostback
	EventAttachment
	EventText
	EventOptIn
	EventDelivery
	EventRead
	EventAccountLink
)

func (k EventKind) String() string {
	switch k {
	case EventEcho:
		return "echo"
	case EventQuickReply:
		return "quick_reply"
	case EventPostback:
		return "postback"
	case EventAttachment:
		return "attachment"
	case EventText:
		return "text"
	case EventOptIn:
		return "optin"
	case EventDelivery:
		return "delivery"
	case EventRead:
		return "read"
	case EventAccountLink:
		return "account_linking"
	default:
		return "unknown"
	}
}

// InboundEvent es un evento de mensajeria tal como llega en entry[].messaging[].
type InboundEvent struct {
	Sender         Participant     `json:"sender"`
	Recipient      Participant     `json:"recipient"`
	Timestamp      int64           `json:"timestamp"`
	Message        *InboundMessage `json:"message,omitempty"`
	Postback       *Postback       `json:"postback,omitempty"`
	OptIn          *OptIn          `json:"optin,omitempty"`
	Delivery       *Delivery       `json:"delivery,omitempty"`
	Read           *Read           `json:"read,omitempty"`
	AccountLinking *AccountLinking `json:"account_linking,omitempty"`
}

type Participant struct {
	ID string `json:"id"`
}

type InboundMessage struct {
	MID         string       `json:"mid"`
	Text        string       `json:"text,omitempty"`
	IsEcho      bool         `json:"is_echo,omitempty"`
	AppID       int64        `json:"app_id,omitempty"`
	Metadata    string       `json:"metadata,omitempty"`
	QuickReply  *QuickReply  `json:"quick_reply,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// QuickReply es el payload que devuelve la plataforma al tocar una respuesta rapida.
type QuickReply struct {
	Payload string `json:"payload"`
}

type Attachment struct {
	Type    string            `json:"type"`
	Payload AttachmentPayload `json:"payload"`
}

type AttachmentPayload struct {
	URL string `json:"url,omitempty"`
}

type Postback struct {
	Title   string `json:"title,omitempty"`
	Payload string `json:"payload"`
}

type OptIn struct {
	Ref string `json:"ref"`
}

type Delivery struct {
	MIDs      []string `json:"mids,omitempty"`
	Watermark int64    `json:"watermark"`
}

type Read struct {
	Watermark int64 `json:"watermark"`
}

type AccountLinking struct {
	Status            string `json:"status"`
	AuthorizationCode string `json:"authorization_code,omitempty"`
}

// WebhookBatch es el cuerpo completo de un POST al webhook.
type WebhookBatch struct {
	Object string         `json:"object"`
	Entry  []WebhookEntry `json:"entry"`
}

type WebhookEntry struct {
	ID        string         `json:"id"`
	Time      int64          `json:"time"`
	Messaging []InboundEvent `json:"messaging"`
}
