package service

import "chatbot-router/internal/domain"

// ClassifyEvent decide a que rama va un evento del webhook. El orden de los
// campos de nivel superior sigue al de la plataforma; dentro de un mensaje,
// echo gana sobre quick reply, que gana sobre adjuntos, que gana sobre texto.
func ClassifyEvent(ev domain.InboundEvent) domain.EventKind {
	switch {
	case ev.OptIn != nil:
		return domain.EventOptIn
	case ev.Message != nil:
		return classifyMessage(ev.Message)
	case ev.Delivery != nil:
		return domain.EventDelivery
	case ev.Postback != nil:
		return domain.EventPostback
	case ev.Read != nil:
		return domain.EventRead
	case ev.AccountLinking != nil:
		return domain.EventAccountLink
	default:
		return domain.EventUnknown
	}
}

func classifyMessage(m *domain.InboundMessage) domain.EventKind {
	switch {
	case m.IsEcho:
		return domain.EventEcho
	case m.QuickReply != nil:
		return domain.EventQuickReply
	case len(m.Attachments) > 0:
		return domain.EventAttachment
	case m.Text != "":
		return domain.EventText
	default:
		return domain.EventUnknown
	}
}
