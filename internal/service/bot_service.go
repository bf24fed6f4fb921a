package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"chatbot-router/internal/domain"
	"chatbot-router/internal/messenger"
	"chatbot-router/internal/nlu"
)

const (
	PayloadGetStarted = "GET_STARTED"
	PayloadJobApply   = "JOB_APPLY"
	PayloadChat       = "CHAT"

	jobApplyQuery  = "job openings"
	chatReply      = "I love chatting too. Do you have any other questions for me?"
	optInReply     = "Authentication successful"
	greetingFormat = "Welcome %s! I can answer frequently asked questions for you and I perform job interviews. What can I help you with?"
)

// BotService orquesta un evento del webhook de punta a punta.
type BotService struct {
	client      messenger.Client
	nlu         nlu.Client
	registry    *SessionRegistry
	interpreter *ResponseInterpreter
	logger      *zap.Logger
}

func NewBotService(
	client messenger.Client,
	nluClient nlu.Client,
	registry *SessionRegistry,
	interpreter *ResponseInterpreter,
	logger *zap.Logger,
) *BotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BotService{
		client:      client,
		nlu:         nluClient,
		registry:    registry,
		interpreter: interpreter,
		logger:      logger,
	}
}

// HandleEvent clasifica el evento y ejecuta su rama. Devuelve el tipo detectado.
func (s *BotService) HandleEvent(ctx context.Context, ev domain.InboundEvent) domain.EventKind {
	kind := ClassifyEvent(ev)
	sender := ev.Sender.ID
	log := s.logger.With(zap.String("sender", sender), zap.String("kind", kind.String()))

	if s.registry != nil && needsSession(ev) {
		s.registry.Ensure(ctx, sender)
	}

	switch kind {
	case domain.EventEcho:
		log.Debug("echo received", zap.String("mid", ev.Message.MID), zap.Int64("app_id", ev.Message.AppID))
	case domain.EventQuickReply:
		s.queryNLU(ctx, sender, ev.Message.QuickReply.Payload)
	case domain.EventAttachment:
		if err := s.client.HandleAttachments(ctx, ev.Message.Attachments, sender); err != nil {
			log.Warn("attachment ack failed", zap.Error(err))
		}
	case domain.EventText:
		s.queryNLU(ctx, sender, ev.Message.Text)
	case domain.EventPostback:
		s.handlePostback(ctx, sender, ev.Postback.Payload)
	case domain.EventOptIn:
		log.Info("optin received", zap.String("ref", ev.OptIn.Ref))
		if err := s.client.SendText(ctx, sender, optInReply); err != nil {
			log.Warn("optin reply failed", zap.Error(err))
		}
	case domain.EventDelivery:
		log.Debug("delivery confirmed", zap.Int("mids", len(ev.Delivery.MIDs)), zap.Int64("watermark", ev.Delivery.Watermark))
	case domain.EventRead:
		log.Debug("message read", zap.Int64("watermark", ev.Read.Watermark))
	case domain.EventAccountLink:
		log.Info("account linking", zap.String("status", ev.AccountLinking.Status))
	default:
		log.Debug("event ignored")
	}
	return kind
}

// needsSession vale para todo mensaje (incluso echo o sin contenido) y para postbacks.
func needsSession(ev domain.InboundEvent) bool {
	return ev.OptIn == nil && (ev.Message != nil || ev.Postback != nil)
}

func (s *BotService) handlePostback(ctx context.Context, sender, payload string) {
	var err error
	switch payload {
	case PayloadGetStarted:
		err = s.client.SendText(ctx, sender, s.greeting(ctx, sender))
	case PayloadJobApply:
		s.queryNLU(ctx, sender, jobApplyQuery)
	case PayloadChat:
		err = s.client.SendText(ctx, sender, chatReply)
	default:
		err = s.client.SendText(ctx, sender, FallbackText)
	}
	if err != nil {
		s.logger.Warn("postback reply failed", zap.Error(err), zap.String("sender", sender), zap.String("payload", payload))
	}
}

func (s *BotService) greeting(ctx context.Context, sender string) string {
	name := ""
	if s.registry != nil {
		if p, ok := s.registry.Profile(ctx, sender); ok {
			name = strings.TrimSpace(p.FirstName)
		}
	}
	if name == "" {
		return strings.Replace(greetingFormat, " %s", "", 1)
	}
	return strings.Replace(greetingFormat, "%s", name, 1)
}

// queryNLU manda el texto al NLU con el token de sesion del usuario y enruta la respuesta.
func (s *BotService) queryNLU(ctx context.Context, sender, text string) {
	log := s.logger.With(zap.String("sender", sender))

	if err := s.client.SendTypingOn(ctx, sender); err != nil {
		log.Warn("typing on failed", zap.Error(err))
	}

	sessionID := sender
	if s.registry != nil {
		token, err := s.registry.SessionToken(ctx, sender)
		if err != nil {
			log.Warn("session token unavailable", zap.Error(err))
		} else {
			sessionID = token
		}
	}

	res, err := s.nlu.Query(ctx, sessionID, text)

	if offErr := s.client.SendTypingOff(ctx, sender); offErr != nil {
		log.Warn("typing off failed", zap.Error(offErr))
	}

	if err != nil {
		log.Warn("nlu query failed", zap.Error(err))
		if sendErr := s.client.SendText(ctx, sender, FallbackText); sendErr != nil {
			log.Warn("fallback reply failed", zap.Error(sendErr))
		}
		return
	}
	s.interpreter.Interpret(ctx, sender, res)
}
