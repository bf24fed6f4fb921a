package service

import (
	"context"

	"go.uber.org/zap"

	"chatbot-router/internal/domain"
	"chatbot-router/internal/messenger"
)

// FallbackText se envia cuando el NLU no devuelve nada que mostrar.
const FallbackText = "I'm not sure what you want. Can you be more specific?"

// Route indica que rama eligio el interprete.
type Route int

const (
	// RouteSequence: mensajes enriquecidos enviados en orden.
	RouteSequence Route = iota
	// RouteFallback: respuesta vacia, se manda FallbackText.
	RouteFallback
	// RouteAction: la accion la resuelve el ActionDispatcher.
	RouteAction
	// RoutePlatformOverride: payload especifico de Facebook.
	RoutePlatformOverride
	// RouteText: texto plano del fulfillment.
	RouteText
)

func (r Route) String() string {
	switch r {
	case RouteSequence:
		return "sequence"
	case RouteFallback:
		return "fallback"
	case RouteAction:
		return "action"
	case RoutePlatformOverride:
		return "platform_override"
	default:
		return "text"
	}
}

// ResponseInterpreter decide como mostrar al usuario un resultado del NLU.
type ResponseInterpreter struct {
	client     messenger.Client
	sequencer  *ReplySequencer
	dispatcher *ActionDispatcher
	logger     *zap.Logger
}

func NewResponseInterpreter(client messenger.Client, sequencer *ReplySequencer, dispatcher *ActionDispatcher, logger *zap.Logger) *ResponseInterpreter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResponseInterpreter{
		client:     client,
		sequencer:  sequencer,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Interpret aplica la primera regla que matchea y devuelve cual fue.
func (i *ResponseInterpreter) Interpret(ctx context.Context, sender string, res domain.NLUResult) Route {
	route := selectRoute(res)
	i.logger.Debug("nlu result routed",
		zap.String("sender", sender),
		zap.String("route", route.String()),
		zap.String("action", res.Action),
	)

	var err error
	switch route {
	case RouteSequence:
		i.sequencer.Sequence(sender, res.FulfillmentMessages)
	case RouteFallback:
		err = i.client.SendText(ctx, sender, FallbackText)
	case RouteAction:
		i.dispatcher.Dispatch(ctx, ActionRequest{
			Sender:   sender,
			Action:   res.Action,
			Text:     res.FulfillmentText,
			Contexts: res.Contexts,
			Params:   res.Parameters,
		})
	case RoutePlatformOverride:
		if sendErr := i.client.SendText(ctx, sender, res.FulfillmentData.Facebook); sendErr != nil {
			err = i.client.SendText(ctx, sender, sendErr.Error())
		}
	default:
		err = i.client.SendText(ctx, sender, res.FulfillmentText)
	}
	if err != nil {
		i.logger.Warn("reply send failed", zap.Error(err), zap.String("sender", sender), zap.String("route", route.String()))
	}
	return route
}

func selectRoute(res domain.NLUResult) Route {
	msgs := res.FulfillmentMessages
	switch {
	case len(msgs) > 1 || (len(msgs) == 1 && msgs[0].Type != domain.FragmentText):
		return RouteSequence
	case res.FulfillmentText == "" && res.Action == "":
		return RouteFallback
	case res.Action != "":
		return RouteAction
	case res.FulfillmentData.HasFacebook:
		return RoutePlatformOverride
	default:
		return RouteText
	}
}
