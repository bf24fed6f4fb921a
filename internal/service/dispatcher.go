package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"chatbot-router/internal/domain"
	"chatbot-router/internal/messenger"
	"chatbot-router/internal/weather"
)

const (
	ActionGetCurrentWeather   = "get-current-weather"
	ActionFAQDelivery         = "faq-delivery"
	ActionDetailedApplication = "detailed-application"
	ActionJobEnquiry          = "job-enquiry"
)

const (
	ContextJobApplication        = "job_application"
	ContextJobApplicationDetails = "job-application-details_dialog_context"
)

const (
	ParamCity              = "geo-city"
	ParamPhoneNumber       = "phone-number"
	ParamUserName          = "user-name"
	ParamPreviousJob       = "previous-job"
	ParamYearsOfExperience = "years-of-experience"
	ParamJobVacancy        = "job-vacancy"
)

const (
	DefaultFAQFollowupDelay = 3000 * time.Millisecond
	faqFollowupText         = "What would you like to do next?"
	persistTimeout          = 15 * time.Second
)

var (
	experienceOptions = []string{"Less than 1 year", "Less than 10 years", "More than 10 years"}
	enquiryOptions    = []string{"Accountant", "Sales", "Not interested"}
	faqButtons        = []domain.Button{
		{Type: domain.ButtonWebURL, Title: "Track my order", URL: "https://www.myapple.com/track_order"},
		{Type: domain.ButtonPhoneNumber, Title: "Call us", Payload: "+16505551234"},
		{Type: domain.ButtonPostback, Title: "Keep on Chatting", Payload: PayloadChat},
	}
)

// ActionRequest agrupa lo que el NLU devolvio para una accion.
type ActionRequest struct {
	Sender   string
	Action   string
	Text     string
	Contexts []domain.ContextFrame
	Params   domain.Params
}

// ActionHandler resuelve una accion concreta.
type ActionHandler func(ctx context.Context, req ActionRequest) error

// JobApplicationCreator persiste una postulacion completa.
type JobApplicationCreator interface {
	Create(ctx context.Context, phone, name, previousJob, years, vacancy string) (domain.JobApplication, error)
}

// ActionDispatcher mapea nombres de accion del NLU a handlers.
type ActionDispatcher struct {
	client       messenger.Client
	weather      weather.Client
	applications JobApplicationCreator
	scheduler    Scheduler
	faqDelay     time.Duration
	logger       *zap.Logger
	handlers     map[string]ActionHandler
	wg           sync.WaitGroup
}

func NewActionDispatcher(
	client messenger.Client,
	weatherClient weather.Client,
	applications JobApplicationCreator,
	scheduler Scheduler,
	faqDelay time.Duration,
	logger *zap.Logger,
) *ActionDispatcher {
	if scheduler == nil {
		scheduler = NewTimerScheduler()
	}
	if faqDelay <= 0 {
		faqDelay = DefaultFAQFollowupDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	d := &ActionDispatcher{
		client:       client,
		weather:      weatherClient,
		applications: applications,
		scheduler:    scheduler,
		faqDelay:     faqDelay,
		logger:       logger,
		handlers:     make(map[string]ActionHandler),
	}
	d.Register(ActionGetCurrentWeather, d.handleWeather)
	d.Register(ActionFAQDelivery, d.handleFAQDelivery)
	d.Register(ActionDetailedApplication, d.handleDetailedApplication)
	d.Register(ActionJobEnquiry, d.handleJobEnquiry)
	return d
}

// Register agrega o reemplaza el handler de una accion.
func (d *ActionDispatcher) Register(action string, h ActionHandler) {
	d.handlers[action] = h
}

// Dispatch ejecuta el handler de la accion; si no hay uno, devuelve el texto tal cual.
func (d *ActionDispatcher) Dispatch(ctx context.Context, req ActionRequest) {
	h, ok := d.handlers[req.Action]
	if !ok {
		h = d.handleDefault
	}
	if err := h(ctx, req); err != nil {
		d.logger.Warn("action handling failed",
			zap.Error(err),
			zap.String("action", req.Action),
			zap.String("sender", req.Sender),
		)
	}
}

// Wait bloquea hasta que terminen las postulaciones que se estan guardando.
func (d *ActionDispatcher) Wait() {
	d.wg.Wait()
}

func (d *ActionDispatcher) handleDefault(ctx context.Context, req ActionRequest) error {
	return d.client.SendText(ctx, req.Sender, req.Text)
}

func (d *ActionDispatcher) handleWeather(ctx context.Context, req ActionRequest) error {
	city := req.Params.Value(ParamCity)
	if city == "" || d.weather == nil {
		return d.client.SendText(ctx, req.Sender, req.Text)
	}

	forecast, err := d.weather.Current(ctx, city)
	if err != nil {
		d.logger.Warn("weather lookup failed", zap.Error(err), zap.String("city", city))
		forecast = nil
	}
	if forecast == nil {
		return d.client.SendText(ctx, req.Sender, fmt.Sprintf("No weather forecast available for %s", city))
	}
	return d.client.SendText(ctx, req.Sender, fmt.Sprintf("%s %s", req.Text, forecast.Description))
}

func (d *ActionDispatcher) handleFAQDelivery(ctx context.Context, req ActionRequest) error {
	if err := d.client.SendText(ctx, req.Sender, req.Text); err != nil {
		d.logger.Warn("faq text failed", zap.Error(err), zap.String("sender", req.Sender))
	}
	if err := d.client.SendTypingOn(ctx, req.Sender); err != nil {
		d.logger.Warn("typing on failed", zap.Error(err), zap.String("sender", req.Sender))
	}

	sender := req.Sender
	d.scheduler.Schedule(d.faqDelay, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		if err := d.client.SendButtons(ctx, sender, faqFollowupText, faqButtons); err != nil {
			d.logger.Warn("faq follow-up failed", zap.Error(err), zap.String("sender", sender))
		}
	})
	return nil
}

func (d *ActionDispatcher) handleDetailedApplication(ctx context.Context, req ActionRequest) error {
	// sin contexto de postulacion no se responde nada
	if len(req.Contexts) == 0 || !isJobApplicationContext(req.Contexts[0].Name) || req.Contexts[0].Parameters == nil {
		d.logger.Debug("detailed application without job context", zap.String("sender", req.Sender))
		return nil
	}

	params := req.Contexts[0].Parameters
	switch {
	case params.Has(ParamUserName) && params.Has(ParamPreviousJob) && !params.Has(ParamPhoneNumber) && !params.Has(ParamYearsOfExperience):
		return d.client.SendQuickReplies(ctx, req.Sender, req.Text, domain.TextOptions(experienceOptions...))
	case allSet(params, ParamPhoneNumber, ParamUserName, ParamPreviousJob, ParamYearsOfExperience, ParamJobVacancy):
		if d.applications != nil {
			d.wg.Add(1)
			go func(sender, phone, name, previousJob, years, vacancy string) {
				defer d.wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
				defer cancel()
				if _, err := d.applications.Create(ctx, phone, name, previousJob, years, vacancy); err != nil {
					d.logger.Warn("job application not stored", zap.Error(err), zap.String("sender", sender))
				}
			}(req.Sender,
				params.Value(ParamPhoneNumber),
				params.Value(ParamUserName),
				params.Value(ParamPreviousJob),
				params.Value(ParamYearsOfExperience),
				params.Value(ParamJobVacancy),
			)
		}
		return d.client.SendText(ctx, req.Sender, req.Text)
	default:
		return d.client.SendText(ctx, req.Sender, req.Text)
	}
}

func (d *ActionDispatcher) handleJobEnquiry(ctx context.Context, req ActionRequest) error {
	return d.client.SendQuickReplies(ctx, req.Sender, req.Text, domain.TextOptions(enquiryOptions...))
}

func allSet(params domain.Params, names ...string) bool {
	for _, n := range names {
		if !params.Has(n) {
			return false
		}
	}
	return true
}

func isJobApplicationContext(name string) bool {
	return name == ContextJobApplication || name == ContextJobApplicationDetails
}
