package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"chatbot-router/internal/domain"
	"chatbot-router/internal/messenger"
)

const (
	DefaultReplyInterval = 1100 * time.Millisecond
	sendTimeout          = 10 * time.Second
)

// PlannedSend es un envio agendado: un fragmento suelto o un lote de tarjetas.
type PlannedSend struct {
	Delay     time.Duration
	Fragments []domain.Fragment
	CardBatch bool
}

// ReplySequencer escalona los fragmentos de una respuesta multiparte.
type ReplySequencer struct {
	client    messenger.Client
	scheduler Scheduler
	interval  time.Duration
	logger    *zap.Logger
}

func NewReplySequencer(client messenger.Client, scheduler Scheduler, interval time.Duration, logger *zap.Logger) *ReplySequencer {
	if interval <= 0 {
		interval = DefaultReplyInterval
	}
	if scheduler == nil {
		scheduler = NewTimerScheduler()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReplySequencer{
		client:    client,
		scheduler: scheduler,
		interval:  interval,
		logger:    logger,
	}
}

// PlanReplies recorre la secuencia una vez. Cada fragmento que no es tarjeta sale
// en index*interval; cada corrida de tarjetas consecutivas sale como un solo
// envio en runStart*interval, asi que el orden original se mantiene y dos envios
// seguidos quedan separados al menos un intervalo.
func PlanReplies(fragments []domain.Fragment, interval time.Duration) []PlannedSend {
	var (
		plan     []PlannedSend
		batch    []domain.Fragment
		runStart = -1
	)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		plan = append(plan, PlannedSend{
			Delay:     time.Duration(runStart) * interval,
			Fragments: batch,
			CardBatch: true,
		})
		batch = nil
		runStart = -1
	}

	for i, f := range fragments {
		if f.Type == domain.FragmentCard {
			if runStart < 0 {
				runStart = i
			}
			batch = append(batch, f)
			continue
		}
		flush()
		plan = append(plan, PlannedSend{
			Delay:     time.Duration(i) * interval,
			Fragments: []domain.Fragment{f},
		})
	}
	flush()
	return plan
}

// Sequence agenda todos los envios y devuelve sus handles. No espera a que se disparen.
func (s *ReplySequencer) Sequence(recipient string, fragments []domain.Fragment) []Task {
	plan := PlanReplies(fragments, s.interval)
	tasks := make([]Task, 0, len(plan))
	for _, p := range plan {
		p := p
		tasks = append(tasks, s.scheduler.Schedule(p.Delay, func() {
			s.send(recipient, p)
		}))
	}
	return tasks
}

func (s *ReplySequencer) send(recipient string, p PlannedSend) {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	var err error
	if p.CardBatch {
		err = s.client.HandleCardBatch(ctx, p.Fragments, recipient)
	} else {
		err = s.client.HandleMessage(ctx, p.Fragments[0], recipient)
	}
	if err != nil {
		s.logger.Warn("sequenced send failed",
			zap.Error(err),
			zap.String("recipient", recipient),
			zap.Bool("card_batch", p.CardBatch),
		)
	}
}
