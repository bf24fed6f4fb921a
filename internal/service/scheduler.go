package service

import "time"

// Task es el handle de un envio diferido.
type Task interface {
	// Cancel detiene el envio si todavia no se disparo y devuelve true en ese caso.
	Cancel() bool
}

// Scheduler agenda funciones para ejecutarse despues de un delay sin bloquear al llamador.
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Task
}

type timerScheduler struct{}

// NewTimerScheduler devuelve un Scheduler basado en time.AfterFunc.
func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) Schedule(delay time.Duration, fn func()) Task {
	if delay < 0 {
		delay = 0
	}
	return &timerTask{timer: time.AfterFunc(delay, fn)}
}

type timerTask struct {
	timer *time.Timer
}

func (t *timerTask) Cancel() bool {
	return t.timer.Stop()
}
