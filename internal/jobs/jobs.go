package jobs

import (
	"context"
	"errors"
	"fmt"
)

// Имена задач
const (
	JobAppointmentReminders = "appointment_reminders"
	JobAutoMarkLost         = "auto_mark_opportunity_as_lost"
	JobAutoMarkMissed       = "auto_mark_missed"
)

// ErrUnknownJob возвращается при запуске незарегистрированной задачи
var ErrUnknownJob = errors.New("jobs: unknown job")

// Period периодичность задачи
type Period int

const (
	// EveryTick задача запускается на каждом тике
	EveryTick Period = iota
	// Daily задача запускается один раз в день
	Daily
)

// Job задача планировщика
type Job struct {
	Name   string
	Period Period
	Run    func(ctx context.Context) error
}

// Default задачи сервиса
func Default(appointmentService AppointmentService, opportunityService OpportunityService) []Job {
	return []Job{
		{
			Name:   JobAppointmentReminders,
			Period: EveryTick,
			Run: func(ctx context.Context) error {
				_, err := appointmentService.SendReminders(ctx)
				return err
			},
		},
		{
			Name:   JobAutoMarkLost,
			Period: Daily,
			Run: func(ctx context.Context) error {
				_, err := opportunityService.AutoMarkLost(ctx)
				return err
			},
		},
		{
			Name:   JobAutoMarkMissed,
			Period: Daily,
			Run: func(ctx context.Context) error {
				_, err := appointmentService.AutoMarkMissed(ctx)
				return err
			},
		},
	}
}

func find(jobs []Job, name string) (Job, error) {
	for _, j := range jobs {
		if j.Name == name {
			return j, nil
		}
	}
	return Job{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
}
