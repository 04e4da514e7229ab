package jobs

import "context"

// AppointmentService задачи по встречам
type AppointmentService interface {
	AutoMarkMissed(ctx context.Context) (int64, error)
	SendReminders(ctx context.Context) (int, error)
}

// OpportunityService задачи по возможностям
type OpportunityService interface {
	AutoMarkLost(ctx context.Context) (int, error)
}

// Metrics счётчик запусков задач
type Metrics interface {
	ObserveJob(job string, err error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
