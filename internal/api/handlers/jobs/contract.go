package jobs

import "context"

type JobRunner interface {
	RunJob(ctx context.Context, name string) error
	Names() []string
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
