package customer_feedback

import (
	"context"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/feedback"
)

type FeedbackService interface {
	Submit(ctx context.Context, req feedback.SubmitRequest) (*feedback.SubmitResult, error)
	Get(ctx context.Context, name string) (*domain.CustomerFeedback, error)
	GetByReference(ctx context.Context, doctype, name string) (*domain.CustomerFeedback, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
