package make_opportunity_from_lead_form

import (
	"context"

	leadForm "github.com/m04kA/SMC-CRM/internal/usecase/make_opportunity_from_lead_form"
)

type LeadFormUseCase interface {
	Execute(ctx context.Context, req leadForm.Request) (*leadForm.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
