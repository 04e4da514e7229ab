package opportunities

import (
	"context"
	"time"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/opportunities"
)

type OpportunityService interface {
	Create(ctx context.Context, opp *domain.Opportunity, opts opportunities.SaveOptions) (*domain.Opportunity, error)
	Update(ctx context.Context, opp *domain.Opportunity, opts opportunities.SaveOptions) (*domain.Opportunity, error)
	Get(ctx context.Context, name string) (*opportunities.Details, error)
	Delete(ctx context.Context, name string) error
	CustomerDetails(ctx context.Context, partyType, partyName string) (*domain.CustomerDetails, error)
	SetIsLost(ctx context.Context, name string, isLost bool, reasons []string, detailedReason string, opts opportunities.SaveOptions) (*domain.Opportunity, error)
	SetMultipleStatus(ctx context.Context, names []string, status domain.OpportunityStatus, opts opportunities.SaveOptions) error
	ScheduleFollowUp(ctx context.Context, name string, date *time.Time, toDiscuss string, opts opportunities.SaveOptions) (*domain.Opportunity, error)
	SubmitCommunication(ctx context.Context, req opportunities.SubmitCommunicationRequest, opts opportunities.SaveOptions) (*domain.Opportunity, error)
	SubmitCommunicationWithAction(ctx context.Context, req opportunities.SubmitWithActionRequest, opts opportunities.SaveOptions) (*opportunities.SubmitWithActionResult, error)
	MakeAppointment(ctx context.Context, name string) (*domain.Appointment, error)
	FollowUpEvents(ctx context.Context, start, end time.Time) ([]domain.OpportunityFollowUpEvent, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
