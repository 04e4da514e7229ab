package leads

import (
	"context"

	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/leads"
)

type LeadService interface {
	Create(ctx context.Context, lead *domain.Lead, opts leads.SaveOptions) (*domain.Lead, error)
	Update(ctx context.Context, lead *domain.Lead, opts leads.SaveOptions) (*domain.Lead, error)
	Get(ctx context.Context, name string) (*domain.Lead, error)
	Delete(ctx context.Context, name string) error
	Search(ctx context.Context, txt string, start, pageLen int) ([]domain.LeadSearchResult, error)
	MakeOpportunity(ctx context.Context, name string) (*domain.Opportunity, error)
	ContactDetails(ctx context.Context, name string) (*domain.ContactDetails, error)
	AddressDetails(ctx context.Context, name string) (*domain.AddressDetails, error)
	LeadFromCommunication(ctx context.Context, sender leads.CommunicationSender) (string, error)
	FindByPhoneNumber(ctx context.Context, number string) (string, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
