package dto

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/domain"
)

// FollowUpRow строка графика follow up
type FollowUpRow struct {
	ID           int64  `json:"id,omitempty"`
	ScheduleDate string `json:"scheduleDate,omitempty"`
	ContactDate  string `json:"contactDate,omitempty"`
	ToDiscuss    string `json:"toDiscuss,omitempty"`
}

// OpportunityRequest поля возможности, которые задаёт пользователь
type OpportunityRequest struct {
	OpportunityFrom string `json:"opportunityFrom"`
	PartyName       string `json:"partyName"`
	Status          string `json:"status"`
	OpportunityType string `json:"opportunityType"`
	Source          string `json:"source"`
	Campaign        string `json:"campaign"`
	Territory       string `json:"territory"`
	SalesPerson     string `json:"salesPerson"`
	TransactionDate string `json:"transactionDate,omitempty"`

	ContactMobile2     string `json:"contactMobile2"`
	ContactDesignation string `json:"contactDesignation"`

	ContactSchedule []FollowUpRow `json:"contactSchedule"`
	LostReasons     []string      `json:"lostReasons"`
	OrderLostReason string        `json:"orderLostReason"`

	AppliesToVehicle  string `json:"appliesToVehicle"`
	AppliesToSerialNo string `json:"appliesToSerialNo"`
}

// ApplyTo переносит поля запроса в возможность
func (r *OpportunityRequest) ApplyTo(o *domain.Opportunity, loc *time.Location) error {
	o.OpportunityFrom = r.OpportunityFrom
	o.PartyName = r.PartyName
	o.Status = domain.OpportunityStatus(r.Status)
	o.OpportunityType = r.OpportunityType
	o.Source = r.Source
	o.Campaign = r.Campaign
	o.Territory = r.Territory
	o.SalesPerson = r.SalesPerson
	o.ContactMobile2 = r.ContactMobile2
	o.ContactDesignation = r.ContactDesignation
	o.LostReasons = r.LostReasons
	o.OrderLostReason = r.OrderLostReason
	o.AppliesToVehicle = r.AppliesToVehicle
	o.AppliesToSerialNo = r.AppliesToSerialNo

	if r.TransactionDate != "" {
		date, err := handlers.ParseDate(r.TransactionDate, loc)
		if err != nil {
			return err
		}
		o.TransactionDate = *date
	}

	schedule := make([]domain.FollowUp, len(r.ContactSchedule))
	for i, row := range r.ContactSchedule {
		scheduleDate, err := handlers.ParseDate(row.ScheduleDate, loc)
		if err != nil {
			return fmt.Errorf("contact schedule row #%d: %w", i+1, err)
		}
		contactDate, err := handlers.ParseDate(row.ContactDate, loc)
		if err != nil {
			return fmt.Errorf("contact schedule row #%d: %w", i+1, err)
		}
		schedule[i] = domain.FollowUp{
			ID:           row.ID,
			Idx:          i + 1,
			ScheduleDate: scheduleDate,
			ContactDate:  contactDate,
			ToDiscuss:    row.ToDiscuss,
		}
	}
	o.ContactSchedule = schedule
	return nil
}

// OpportunityResponse возможность
type OpportunityResponse struct {
	Name            string `json:"name,omitempty"`
	OpportunityFrom string `json:"opportunityFrom"`
	PartyName       string `json:"partyName"`
	CustomerName    string `json:"customerName"`
	Title           string `json:"title"`
	Status          string `json:"status"`
	OpportunityType string `json:"opportunityType"`
	Source          string `json:"source"`
	Campaign        string `json:"campaign"`
	Territory       string `json:"territory"`

	SalesPerson         string `json:"salesPerson"`
	SalesPersonMobileNo string `json:"salesPersonMobileNo"`
	SalesPersonEmail    string `json:"salesPersonEmail"`

	TaxID          string `json:"taxId"`
	TaxCNIC        string `json:"taxCnic"`
	TaxSTRN        string `json:"taxStrn"`
	AddressDisplay string `json:"addressDisplay"`
	ContactDetailsResponse

	TransactionDate string        `json:"transactionDate"`
	NextFollowUp    string        `json:"nextFollowUp,omitempty"`
	ContactSchedule []FollowUpRow `json:"contactSchedule"`
	LostReasons     []string      `json:"lostReasons"`
	OrderLostReason string        `json:"orderLostReason"`

	AppliesToVehicle  string `json:"appliesToVehicle"`
	AppliesToSerialNo string `json:"appliesToSerialNo"`

	Owner     string `json:"owner"`
	CreatedAt string `json:"createdAt,omitempty"`
	Modified  string `json:"modified,omitempty"`
}

// OpportunityFromDomain конвертирует возможность в DTO
func OpportunityFromDomain(o *domain.Opportunity) *OpportunityResponse {
	schedule := make([]FollowUpRow, len(o.ContactSchedule))
	for i, f := range o.ContactSchedule {
		schedule[i] = FollowUpRow{
			ID:           f.ID,
			ScheduleDate: handlers.FormatDate(f.ScheduleDate),
			ContactDate:  handlers.FormatDate(f.ContactDate),
			ToDiscuss:    f.ToDiscuss,
		}
	}
	lostReasons := o.LostReasons
	if lostReasons == nil {
		lostReasons = []string{}
	}

	return &OpportunityResponse{
		Name:                   o.Name,
		OpportunityFrom:        o.OpportunityFrom,
		PartyName:              o.PartyName,
		CustomerName:           o.CustomerName,
		Title:                  o.Title,
		Status:                 string(o.Status),
		OpportunityType:        o.OpportunityType,
		Source:                 o.Source,
		Campaign:               o.Campaign,
		Territory:              o.Territory,
		SalesPerson:            o.SalesPerson,
		SalesPersonMobileNo:    o.SalesPersonMobileNo,
		SalesPersonEmail:       o.SalesPersonEmail,
		TaxID:                  o.TaxID,
		TaxCNIC:                o.TaxCNIC,
		TaxSTRN:                o.TaxSTRN,
		AddressDisplay:         o.AddressDisplay,
		ContactDetailsResponse: ContactDetailsFromDomain(o.ContactDetails),
		TransactionDate:        handlers.FormatDate(&o.TransactionDate),
		NextFollowUp:           handlers.FormatDate(o.NextFollowUp),
		ContactSchedule:        schedule,
		LostReasons:            lostReasons,
		OrderLostReason:        o.OrderLostReason,
		AppliesToVehicle:       o.AppliesToVehicle,
		AppliesToSerialNo:      o.AppliesToSerialNo,
		Owner:                  o.Owner,
		CreatedAt:              handlers.FormatDateTime(&o.CreatedAt),
		Modified:               handlers.FormatDateTime(&o.Modified),
	}
}

// FollowUpEventResponse follow up в календаре
type FollowUpEventResponse struct {
	Name         string `json:"name"`
	CustomerName string `json:"customerName"`
	Status       string `json:"status"`
	ScheduleDate string `json:"scheduleDate"`
}
