package domain

import (
	"strings"
	"time"
)

// LeadStatus represents the status of a lead
type LeadStatus string

const (
	LeadStatusOpen            LeadStatus = "Open"
	LeadStatusInterested      LeadStatus = "Interested"
	LeadStatusOpportunity     LeadStatus = "Opportunity"
	LeadStatusLostOpportunity LeadStatus = "Lost Opportunity"
	LeadStatusConverted       LeadStatus = "Converted"
	LeadStatusDoNotContact    LeadStatus = "Do Not Contact"
)

var leadStatuses = []LeadStatus{
	LeadStatusOpen,
	LeadStatusInterested,
	LeadStatusOpportunity,
	LeadStatusLostOpportunity,
	LeadStatusConverted,
	LeadStatusDoNotContact,
}

// IsValid reports whether s is a known lead status
func (s LeadStatus) IsValid() bool {
	for _, v := range leadStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// Lead represents a prospective customer
type Lead struct {
	Name             string
	LeadName         string
	CompanyName      string
	OrganizationLead bool
	Salutation       string
	Gender           string
	Designation      string

	EmailID   string
	MobileNo  string
	MobileNo2 string
	Phone     string

	TaxID   string
	TaxCNIC string
	TaxSTRN string

	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Country      string

	Territory   string
	Campaign    string
	SalesPerson string
	Source      string
	Status      LeadStatus
	Image       string
	Notes       string
	DocStatus   DocStatus

	CreatedAt time.Time
	Modified  time.Time
}

// LeadStatusFacts are the opportunity lookups that drive the lead status
type LeadStatusFacts struct {
	HasOpportunity     bool // any opportunity that is not Lost, Converted included
	HasLostOpportunity bool
	HasConverted       bool
}

// leadStatusMap is evaluated in order, the first matching rule wins
var leadStatusMap = []struct {
	status LeadStatus
	match  func(LeadStatusFacts) bool
}{
	{LeadStatusLostOpportunity, func(f LeadStatusFacts) bool { return f.HasLostOpportunity }},
	{LeadStatusOpportunity, func(f LeadStatusFacts) bool { return f.HasOpportunity }},
	{LeadStatusConverted, func(f LeadStatusFacts) bool { return f.HasConverted }},
}

// DeriveLeadStatus computes the lead status.
// An explicit status replaces the current one before the status map is applied.
func DeriveLeadStatus(current, explicit LeadStatus, facts LeadStatusFacts) LeadStatus {
	status := current
	if explicit != "" {
		status = explicit
	}

	for _, rule := range leadStatusMap {
		if rule.match(facts) {
			return rule.status
		}
	}

	if status == "" {
		return LeadStatusOpen
	}
	return status
}

// Normalize cleans and validates the lead before it is saved.
// ignoreMandatory allows saving a lead without any name (imports, inbound messages).
func (l *Lead) Normalize(ignoreMandatory bool) error {
	l.LeadName = CleanWhitespace(l.LeadName)
	l.CompanyName = CleanWhitespace(l.CompanyName)

	if l.LeadName == "" {
		if l.CompanyName == "" && !ignoreMandatory {
			return Invalid("A Lead requires either a person's name or an organization's name")
		}
		l.LeadName = l.CompanyName
	}

	if l.OrganizationLead {
		l.LeadName = l.CompanyName
		l.Gender = ""
		l.Salutation = ""
	}

	l.EmailID = strings.TrimSpace(l.EmailID)
	if l.EmailID != "" {
		if err := ValidateEmail(l.EmailID); err != nil {
			return err
		}
	}

	if l.MobileNo2 != "" && l.MobileNo == "" {
		l.MobileNo = l.MobileNo2
		l.MobileNo2 = ""
	}
	if err := ValidateMobileNo(l.MobileNo); err != nil {
		return err
	}
	if err := ValidateMobileNo(l.MobileNo2); err != nil {
		return err
	}

	if l.Status != "" && !l.Status.IsValid() {
		return Invalid("Status must be one of %s", CommaAnd(leadStatusStrings()))
	}

	return ValidateTaxIDs(l.TaxID, l.TaxCNIC, l.TaxSTRN)
}

// CustomerName is the display name used on opportunities and appointments
func (l *Lead) CustomerName() string {
	if l.CompanyName != "" {
		return l.CompanyName
	}
	return l.LeadName
}

// ContactDetails contact fields copied onto documents made for the lead
type ContactDetails struct {
	ContactDisplay     string
	ContactEmail       string
	ContactMobile      string
	ContactMobile2     string
	ContactPhone       string
	ContactDesignation string
}

// ContactDetails returns the lead's contact fields.
// Organization leads have no contact person.
func (l *Lead) ContactDetails() ContactDetails {
	out := ContactDetails{
		ContactEmail:   l.EmailID,
		ContactMobile:  l.MobileNo,
		ContactMobile2: l.MobileNo2,
		ContactPhone:   l.Phone,
	}
	if !l.OrganizationLead {
		out.ContactDisplay = JoinNonEmpty(" ", l.Salutation, l.LeadName)
		out.ContactDesignation = l.Designation
	}
	return out
}

// AddressDetails lead address, empty when the first line is missing
type AddressDetails struct {
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	Country      string
}

// AddressDetails returns the address fields of the lead
func (l *Lead) AddressDetails() AddressDetails {
	if l.AddressLine1 == "" {
		return AddressDetails{}
	}
	return AddressDetails{
		AddressLine1: l.AddressLine1,
		AddressLine2: l.AddressLine2,
		City:         l.City,
		State:        l.State,
		Country:      l.Country,
	}
}

// Display formats the address as lines
func (a AddressDetails) Display() string {
	if a.AddressLine1 == "" {
		return ""
	}
	return JoinNonEmpty("\n", a.AddressLine1, a.AddressLine2, a.City, a.State, a.Country)
}

// CustomerDetails party fields copied from a lead onto an opportunity or appointment
type CustomerDetails struct {
	CustomerName   string
	TaxID          string
	TaxCNIC        string
	TaxSTRN        string
	AddressDisplay string
	Territory      string
	Campaign       string
	SalesPerson    string
	Source         string
	ContactDetails
}

// CustomerDetailsFromLead collects the party fields of the lead
func CustomerDetailsFromLead(l *Lead) CustomerDetails {
	return CustomerDetails{
		CustomerName:   l.CustomerName(),
		TaxID:          l.TaxID,
		TaxCNIC:        l.TaxCNIC,
		TaxSTRN:        l.TaxSTRN,
		AddressDisplay: l.AddressDetails().Display(),
		Territory:      l.Territory,
		Campaign:       l.Campaign,
		SalesPerson:    l.SalesPerson,
		Source:         l.Source,
		ContactDetails: l.ContactDetails(),
	}
}

func leadStatusStrings() []string {
	out := make([]string, len(leadStatuses))
	for i, s := range leadStatuses {
		out[i] = string(s)
	}
	return out
}

// LeadSearchResult row returned by the lead autocomplete query
type LeadSearchResult struct {
	Name        string
	LeadName    string
	CompanyName string
}

// NewOpportunity maps the lead into an unsaved opportunity
func (l *Lead) NewOpportunity() *Opportunity {
	o := &Opportunity{
		OpportunityFrom: PartyTypeLead,
		PartyName:       l.Name,
		Status:          OpportunityStatusOpen,
		Territory:       l.Territory,
		Campaign:        l.Campaign,
		SalesPerson:     l.SalesPerson,
		Source:          l.Source,
	}
	o.ApplyCustomerDetails(CustomerDetailsFromLead(l))
	o.SetTitle()
	return o
}
