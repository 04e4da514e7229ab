package dto

import (
	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/domain"
)

// LeadRequest поля лида, которые задаёт пользователь
type LeadRequest struct {
	LeadName         string `json:"leadName"`
	CompanyName      string `json:"companyName"`
	OrganizationLead bool   `json:"organizationLead"`
	Salutation       string `json:"salutation"`
	Gender           string `json:"gender"`
	Designation      string `json:"designation"`

	EmailID   string `json:"emailId"`
	MobileNo  string `json:"mobileNo"`
	MobileNo2 string `json:"mobileNo2"`
	Phone     string `json:"phone"`

	TaxID   string `json:"taxId"`
	TaxCNIC string `json:"taxCnic"`
	TaxSTRN string `json:"taxStrn"`

	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`

	Territory   string `json:"territory"`
	Campaign    string `json:"campaign"`
	SalesPerson string `json:"salesPerson"`
	Source      string `json:"source"`
	Status      string `json:"status"`
	Image       string `json:"image"`
	Notes       string `json:"notes"`
}

// ApplyTo переносит поля запроса в лид, имя и служебные поля не меняются
func (r *LeadRequest) ApplyTo(l *domain.Lead) {
	l.LeadName = r.LeadName
	l.CompanyName = r.CompanyName
	l.OrganizationLead = r.OrganizationLead
	l.Salutation = r.Salutation
	l.Gender = r.Gender
	l.Designation = r.Designation
	l.EmailID = r.EmailID
	l.MobileNo = r.MobileNo
	l.MobileNo2 = r.MobileNo2
	l.Phone = r.Phone
	l.TaxID = r.TaxID
	l.TaxCNIC = r.TaxCNIC
	l.TaxSTRN = r.TaxSTRN
	l.AddressLine1 = r.AddressLine1
	l.AddressLine2 = r.AddressLine2
	l.City = r.City
	l.State = r.State
	l.Country = r.Country
	l.Territory = r.Territory
	l.Campaign = r.Campaign
	l.SalesPerson = r.SalesPerson
	l.Source = r.Source
	l.Status = domain.LeadStatus(r.Status)
	l.Image = r.Image
	l.Notes = r.Notes
}

// LeadResponse лид
type LeadResponse struct {
	Name string `json:"name"`
	LeadRequest
	DocStatus int    `json:"docstatus"`
	CreatedAt string `json:"createdAt"`
	Modified  string `json:"modified"`
}

// LeadFromDomain конвертирует лид в DTO
func LeadFromDomain(l *domain.Lead) *LeadResponse {
	return &LeadResponse{
		Name: l.Name,
		LeadRequest: LeadRequest{
			LeadName:         l.LeadName,
			CompanyName:      l.CompanyName,
			OrganizationLead: l.OrganizationLead,
			Salutation:       l.Salutation,
			Gender:           l.Gender,
			Designation:      l.Designation,
			EmailID:          l.EmailID,
			MobileNo:         l.MobileNo,
			MobileNo2:        l.MobileNo2,
			Phone:            l.Phone,
			TaxID:            l.TaxID,
			TaxCNIC:          l.TaxCNIC,
			TaxSTRN:          l.TaxSTRN,
			AddressLine1:     l.AddressLine1,
			AddressLine2:     l.AddressLine2,
			City:             l.City,
			State:            l.State,
			Country:          l.Country,
			Territory:        l.Territory,
			Campaign:         l.Campaign,
			SalesPerson:      l.SalesPerson,
			Source:           l.Source,
			Status:           string(l.Status),
			Image:            l.Image,
			Notes:            l.Notes,
		},
		DocStatus: int(l.DocStatus),
		CreatedAt: handlers.FormatDateTime(&l.CreatedAt),
		Modified:  handlers.FormatDateTime(&l.Modified),
	}
}

// ContactDetailsResponse контактные данные стороны
type ContactDetailsResponse struct {
	ContactDisplay     string `json:"contactDisplay"`
	ContactEmail       string `json:"contactEmail"`
	ContactMobile      string `json:"contactMobile"`
	ContactMobile2     string `json:"contactMobile2"`
	ContactPhone       string `json:"contactPhone"`
	ContactDesignation string `json:"contactDesignation"`
}

// ContactDetailsFromDomain конвертирует контактные данные в DTO
func ContactDetailsFromDomain(d domain.ContactDetails) ContactDetailsResponse {
	return ContactDetailsResponse{
		ContactDisplay:     d.ContactDisplay,
		ContactEmail:       d.ContactEmail,
		ContactMobile:      d.ContactMobile,
		ContactMobile2:     d.ContactMobile2,
		ContactPhone:       d.ContactPhone,
		ContactDesignation: d.ContactDesignation,
	}
}

// ToDomain конвертирует контактные данные из DTO
func (c ContactDetailsResponse) ToDomain() domain.ContactDetails {
	return domain.ContactDetails{
		ContactDisplay:     c.ContactDisplay,
		ContactEmail:       c.ContactEmail,
		ContactMobile:      c.ContactMobile,
		ContactMobile2:     c.ContactMobile2,
		ContactPhone:       c.ContactPhone,
		ContactDesignation: c.ContactDesignation,
	}
}

// AddressDetailsResponse адрес лида
type AddressDetailsResponse struct {
	AddressLine1 string `json:"addressLine1"`
	AddressLine2 string `json:"addressLine2"`
	City         string `json:"city"`
	State        string `json:"state"`
	Country      string `json:"country"`
}

// AddressDetailsFromDomain конвертирует адрес в DTO
func AddressDetailsFromDomain(d domain.AddressDetails) AddressDetailsResponse {
	return AddressDetailsResponse{
		AddressLine1: d.AddressLine1,
		AddressLine2: d.AddressLine2,
		City:         d.City,
		State:        d.State,
		Country:      d.Country,
	}
}

// CustomerDetailsResponse поля стороны для возможности и встречи
type CustomerDetailsResponse struct {
	CustomerName   string `json:"customerName"`
	TaxID          string `json:"taxId"`
	TaxCNIC        string `json:"taxCnic"`
	TaxSTRN        string `json:"taxStrn"`
	AddressDisplay string `json:"addressDisplay"`
	Territory      string `json:"territory"`
	Campaign       string `json:"campaign"`
	SalesPerson    string `json:"salesPerson"`
	Source         string `json:"source"`
	ContactDetailsResponse
}

// CustomerDetailsFromDomain конвертирует поля стороны в DTO
func CustomerDetailsFromDomain(d domain.CustomerDetails) CustomerDetailsResponse {
	return CustomerDetailsResponse{
		CustomerName:           d.CustomerName,
		TaxID:                  d.TaxID,
		TaxCNIC:                d.TaxCNIC,
		TaxSTRN:                d.TaxSTRN,
		AddressDisplay:         d.AddressDisplay,
		Territory:              d.Territory,
		Campaign:               d.Campaign,
		SalesPerson:            d.SalesPerson,
		Source:                 d.Source,
		ContactDetailsResponse: ContactDetailsFromDomain(d.ContactDetails),
	}
}

// LeadSearchResponse строка автодополнения лидов
type LeadSearchResponse struct {
	Name        string `json:"name"`
	LeadName    string `json:"leadName"`
	CompanyName string `json:"companyName"`
}
