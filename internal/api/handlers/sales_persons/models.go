package sales_persons

import (
	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/domain"
)

// SalesPersonRequest поля продавца
type SalesPersonRequest struct {
	Name            string `json:"name,omitempty"` // только при создании, по умолчанию salesPersonName
	SalesPersonName string `json:"salesPersonName"`
	Parent          string `json:"parent"`
	IsGroup         bool   `json:"isGroup"`
	Enabled         bool   `json:"enabled"`
	UserID          string `json:"userId"`
	ContactMobile   string `json:"contactMobile"`
	ContactEmail    string `json:"contactEmail"`
	Employee        string `json:"employee"`
}

func (r *SalesPersonRequest) applyTo(sp *domain.SalesPerson) {
	sp.SalesPersonName = r.SalesPersonName
	sp.Parent = r.Parent
	sp.IsGroup = r.IsGroup
	sp.Enabled = r.Enabled
	sp.UserID = r.UserID
	sp.ContactMobile = r.ContactMobile
	sp.ContactEmail = r.ContactEmail
	sp.Employee = r.Employee
}

// SalesPersonResponse продавец
type SalesPersonResponse struct {
	SalesPersonRequest
	Modified string `json:"modified,omitempty"`
}

func fromDomain(sp *domain.SalesPerson) SalesPersonResponse {
	return SalesPersonResponse{
		SalesPersonRequest: SalesPersonRequest{
			Name:            sp.Name,
			SalesPersonName: sp.SalesPersonName,
			Parent:          sp.Parent,
			IsGroup:         sp.IsGroup,
			Enabled:         sp.Enabled,
			UserID:          sp.UserID,
			ContactMobile:   sp.ContactMobile,
			ContactEmail:    sp.ContactEmail,
			Employee:        sp.Employee,
		},
		Modified: handlers.FormatDateTime(&sp.Modified),
	}
}

// ListResponse дочерние узлы
type ListResponse struct {
	SalesPersons []SalesPersonResponse `json:"salesPersons"`
}

// SubtreeResponse имена узла и всех его потомков
type SubtreeResponse struct {
	Names []string `json:"names"`
}

// FromUserResponse продавец текущего пользователя, пусто если не найден
type FromUserResponse struct {
	SalesPerson string `json:"salesPerson"`
}

// TimelinePointResponse количество возможностей за день
type TimelinePointResponse struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// TimelineResponse активность продавца за год
type TimelineResponse struct {
	Points []TimelinePointResponse `json:"points"`
}
