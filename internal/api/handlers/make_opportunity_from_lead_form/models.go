package make_opportunity_from_lead_form

import (
	"net"
	"net/http"
	"strings"

	leadForm "github.com/m04kA/SMC-CRM/internal/usecase/make_opportunity_from_lead_form"
)

// LeadFormRequest HTTP request model формы обратной связи на сайте
type LeadFormRequest struct {
	Subject      string `json:"subject"`
	Message      string `json:"message"`
	Sender       string `json:"sender"` // email
	FullName     string `json:"fullName"`
	Organization string `json:"organization"`
	Designation  string `json:"designation"`
	MobileNo     string `json:"mobileNo"`
	PhoneNo      string `json:"phoneNo"`
	Country      string `json:"country"`
}

// LeadFormResponse HTTP response model
type LeadFormResponse struct {
	Result      string `json:"result"`
	Lead        string `json:"lead"`
	LeadCreated bool   `json:"leadCreated"`
	Opportunity string `json:"opportunity"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *LeadFormRequest) ToUseCaseRequest(clientIP string) leadForm.Request {
	return leadForm.Request{
		ClientIP:     clientIP,
		Subject:      r.Subject,
		Message:      r.Message,
		Sender:       r.Sender,
		FullName:     r.FullName,
		Organization: r.Organization,
		Designation:  r.Designation,
		MobileNo:     r.MobileNo,
		PhoneNo:      r.PhoneNo,
		Country:      r.Country,
	}
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *leadForm.Response) *LeadFormResponse {
	return &LeadFormResponse{
		Result:      resp.Result,
		Lead:        resp.Lead,
		LeadCreated: resp.LeadCreated,
		Opportunity: resp.Opportunity,
	}
}

// clientIP адрес посетителя: первый адрес X-Forwarded-For, иначе адрес соединения
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
