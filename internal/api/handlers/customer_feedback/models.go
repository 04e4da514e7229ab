package customer_feedback

import (
	"github.com/m04kA/SMC-CRM/internal/api/handlers"
	"github.com/m04kA/SMC-CRM/internal/domain"
	"github.com/m04kA/SMC-CRM/internal/service/feedback"
)

// SubmitFeedbackRequest отзыв клиента или комментарий о контакте
type SubmitFeedbackRequest struct {
	ReferenceDoctype string `json:"referenceDoctype"`
	ReferenceName    string `json:"referenceName"`
	Kind             string `json:"kind"` // Feedback или Remarks
	Message          string `json:"message"`
}

// SubmitFeedbackResponse актуальные значения отзыва
type SubmitFeedbackResponse struct {
	ContactRemarks   string `json:"contactRemarks"`
	CustomerFeedback string `json:"customerFeedback"`
	ContactDt        string `json:"contactDt,omitempty"`
	FeedbackDt       string `json:"feedbackDt,omitempty"`
}

func fromSubmitResult(res *feedback.SubmitResult) SubmitFeedbackResponse {
	return SubmitFeedbackResponse{
		ContactRemarks:   res.ContactRemarks,
		CustomerFeedback: res.CustomerFeedback,
		ContactDt:        handlers.FormatDateTime(res.ContactDt),
		FeedbackDt:       handlers.FormatDateTime(res.FeedbackDt),
	}
}

// FeedbackResponse запись отзыва
type FeedbackResponse struct {
	Name             string `json:"name"`
	ReferenceDoctype string `json:"referenceDoctype"`
	ReferenceName    string `json:"referenceName"`
	FeedbackFrom     string `json:"feedbackFrom"`
	PartyName        string `json:"partyName"`
	CustomerName     string `json:"customerName"`
	Title            string `json:"title"`
	Status           string `json:"status"`

	ContactDate    string `json:"contactDate,omitempty"`
	ContactTime    string `json:"contactTime,omitempty"`
	ContactRemarks string `json:"contactRemarks"`

	FeedbackDate     string `json:"feedbackDate,omitempty"`
	FeedbackTime     string `json:"feedbackTime,omitempty"`
	CustomerFeedback string `json:"customerFeedback"`

	Modified string `json:"modified,omitempty"`
}

func fromDomain(f *domain.CustomerFeedback) FeedbackResponse {
	resp := FeedbackResponse{
		Name:             f.Name,
		ReferenceDoctype: f.ReferenceDoctype,
		ReferenceName:    f.ReferenceName,
		FeedbackFrom:     f.FeedbackFrom,
		PartyName:        f.PartyName,
		CustomerName:     f.CustomerName,
		Title:            f.Title,
		Status:           string(f.Status),
		ContactDate:      handlers.FormatDate(f.ContactDate),
		ContactRemarks:   f.ContactRemarks,
		FeedbackDate:     handlers.FormatDate(f.FeedbackDate),
		CustomerFeedback: f.CustomerFeedback,
		Modified:         handlers.FormatDateTime(&f.Modified),
	}
	if !f.ContactTime.IsZero() {
		resp.ContactTime = f.ContactTime.String()
	}
	if !f.FeedbackTime.IsZero() {
		resp.FeedbackTime = f.FeedbackTime.String()
	}
	return resp
}
