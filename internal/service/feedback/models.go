package feedback

import "time"

// SubmitRequest отзыв или комментарий по документу
type SubmitRequest struct {
	ReferenceDoctype string
	ReferenceName    string
	// Kind "Feedback" пишет отзыв клиента, любое другое значение пишет комментарий о контакте
	Kind    string
	Message string
	User    string
}

// SubmitResult актуальные значения после сохранения
type SubmitResult struct {
	ContactRemarks   string
	CustomerFeedback string
	ContactDt        *time.Time
	FeedbackDt       *time.Time
}
