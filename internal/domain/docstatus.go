package domain

// DocStatus is the lifecycle stage of a submittable record
type DocStatus int

const (
	DocStatusDraft     DocStatus = 0
	DocStatusSubmitted DocStatus = 1
	DocStatusCancelled DocStatus = 2
)

func (s DocStatus) IsDraft() bool     { return s == DocStatusDraft }
func (s DocStatus) IsSubmitted() bool { return s == DocStatusSubmitted }
func (s DocStatus) IsCancelled() bool { return s == DocStatusCancelled }

func (s DocStatus) String() string {
	switch s {
	case DocStatusDraft:
		return "Draft"
	case DocStatusSubmitted:
		return "Submitted"
	case DocStatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}
