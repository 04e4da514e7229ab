package domain

// Time format constants
const (
	TimeFormat     = "15:04"               // HH:MM
	DateFormat     = "2006-01-02"          // YYYY-MM-DD
	DateTimeFormat = "2006-01-02 15:04:05" // YYYY-MM-DD HH:MM:SS
)

// Document types used in references and timeline links
const (
	DoctypeLead             = "Lead"
	DoctypeOpportunity      = "Opportunity"
	DoctypeAppointment      = "Appointment"
	DoctypeCustomerFeedback = "Customer Feedback"
	DoctypeSalesPerson      = "Sales Person"
	DoctypeTerritory        = "Territory"
)

// PartyTypeLead is the only party type opportunities and appointments can be made for
const PartyTypeLead = DoctypeLead

// Tree roots created by fixtures
const (
	RootTerritory   = "All Territories"
	RootSalesPerson = "Sales Team"
)

// Search defaults
const (
	DefaultPageLength = 20
	MaxPageLength     = 500
	// MissingPosition is the sort key used when the search text is not found in a column
	MissingPosition = 99999
)

// Text limits
const (
	MaxRemarksLength = 10000
	MaxNameLength    = 140
)

// AllowedPartyTypes party types opportunities and appointments accept
var AllowedPartyTypes = []string{PartyTypeLead}

// IsAllowedPartyType reports whether the party type can own an opportunity or appointment
func IsAllowedPartyType(partyType string) bool {
	for _, t := range AllowedPartyTypes {
		if t == partyType {
			return true
		}
	}
	return false
}
