package domain

import "time"

// Communication types and directions
const (
	CommunicationTypeCommunication    = "Communication"
	CommunicationTypeFeedback         = "Feedback"
	CommunicationTypeAutomatedMessage = "Automated Message"

	CommunicationReceived = "Received"
	CommunicationSent     = "Sent"

	CommunicationMediumEmail = "Email"
)

// TimelineLink additional record a communication is shown on
type TimelineLink struct {
	LinkDoctype string
	LinkName    string
}

// Communication message exchanged with a party or recorded by a user
type Communication struct {
	ID                int64
	ReferenceDoctype  string
	ReferenceName     string
	CommunicationType string
	Medium            string
	Subject           string
	Content           string
	Sender            string
	SenderFullName    string
	Phone             string
	SentOrReceived    string
	CommunicationDate time.Time
	TimelineLinks     []TimelineLink
}

// AddLink appends a timeline link once
func (c *Communication) AddLink(doctype, name string) {
	if doctype == "" || name == "" {
		return
	}
	for _, l := range c.TimelineLinks {
		if l.LinkDoctype == doctype && l.LinkName == name {
			return
		}
	}
	c.TimelineLinks = append(c.TimelineLinks, TimelineLink{LinkDoctype: doctype, LinkName: name})
}
