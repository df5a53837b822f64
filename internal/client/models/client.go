package models

import "time"

// Client is a company together with the visits filed against it, in the
// order the backend returned them.
type Client struct {
	ClientID    string
	CompanyName string
	Country     string
	Visits      []Visit
}

// Visit is a single field-visit record. It is immutable on the client: edits
// go to the backend and the whole dataset is fetched again.
type Visit struct {
	VisitID  string
	ClientID string
	// UserID is the author of the visit.
	UserID string

	// VisitDate is when the meeting took place. Zero means missing or
	// malformed.
	VisitDate time.Time
	// CreatedAt is when the record was filed; it drives the edit window.
	CreatedAt time.Time

	ContactPerson      string
	MeetingType        string
	MeetingPurpose     string
	PostMeetingSummary string
	MarketingTasks     string
	ActionPlan         string
	CompetitionInfo    string
	AdditionalNotes    string

	// AttachmentFile is the storage key of an optional attachment.
	AttachmentFile string
}

// HasAttachment reports whether the visit references an attachment.
func (v Visit) HasAttachment() bool {
	return v.AttachmentFile != ""
}
