package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
	"github.com/dmitrijs2005/fieldvisits/internal/timex"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// flexString accepts both JSON strings and numbers. Backend ids are numeric
// on some deployments and strings on others.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	// protojson renders every number as a double; drop a trailing ".0".
	if i, err := n.Int64(); err == nil {
		*f = flexString(strconv.FormatInt(i, 10))
		return nil
	}
	if fl, err := n.Float64(); err == nil && fl == float64(int64(fl)) {
		*f = flexString(strconv.FormatInt(int64(fl), 10))
		return nil
	}
	*f = flexString(n.String())
	return nil
}

type userDTO struct {
	ID       flexString `json:"id"`
	Username string     `json:"username"`
	Role     string     `json:"role"`
	Language string     `json:"language"`
}

type sessionDTO struct {
	Success bool     `json:"success"`
	User    *userDTO `json:"user"`
}

type loginDTO struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

type resultDTO struct {
	Success bool `json:"success"`
}

type visitDTO struct {
	VisitID            flexString    `json:"visit_id"`
	ClientID           flexString    `json:"client_id"`
	UserID             flexString    `json:"user_id"`
	VisitDate          timex.Instant `json:"visit_date"`
	CreatedAt          timex.Instant `json:"created_at"`
	ContactPerson      string        `json:"contact_person"`
	MeetingType        string        `json:"meeting_type"`
	MeetingPurpose     string        `json:"meeting_purpose"`
	PostMeetingSummary string        `json:"post_meeting_summary"`
	MarketingTasks     string        `json:"marketing_tasks"`
	ActionPlan         string        `json:"action_plan"`
	CompetitionInfo    string        `json:"competition_info"`
	AdditionalNotes    string        `json:"additional_notes"`
	AttachmentFile     string        `json:"attachment_file"`
}

type clientDTO struct {
	ClientID    flexString `json:"client_id"`
	CompanyName string     `json:"company_name"`
	Country     string     `json:"country"`
	Visits      []visitDTO `json:"visits"`
}

type clientsDTO struct {
	Clients []clientDTO `json:"clients"`
}

// decodeStruct unmarshals a Struct payload into dst through its JSON form.
func decodeStruct(s *structpb.Struct, dst any) error {
	if s == nil {
		return fmt.Errorf("%w: empty payload", ErrBadResponse)
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return nil
}

func (u *userDTO) toModel() *models.Identity {
	if u == nil {
		return nil
	}
	return &models.Identity{
		ID:       string(u.ID),
		Username: u.Username,
		Role:     models.Role(u.Role),
		Language: u.Language,
	}
}

func (v visitDTO) toModel(clientID string) models.Visit {
	cid := string(v.ClientID)
	if cid == "" {
		cid = clientID
	}
	return models.Visit{
		VisitID:            string(v.VisitID),
		ClientID:           cid,
		UserID:             string(v.UserID),
		VisitDate:          v.VisitDate.Time,
		CreatedAt:          v.CreatedAt.Time,
		ContactPerson:      v.ContactPerson,
		MeetingType:        v.MeetingType,
		MeetingPurpose:     v.MeetingPurpose,
		PostMeetingSummary: v.PostMeetingSummary,
		MarketingTasks:     v.MarketingTasks,
		ActionPlan:         v.ActionPlan,
		CompetitionInfo:    v.CompetitionInfo,
		AdditionalNotes:    v.AdditionalNotes,
		AttachmentFile:     v.AttachmentFile,
	}
}

func (c clientDTO) toModel() models.Client {
	out := models.Client{
		ClientID:    string(c.ClientID),
		CompanyName: c.CompanyName,
		Country:     c.Country,
		Visits:      make([]models.Visit, 0, len(c.Visits)),
	}
	for _, v := range c.Visits {
		out.Visits = append(out.Visits, v.toModel(out.ClientID))
	}
	return out
}

// visitToStruct encodes the editable fields of v for UpdateVisit.
func visitToStruct(v models.Visit) (*structpb.Struct, error) {
	m := map[string]any{
		"visit_id":             v.VisitID,
		"client_id":            v.ClientID,
		"user_id":              v.UserID,
		"contact_person":       v.ContactPerson,
		"meeting_type":         v.MeetingType,
		"meeting_purpose":      v.MeetingPurpose,
		"post_meeting_summary": v.PostMeetingSummary,
		"marketing_tasks":      v.MarketingTasks,
		"action_plan":          v.ActionPlan,
		"competition_info":     v.CompetitionInfo,
		"additional_notes":     v.AdditionalNotes,
		"attachment_file":      v.AttachmentFile,
	}
	if !v.VisitDate.IsZero() {
		m["visit_date"] = v.VisitDate.Format(time.DateOnly)
	}
	if !v.CreatedAt.IsZero() {
		m["created_at"] = v.CreatedAt.Format(time.RFC3339)
	}
	return structpb.NewStruct(m)
}
