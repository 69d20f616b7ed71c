package planner

import (
	"errors"
	"slices"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Event is a calendar entry. Dates are civil dates (DateLayout); times are
// optional wall-clock times (TimeLayout). Participants may read the event;
// only the owner may change it. Editable is filled per viewer.
type Event struct {
	ID             int64    `json:"id"`
	OwnerID        int64    `json:"ownerId"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	StartDate      string   `json:"startDate"`
	EndDate        string   `json:"endDate"`
	StartTime      string   `json:"startTime,omitempty"`
	EndTime        string   `json:"endTime,omitempty"`
	Location       string   `json:"location,omitempty"`
	Tags           []string `json:"tags"`
	ParticipantIDs []int64  `json:"participantIds"`
	Shared         bool     `json:"shared"`
	ShareCode      string   `json:"shareCode,omitempty"`
	Editable       bool     `json:"editable"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// visibleTo reports whether userID owns or participates in e.
func (e Event) visibleTo(userID int64) bool {
	return e.OwnerID == userID || slices.Contains(e.ParticipantIDs, userID)
}

// PublicEvent is what a share link reveals. Participants stay private.
type PublicEvent struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
	Location    string `json:"location,omitempty"`
}

func (e Event) Public() PublicEvent {
	return PublicEvent{
		Title:       e.Title,
		Description: e.Description,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		Location:    e.Location,
	}
}

type Draft struct {
	Title       string
	Description string
	StartDate   string
	EndDate     string
	StartTime   string
	EndTime     string
	Location    string
	Tags        []string

	ParticipantIDs []int64
}

var (
	ErrNotFound        = errors.New("planner: not found")
	ErrInvalidArgument = errors.New("planner: invalid argument")
	ErrForbidden       = errors.New("planner: forbidden")
)
