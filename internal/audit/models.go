package audit

import "time"

// Event is an append-only record of a security-relevant action.
//
// Events are never updated or deleted. Capture is best-effort: callers log
// append failures and carry on.
type Event struct {
	ID   string    `json:"id" db:"id"`
	Type EventType `json:"type" db:"type"`

	// UserID is the account the event is about; 0 when none could be resolved.
	UserID  int64  `json:"userId,omitempty" db:"user_id"`
	LoginID string `json:"loginId,omitempty" db:"login_id"`

	// ActorUserID is set when someone other than UserID caused the event (admin actions).
	ActorUserID int64 `json:"actorUserId,omitempty" db:"actor_user_id"`

	IPAddress string `json:"ipAddress,omitempty" db:"ip_address"`
	Message   string `json:"message,omitempty" db:"message"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

type EventType string

const (
	EventLoginSucceeded  EventType = "login_succeeded"
	EventLoginFailed     EventType = "login_failed"
	EventLoginThrottled  EventType = "login_throttled"
	EventSignup          EventType = "signup"
	EventTokenRefreshed  EventType = "token_refreshed"
	EventRefreshRejected EventType = "refresh_rejected"
	EventAccountEnabled  EventType = "account_enabled"
	EventAccountDisabled EventType = "account_disabled"
)

func (t EventType) valid() bool {
	switch t {
	case EventLoginSucceeded, EventLoginFailed, EventLoginThrottled, EventSignup,
		EventTokenRefreshed, EventRefreshRejected, EventAccountEnabled, EventAccountDisabled:
		return true
	}
	return false
}
