package events

import (
	"time"

	"github.com/google/uuid"
)

const EventTypeActivityRecorded = "activity.recorded"

// ActivityPayload mirrors one audit-trail row.
type ActivityPayload struct {
	UserID      *int64         `json:"user_id,omitempty"`
	Action      string         `json:"action"`
	Module      string         `json:"module,omitempty"`
	ObjectType  string         `json:"object_type,omitempty"`
	ObjectID    string         `json:"object_id,omitempty"`
	Description string         `json:"description,omitempty"`
	IPAddress   string         `json:"ip_address,omitempty"`
	UserAgent   string         `json:"user_agent,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type ActivityRecordedEvent struct {
	BaseEvent
	Activity ActivityPayload `json:"activity"`
}

func NewActivityRecordedEvent(p ActivityPayload, at time.Time) *ActivityRecordedEvent {
	return &ActivityRecordedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeActivityRecorded,
			Timestamp: at,
			Data: map[string]interface{}{
				"action":      p.Action,
				"module":      p.Module,
				"object_type": p.ObjectType,
				"object_id":   p.ObjectID,
			},
		},
		Activity: p,
	}
}
