// Package events carries domain notifications from the services to realtime
// subscribers.
package events

import "time"

type Type string

const (
	InspectionScheduled   Type = "inspection.scheduled"
	InspectionRescheduled Type = "inspection.rescheduled"
	InspectionCompleted   Type = "inspection.completed"
	InspectionsOverdue    Type = "inspection.overdue"
	ComplaintOpened       Type = "complaint.opened"
	ComplaintClosed       Type = "complaint.closed"
	PaymentRecorded       Type = "payment.recorded"
	InvoiceCreated        Type = "invoice.created"
	DirectoryChanged      Type = "directory.changed"
	ContractExpired       Type = "contract.expired"
	DemoReset             Type = "demo.reset"
)

type Event struct {
	Type      Type        `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func New(t Type, payload interface{}) Event {
	return Event{Type: t, Payload: payload, Timestamp: time.Now()}
}

// Publisher must not block the caller.
type Publisher interface {
	Publish(Event)
}

type NopPublisher struct{}

func (NopPublisher) Publish(Event) {}

// Recorder keeps published events in memory.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Publish(e Event) {
	r.Events = append(r.Events, e)
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []Type {
	out := make([]Type, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}
