package outbox

import (
	"time"

	"github.com/devzoku/devzoku-api/internal/models"
	"github.com/devzoku/devzoku-api/internal/queue"
)

// Kind names an intent in logs and metrics.
type Kind string

const (
	KindNotify      Kind = "notify"
	KindEmail       Kind = "email"
	KindInteraction Kind = "interaction"
)

// Intent is a side effect requested by a committed operation.
type Intent interface {
	Kind() Kind
}

// Notify persists Notification into each recipient's profile and pushes it
// as Event over the realtime hub.
type Notify struct {
	Recipients   []uint64
	Event        string
	Notification models.Notification
}

func (Notify) Kind() Kind { return KindNotify }

// EnqueueEmail hands Job to the email queue.
type EnqueueEmail struct {
	Job queue.Job
}

func (EnqueueEmail) Kind() Kind { return KindEmail }

// RecordInteraction appends Interaction to the log. A view or register is
// skipped when the same user viewed the same hackathon within DedupWindow.
type RecordInteraction struct {
	Interaction models.UserInteraction
	DedupWindow time.Duration
}

func (RecordInteraction) Kind() Kind { return KindInteraction }

// Intents is the ordered list of side effects produced by one operation.
type Intents []Intent

// Add appends intents.
func (i *Intents) Add(intents ...Intent) {
	*i = append(*i, intents...)
}

// Emails returns the email jobs in order.
func (i Intents) Emails() []queue.Job {
	var jobs []queue.Job
	for _, intent := range i {
		if e, ok := intent.(EnqueueEmail); ok {
			jobs = append(jobs, e.Job)
		}
	}
	return jobs
}

// Notifications returns the notify intents in order.
func (i Intents) Notifications() []Notify {
	var out []Notify
	for _, intent := range i {
		if n, ok := intent.(Notify); ok {
			out = append(out, n)
		}
	}
	return out
}

// Interactions returns the interaction intents in order.
func (i Intents) Interactions() []RecordInteraction {
	var out []RecordInteraction
	for _, intent := range i {
		if r, ok := intent.(RecordInteraction); ok {
			out = append(out, r)
		}
	}
	return out
}
