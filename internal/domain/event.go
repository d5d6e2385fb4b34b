package domain

import (
	"strings"
	"time"
)

// EmailCategory distinguishes one-shot campaign sends from automated flow
// messages. Both normalize into the same EmailEvent shape.
type EmailCategory string

const (
	CategoryCampaign EmailCategory = "campaign"
	CategoryFlow     EmailCategory = "flow"
)

// EmailEvent is one campaign or one flow-message send, normalized from a CSV
// row. It is ephemeral: recomputed on every snapshot build, never persisted.
type EmailEvent struct {
	Category   EmailCategory
	Name       string
	SentAt     *time.Time // nil when the source timestamp was unparseable
	EmailsSent int        // recipients for campaigns, delivered for flows
	Revenue    float64

	UniqueOpens    int
	UniqueClicks   int
	TotalOrders    int
	Unsubscribes   int
	SpamComplaints int
	Bounces        int
}

// Dated reports whether the event carries a usable send timestamp.
// Undated events are excluded from all time-based aggregation.
func (e EmailEvent) Dated() bool { return e.SentAt != nil }

// Subscriber is one row of the subscribers export.
type Subscriber struct {
	Email     string
	Consent   string // free-text consent status from the source platform
	CreatedAt *time.Time
}

// Subscribed reports whether the consent status counts as subscribed.
// Matching is case-insensitive and tolerant of decorated values like
// "Subscribed (email)", but "unsubscribed" must not match even though
// it contains the shorter word.
func (s Subscriber) Subscribed() bool {
	c := strings.ToLower(strings.TrimSpace(s.Consent))
	return strings.Contains(c, "subscribed") && !strings.Contains(c, "unsubscribed")
}
