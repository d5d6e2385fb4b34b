// Package snapshot assembles the aggregate JSON document for one upload and
// runs the build pipeline that produces it: locate the three canonical CSVs,
// download and normalize them, aggregate, and wrap the result in a metadata
// envelope. The document is a rebuildable cache — the three CSVs remain the
// source of truth.
package snapshot

import (
	"time"

	"github.com/emberlabs/snapmetrics/internal/csvnorm"
	"github.com/emberlabs/snapmetrics/internal/metrics"
)

// Canonical file names. Every upload consists of these three, any of which
// may be absent.
const (
	FileCampaigns   = "campaigns.csv"
	FileFlows       = "flows.csv"
	FileSubscribers = "subscribers.csv"
)

// CanonicalFiles lists the allowed file names in locate order.
var CanonicalFiles = []string{FileCampaigns, FileFlows, FileSubscribers}

// Identity is the identifier triple a snapshot build runs under.
type Identity struct {
	SnapshotID string
	AccountID  string
	UploadID   *string
}

// RawFiles holds the raw CSV text of the three canonical files. Empty
// strings mean the file was absent; the pipeline tolerates that.
type RawFiles struct {
	Campaigns   string
	Flows       string
	Subscribers string
}

// Meta is the envelope metadata of a snapshot document.
type Meta struct {
	SnapshotID  string    `json:"snapshotId"`
	GeneratedAt time.Time `json:"generatedAt"`
	AccountID   string    `json:"accountId"`
	UploadID    *string   `json:"uploadId"`
	DateRange   DateRange `json:"dateRange"`
	Granularity string    `json:"granularity"`
	Sections    []string  `json:"sections"`
}

// DateRange is a whole-day range in YYYY-MM-DD form.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Document is the full snapshot JSON served to the dashboard and share
// views. Optional sections are omitted when their backing data is empty.
type Document struct {
	Meta      Meta                      `json:"meta"`
	Audience  *metrics.AudienceOverview `json:"audienceOverview,omitempty"`
	Email     *metrics.EmailPerformance `json:"emailPerformance,omitempty"`
	Flows     *metrics.FlowRollup       `json:"flows,omitempty"`
	Campaigns *metrics.CampaignRollup   `json:"campaigns,omitempty"`
	Dow       []metrics.DayBucket       `json:"dow,omitempty"`
	Hour      []metrics.HourBucket      `json:"hour,omitempty"`
}

// Assemble parses the raw files, aggregates them, and wraps the result.
// It never fails: missing files yield a section-sparse document, and all
// data-quality issues come back as diagnostics next to the document.
func Assemble(id Identity, files RawFiles, now time.Time) (*Document, []csvnorm.Diagnostic) {
	var diags []csvnorm.Diagnostic

	campaigns, d := csvnorm.CampaignEvents(files.Campaigns)
	diags = append(diags, d...)
	flows, d := csvnorm.FlowEvents(files.Flows)
	diags = append(diags, d...)
	subs, d := csvnorm.Subscribers(files.Subscribers)
	diags = append(diags, d...)

	events := append(campaigns, flows...)
	agg := metrics.Compute(events, subs, now)

	doc := &Document{
		Meta: Meta{
			SnapshotID:  id.SnapshotID,
			GeneratedAt: now.UTC(),
			AccountID:   id.AccountID,
			UploadID:    id.UploadID,
			DateRange: DateRange{
				Start: agg.DateStart.Format("2006-01-02"),
				End:   agg.DateEnd.Format("2006-01-02"),
			},
			Granularity: "daily",
		},
		Audience:  agg.Audience,
		Email:     agg.Performance,
		Flows:     agg.Flows,
		Campaigns: agg.Campaigns,
		Dow:       agg.DayOfWeek,
		Hour:      agg.HourOfDay,
	}
	doc.Meta.Sections = doc.sections()

	return doc, diags
}

// sections names the populated sections, in the order the dashboard
// renders them.
func (d *Document) sections() []string {
	s := []string{}
	if d.Audience != nil {
		s = append(s, "audienceOverview")
	}
	if d.Email != nil {
		s = append(s, "emailPerformance")
	}
	if d.Flows != nil {
		s = append(s, "flows")
	}
	if d.Campaigns != nil {
		s = append(s, "campaigns")
	}
	if len(d.Dow) > 0 {
		s = append(s, "dow")
	}
	if len(d.Hour) > 0 {
		s = append(s, "hour")
	}
	return s
}

// LastEmailDate returns the end of the document's date range, the value
// persisted to the snapshot row after aggregation. False when the document
// holds no dated events.
func (d *Document) LastEmailDate() (time.Time, bool) {
	if d.Email == nil {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", d.Meta.DateRange.End, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
