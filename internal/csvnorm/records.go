package csvnorm

import (
	"fmt"

	"github.com/emberlabs/snapmetrics/internal/domain"
)

// Diagnostic records one tolerated data-quality issue: a cell that coerced
// to zero, a timestamp that would not parse, a row dropped for a missing
// required field. The pipeline never fails on these; callers decide whether
// to log or surface them.
type Diagnostic struct {
	File   string `json:"file"`
	Row    int    `json:"row"` // 1-based data row number (header excluded)
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s row %d field %q value %q: %s", d.File, d.Row, d.Field, d.Value, d.Reason)
}

// eventColumns is the resolved header mapping for one event-type CSV.
type eventColumns struct {
	name, sentAt, emailsSent, revenue       string
	opens, clicks, orders, unsubs, spam, bn string
}

func resolveEventColumns(headers []string, campaign bool) eventColumns {
	f := flowFields
	if campaign {
		return eventColumns{
			name:       campaignFields.Name.Resolve(headers),
			sentAt:     campaignFields.SentAt.Resolve(headers),
			emailsSent: campaignFields.Recipients.Resolve(headers),
			revenue:    campaignFields.Revenue.Resolve(headers),
			opens:      campaignFields.Opens.Resolve(headers),
			clicks:     campaignFields.Clicks.Resolve(headers),
			orders:     campaignFields.Orders.Resolve(headers),
			unsubs:     campaignFields.Unsubs.Resolve(headers),
			spam:       campaignFields.Spam.Resolve(headers),
			bn:         campaignFields.Bounces.Resolve(headers),
		}
	}
	return eventColumns{
		name:       f.Name.Resolve(headers),
		sentAt:     f.SentAt.Resolve(headers),
		emailsSent: f.Delivered.Resolve(headers),
		revenue:    f.Revenue.Resolve(headers),
		opens:      f.Opens.Resolve(headers),
		clicks:     f.Clicks.Resolve(headers),
		orders:     f.Orders.Resolve(headers),
		unsubs:     f.Unsubs.Resolve(headers),
		spam:       f.Spam.Resolve(headers),
		bn:         f.Bounces.Resolve(headers),
	}
}

// CampaignEvents parses campaigns.csv text into email events.
func CampaignEvents(text string) ([]domain.EmailEvent, []Diagnostic) {
	return events(text, "campaigns.csv", domain.CategoryCampaign)
}

// FlowEvents parses flows.csv text into email events.
func FlowEvents(text string) ([]domain.EmailEvent, []Diagnostic) {
	return events(text, "flows.csv", domain.CategoryFlow)
}

func events(text, file string, cat domain.EmailCategory) ([]domain.EmailEvent, []Diagnostic) {
	table := Parse(text)
	if table.Empty() {
		return nil, nil
	}

	cols := resolveEventColumns(table.Headers, cat == domain.CategoryCampaign)
	var out []domain.EmailEvent
	var diags []Diagnostic

	count := func(row map[string]string, rowNum int, col string) int {
		if col == "" {
			return 0
		}
		v, ok := Count(row[col])
		if !ok {
			diags = append(diags, Diagnostic{
				File: file, Row: rowNum, Field: col, Value: row[col],
				Reason: "non-numeric value coerced to 0",
			})
		}
		return v
	}

	for i, row := range table.Rows {
		rowNum := i + 1
		ev := domain.EmailEvent{Category: cat, Name: row[cols.name]}

		if cols.sentAt != "" {
			ev.SentAt = Timestamp(row[cols.sentAt])
			if ev.SentAt == nil && row[cols.sentAt] != "" {
				diags = append(diags, Diagnostic{
					File: file, Row: rowNum, Field: cols.sentAt, Value: row[cols.sentAt],
					Reason: "unparseable timestamp, event excluded from time aggregation",
				})
			}
		}

		if cols.revenue != "" {
			v, ok := Number(row[cols.revenue])
			if !ok {
				diags = append(diags, Diagnostic{
					File: file, Row: rowNum, Field: cols.revenue, Value: row[cols.revenue],
					Reason: "non-numeric value coerced to 0",
				})
			}
			if v < 0 {
				v = 0
			}
			ev.Revenue = v
		}

		ev.EmailsSent = count(row, rowNum, cols.emailsSent)
		ev.UniqueOpens = count(row, rowNum, cols.opens)
		ev.UniqueClicks = count(row, rowNum, cols.clicks)
		ev.TotalOrders = count(row, rowNum, cols.orders)
		ev.Unsubscribes = count(row, rowNum, cols.unsubs)
		ev.SpamComplaints = count(row, rowNum, cols.spam)
		ev.Bounces = count(row, rowNum, cols.bn)

		out = append(out, ev)
	}

	return out, diags
}

// Subscribers parses subscribers.csv text. Rows without an email are dropped
// (with a diagnostic); everything else is tolerated.
func Subscribers(text string) ([]domain.Subscriber, []Diagnostic) {
	table := Parse(text)
	if table.Empty() {
		return nil, nil
	}

	emailCol := subscriberFields.Email.Resolve(table.Headers)
	consentCol := subscriberFields.Consent.Resolve(table.Headers)
	createdCol := subscriberFields.CreatedAt.Resolve(table.Headers)

	var out []domain.Subscriber
	var diags []Diagnostic

	for i, row := range table.Rows {
		rowNum := i + 1
		email := ""
		if emailCol != "" {
			email = row[emailCol]
		}
		if email == "" {
			diags = append(diags, Diagnostic{
				File: "subscribers.csv", Row: rowNum, Field: emailCol,
				Reason: "missing email, row dropped",
			})
			continue
		}

		sub := domain.Subscriber{Email: email}
		if consentCol != "" {
			sub.Consent = row[consentCol]
		}
		if createdCol != "" {
			sub.CreatedAt = Timestamp(row[createdCol])
		}
		out = append(out, sub)
	}

	return out, diags
}
