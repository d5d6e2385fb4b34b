// Package metrics computes the aggregate performance view over one upload's
// normalized email events and subscribers: totals, derived rates, audience
// breakdown, and the per-flow / per-campaign / day-of-week / hour-of-day
// rollups the dashboard renders.
package metrics

import (
	"math"
	"sort"
	"time"

	"github.com/emberlabs/snapmetrics/internal/domain"
)

// TopCampaignLimit caps the campaign rollup; the dashboard renders at most
// this many rows.
const TopCampaignLimit = 25

// Totals are raw sums across all dated events, both categories combined.
type Totals struct {
	Revenue        float64 `json:"revenue"`
	EmailsSent     int     `json:"emailsSent"`
	TotalOrders    int     `json:"totalOrders"`
	UniqueOpens    int     `json:"uniqueOpens"`
	UniqueClicks   int     `json:"uniqueClicks"`
	Unsubscribes   int     `json:"unsubscribes"`
	SpamComplaints int     `json:"spamComplaints"`
	Bounces        int     `json:"bounces"`
}

// Derived are the ratio metrics. Percentages are 0–100; RevenuePerEmail and
// AvgOrderValue are currency amounts. Every ratio is 0 when its denominator
// is 0 — never NaN or Inf.
type Derived struct {
	OpenRate        float64 `json:"openRate"`
	ClickRate       float64 `json:"clickRate"`
	ClickToOpenRate float64 `json:"clickToOpenRate"`
	ConversionRate  float64 `json:"conversionRate"`
	RevenuePerEmail float64 `json:"revenuePerEmail"`
	AvgOrderValue   float64 `json:"avgOrderValue"`
	UnsubscribeRate float64 `json:"unsubscribeRate"`
	SpamRate        float64 `json:"spamRate"`
	BounceRate      float64 `json:"bounceRate"`
}

// EmailPerformance combines totals with their derived rates.
type EmailPerformance struct {
	Totals  Totals  `json:"totals"`
	Derived Derived `json:"derived"`
}

// AudienceOverview summarizes the subscriber list.
type AudienceOverview struct {
	TotalSubscribers  int     `json:"totalSubscribers"`
	SubscribedCount   int     `json:"subscribedCount"`
	UnsubscribedCount int     `json:"unsubscribedCount"`
	PercentSubscribed float64 `json:"percentSubscribed"`
}

// FlowName is one flow's aggregate row.
type FlowName struct {
	Name    string  `json:"name"`
	Emails  int     `json:"emails"`
	Revenue float64 `json:"revenue"`
}

// FlowRollup groups flow events by name.
type FlowRollup struct {
	TotalFlowEmails int        `json:"totalFlowEmails"`
	FlowNames       []FlowName `json:"flowNames"`
}

// CampaignRow is one campaign's aggregate row.
type CampaignRow struct {
	Name       string  `json:"name"`
	Revenue    float64 `json:"revenue"`
	EmailsSent int     `json:"emailsSent"`
}

// CampaignRollup lists individual campaigns, top revenue first.
type CampaignRollup struct {
	TotalCampaigns int           `json:"totalCampaigns"`
	TopByRevenue   []CampaignRow `json:"topByRevenue"`
}

// DayBucket accumulates metrics for one weekday (0=Sunday .. 6=Saturday).
type DayBucket struct {
	Dow        int     `json:"dow"`
	Revenue    float64 `json:"revenue"`
	EmailsSent int     `json:"emailsSent"`
	Orders     int     `json:"orders"`
}

// HourBucket accumulates metrics for one hour of day (0–23).
type HourBucket struct {
	Hour       int     `json:"hour"`
	Revenue    float64 `json:"revenue"`
	EmailsSent int     `json:"emailsSent"`
	Orders     int     `json:"orders"`
}

// Aggregate is the full computed view. Section pointers are nil when their
// backing data is empty; absent sections mean "nothing to render", not an
// error.
type Aggregate struct {
	DateStart time.Time
	DateEnd   time.Time

	Audience    *AudienceOverview
	Performance *EmailPerformance
	Flows       *FlowRollup
	Campaigns   *CampaignRollup
	DayOfWeek   []DayBucket  // 7 entries when present
	HourOfDay   []HourBucket // 24 entries when present
}

// Compute aggregates events and subscribers. Events without a parseable send
// time are excluded entirely: they contribute to no totals, no buckets, and
// do not affect the date range. When no dated events exist, the date range
// collapses to today (a single-day range).
func Compute(events []domain.EmailEvent, subs []domain.Subscriber, now time.Time) *Aggregate {
	var dated []domain.EmailEvent
	for _, e := range events {
		if e.Dated() {
			dated = append(dated, e)
		}
	}

	agg := &Aggregate{}

	if len(dated) == 0 {
		today := now.UTC().Truncate(24 * time.Hour)
		agg.DateStart, agg.DateEnd = today, today
	} else {
		min, max := *dated[0].SentAt, *dated[0].SentAt
		for _, e := range dated[1:] {
			if e.SentAt.Before(min) {
				min = *e.SentAt
			}
			if e.SentAt.After(max) {
				max = *e.SentAt
			}
		}
		agg.DateStart = min.Truncate(24 * time.Hour)
		agg.DateEnd = max.Truncate(24 * time.Hour)
	}

	if len(dated) > 0 {
		agg.Performance = computePerformance(dated)
		agg.DayOfWeek, agg.HourOfDay = computeTimeBuckets(dated)
	}

	if flows := flowRollup(dated); flows != nil {
		agg.Flows = flows
	}
	if campaigns := campaignRollup(dated); campaigns != nil {
		agg.Campaigns = campaigns
	}
	if len(subs) > 0 {
		agg.Audience = audienceOverview(subs)
	}

	return agg
}

func computePerformance(events []domain.EmailEvent) *EmailPerformance {
	var t Totals
	for _, e := range events {
		t.Revenue += e.Revenue
		t.EmailsSent += e.EmailsSent
		t.TotalOrders += e.TotalOrders
		t.UniqueOpens += e.UniqueOpens
		t.UniqueClicks += e.UniqueClicks
		t.Unsubscribes += e.Unsubscribes
		t.SpamComplaints += e.SpamComplaints
		t.Bounces += e.Bounces
	}

	d := Derived{
		OpenRate:        pct(float64(t.UniqueOpens), float64(t.EmailsSent)),
		ClickRate:       pct(float64(t.UniqueClicks), float64(t.EmailsSent)),
		ClickToOpenRate: pct(float64(t.UniqueClicks), float64(t.UniqueOpens)),
		ConversionRate:  pct(float64(t.TotalOrders), float64(t.UniqueClicks)),
		RevenuePerEmail: ratio(t.Revenue, float64(t.EmailsSent)),
		AvgOrderValue:   ratio(t.Revenue, float64(t.TotalOrders)),
		UnsubscribeRate: pct(float64(t.Unsubscribes), float64(t.EmailsSent)),
		SpamRate:        pct(float64(t.SpamComplaints), float64(t.EmailsSent)),
		BounceRate:      pct(float64(t.Bounces), float64(t.EmailsSent)),
	}

	t.Revenue = round2(t.Revenue)
	return &EmailPerformance{Totals: t, Derived: d}
}

func computeTimeBuckets(events []domain.EmailEvent) ([]DayBucket, []HourBucket) {
	dow := make([]DayBucket, 7)
	for i := range dow {
		dow[i].Dow = i
	}
	hours := make([]HourBucket, 24)
	for i := range hours {
		hours[i].Hour = i
	}

	for _, e := range events {
		d := int(e.SentAt.Weekday())
		dow[d].Revenue = round2(dow[d].Revenue + e.Revenue)
		dow[d].EmailsSent += e.EmailsSent
		dow[d].Orders += e.TotalOrders

		h := e.SentAt.Hour()
		hours[h].Revenue = round2(hours[h].Revenue + e.Revenue)
		hours[h].EmailsSent += e.EmailsSent
		hours[h].Orders += e.TotalOrders
	}

	return dow, hours
}

func flowRollup(events []domain.EmailEvent) *FlowRollup {
	sums := make(map[string]*FlowName)
	var order []string
	total := 0

	for _, e := range events {
		if e.Category != domain.CategoryFlow {
			continue
		}
		f, ok := sums[e.Name]
		if !ok {
			f = &FlowName{Name: e.Name}
			sums[e.Name] = f
			order = append(order, e.Name)
		}
		f.Emails += e.EmailsSent
		f.Revenue = round2(f.Revenue + e.Revenue)
		total += e.EmailsSent
	}
	if len(sums) == 0 {
		return nil
	}

	names := make([]FlowName, 0, len(order))
	for _, n := range order {
		names = append(names, *sums[n])
	}
	sort.SliceStable(names, func(i, j int) bool { return names[i].Revenue > names[j].Revenue })

	return &FlowRollup{TotalFlowEmails: total, FlowNames: names}
}

func campaignRollup(events []domain.EmailEvent) *CampaignRollup {
	var rows []CampaignRow
	for _, e := range events {
		if e.Category != domain.CategoryCampaign {
			continue
		}
		rows = append(rows, CampaignRow{
			Name:       e.Name,
			Revenue:    round2(e.Revenue),
			EmailsSent: e.EmailsSent,
		})
	}
	if len(rows) == 0 {
		return nil
	}

	total := len(rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Revenue > rows[j].Revenue })
	if len(rows) > TopCampaignLimit {
		rows = rows[:TopCampaignLimit]
	}

	return &CampaignRollup{TotalCampaigns: total, TopByRevenue: rows}
}

func audienceOverview(subs []domain.Subscriber) *AudienceOverview {
	subscribed := 0
	for _, s := range subs {
		if s.Subscribed() {
			subscribed++
		}
	}
	total := len(subs)
	return &AudienceOverview{
		TotalSubscribers:  total,
		SubscribedCount:   subscribed,
		UnsubscribedCount: total - subscribed,
		PercentSubscribed: pct(float64(subscribed), float64(total)),
	}
}

// pct is numerator/denominator*100, 0 when the denominator is 0.
func pct(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return round2(num / den * 100)
}

// ratio is a plain quotient (currency amounts), 0 when the denominator is 0.
func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return round2(num / den)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
