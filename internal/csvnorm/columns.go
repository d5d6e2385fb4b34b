package csvnorm

import "strings"

// FieldSpec describes how one canonical field is located in a header row:
// an ordered alias list (priority order, first alias present in the header
// wins) plus an optional fallback predicate scanned left-to-right across
// headers when no alias matches.
type FieldSpec struct {
	Canonical string
	Aliases   []string
	Fallback  func(header string) bool
}

// Resolve returns the header name that supplies this field, or "" when
// neither an alias nor the fallback matches.
func (f FieldSpec) Resolve(headers []string) string {
	for _, alias := range f.Aliases {
		for _, h := range headers {
			if strings.EqualFold(strings.TrimSpace(h), alias) {
				return h
			}
		}
	}
	if f.Fallback != nil {
		for _, h := range headers {
			if f.Fallback(h) {
				return h
			}
		}
	}
	return ""
}

// looksLikeSendDate is the shared fallback for send-timestamp columns: any
// header containing "date" or "send", or ending in "day" ("Day", "Weekday",
// "Send Weekday" have all shipped in real exports).
func looksLikeSendDate(header string) bool {
	h := strings.ToLower(strings.TrimSpace(header))
	return strings.Contains(h, "date") || strings.Contains(h, "send") || strings.HasSuffix(h, "day")
}

// Campaign export columns. Alias order reflects how recent export formats
// name things; older names trail.
var campaignFields = struct {
	Name, SentAt, Recipients, Revenue, Opens, Clicks, Orders, Unsubs, Spam, Bounces FieldSpec
}{
	Name: FieldSpec{Canonical: "name", Aliases: []string{
		"Campaign Name", "Campaign", "Name", "Message Name", "Subject",
	}},
	SentAt: FieldSpec{Canonical: "sent_at", Aliases: []string{
		"Send Time", "Sent At", "Send Date", "Send Weekday", "Date Sent", "Date",
	}, Fallback: looksLikeSendDate},
	Recipients: FieldSpec{Canonical: "emails_sent", Aliases: []string{
		"Total Recipients", "Recipients", "Delivered", "Successful Deliveries", "Emails Sent", "Sent",
	}},
	Revenue: FieldSpec{Canonical: "revenue", Aliases: []string{
		"Revenue", "Total Revenue", "Revenue ($)", "Attributed Revenue", "Conversion Value",
	}},
	Opens: FieldSpec{Canonical: "unique_opens", Aliases: []string{
		"Unique Opens", "Opens", "Total Opens", "Opened",
	}},
	Clicks: FieldSpec{Canonical: "unique_clicks", Aliases: []string{
		"Unique Clicks", "Clicks", "Total Clicks", "Clicked",
	}},
	Orders: FieldSpec{Canonical: "total_orders", Aliases: []string{
		"Unique Placed Order", "Placed Order", "Total Orders", "Orders", "Conversions",
	}},
	Unsubs: FieldSpec{Canonical: "unsubscribes", Aliases: []string{
		"Unsubscribes", "Unsubscribed", "Unsubs",
	}},
	Spam: FieldSpec{Canonical: "spam_complaints", Aliases: []string{
		"Spam Complaints", "Spam", "Complaints", "Marked As Spam",
	}},
	Bounces: FieldSpec{Canonical: "bounces", Aliases: []string{
		"Bounces", "Bounced", "Total Bounces",
	}},
}

// Flow export columns. Flows report per-message sends, so "Delivered" leads
// the recipients aliases where campaigns lead with "Total Recipients".
var flowFields = struct {
	Name, SentAt, Delivered, Revenue, Opens, Clicks, Orders, Unsubs, Spam, Bounces FieldSpec
}{
	Name: FieldSpec{Canonical: "name", Aliases: []string{
		"Flow Name", "Flow", "Name", "Flow Message Name", "Message Name",
	}},
	SentAt: FieldSpec{Canonical: "sent_at", Aliases: []string{
		"Day", "Date", "Send Time", "Sent At", "Send Date",
	}, Fallback: looksLikeSendDate},
	Delivered: FieldSpec{Canonical: "emails_sent", Aliases: []string{
		"Delivered", "Total Recipients", "Recipients", "Emails Sent", "Sent",
	}},
	Revenue: FieldSpec{Canonical: "revenue", Aliases: []string{
		"Revenue", "Total Revenue", "Revenue ($)", "Attributed Revenue", "Conversion Value",
	}},
	Opens: FieldSpec{Canonical: "unique_opens", Aliases: []string{
		"Unique Opens", "Opens", "Total Opens", "Opened",
	}},
	Clicks: FieldSpec{Canonical: "unique_clicks", Aliases: []string{
		"Unique Clicks", "Clicks", "Total Clicks", "Clicked",
	}},
	Orders: FieldSpec{Canonical: "total_orders", Aliases: []string{
		"Unique Placed Order", "Placed Order", "Total Orders", "Orders", "Conversions",
	}},
	Unsubs: FieldSpec{Canonical: "unsubscribes", Aliases: []string{
		"Unsubscribes", "Unsubscribed", "Unsubs",
	}},
	Spam: FieldSpec{Canonical: "spam_complaints", Aliases: []string{
		"Spam Complaints", "Spam", "Complaints", "Marked As Spam",
	}},
	Bounces: FieldSpec{Canonical: "bounces", Aliases: []string{
		"Bounces", "Bounced", "Total Bounces",
	}},
}

// Subscriber export columns.
var subscriberFields = struct {
	Email, Consent, CreatedAt FieldSpec
}{
	Email: FieldSpec{Canonical: "email", Aliases: []string{
		"Email", "Email Address", "email", "E-mail",
	}, Fallback: func(h string) bool {
		return strings.Contains(strings.ToLower(h), "email")
	}},
	Consent: FieldSpec{Canonical: "consent", Aliases: []string{
		"Email Marketing Consent", "Consent", "Consent Status", "Status", "Subscription Status",
	}},
	CreatedAt: FieldSpec{Canonical: "created_at", Aliases: []string{
		"Profile Created On", "Created", "Created At", "Date Added", "Signup Date",
	}, Fallback: looksLikeSendDate},
}
