package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShareLinkValidity(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	future := now.Add(time.Hour)
	past := now.Add(-time.Hour)

	tests := []struct {
		name    string
		link    ShareLink
		valid   bool
		expired bool
	}{
		{"active no expiry", ShareLink{IsActive: true}, true, false},
		{"active future expiry", ShareLink{IsActive: true, ExpiresAt: &future}, true, false},
		{"active past expiry", ShareLink{IsActive: true, ExpiresAt: &past}, false, true},
		{"active expires exactly now", ShareLink{IsActive: true, ExpiresAt: &now}, false, true},
		{"inactive", ShareLink{IsActive: false}, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, tt.link.Valid(now))
			assert.Equal(t, tt.expired, tt.link.Expired(now))
		})
	}
}

func TestSnapshotComplete(t *testing.T) {
	u, empty := "u1", ""
	assert.True(t, Snapshot{UploadID: &u}.Complete())
	assert.False(t, Snapshot{UploadID: &empty}.Complete())
	assert.False(t, Snapshot{}.Complete())
}

func TestSubscriberSubscribed(t *testing.T) {
	tests := []struct {
		consent string
		want    bool
	}{
		{"Subscribed", true},
		{"SUBSCRIBED", true},
		{"subscribed", true},
		{"Unsubscribed", false},
		{"UNSUBSCRIBED", false},
		{"", false},
		{"Pending", false},
	}

	for _, tt := range tests {
		t.Run(tt.consent, func(t *testing.T) {
			s := Subscriber{Email: "a@x.com", Consent: tt.consent}
			assert.Equal(t, tt.want, s.Subscribed())
		})
	}
}

func TestEmailEventDated(t *testing.T) {
	now := time.Now()
	assert.True(t, EmailEvent{SentAt: &now}.Dated())
	assert.False(t, EmailEvent{}.Dated())
}
