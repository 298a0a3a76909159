package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSubscriptionIsTrialActive(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	sub := Subscription{Status: SubscriptionStatusTrial, TrialEndDate: now.AddDate(0, 0, 3)}

	assert.True(t, sub.IsTrialActive(now))
	assert.False(t, sub.IsTrialActive(sub.TrialEndDate), "trial ends exactly at the boundary")
	assert.False(t, sub.IsTrialActive(sub.TrialEndDate.Add(time.Second)))

	sub.Status = SubscriptionStatusExpired
	assert.False(t, sub.IsTrialActive(now))
}

func TestSubscriptionIsSubscriptionActive(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 1, 0)

	sub := Subscription{Status: SubscriptionStatusActive, SubscriptionEndDate: &end}
	assert.True(t, sub.IsSubscriptionActive(now))
	assert.False(t, sub.IsSubscriptionActive(end))

	assert.False(t, Subscription{Status: SubscriptionStatusActive}.IsSubscriptionActive(now),
		"active status without an end date grants nothing")

	sub.Status = SubscriptionStatusCanceled
	assert.False(t, sub.IsSubscriptionActive(now))
}

func TestSubscriptionHasAccess(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	end := now.AddDate(0, 1, 0)

	trial := Subscription{Status: SubscriptionStatusTrial, TrialEndDate: now.AddDate(0, 0, 2)}
	assert.True(t, trial.HasAccess(now))

	paid := Subscription{Status: SubscriptionStatusActive, SubscriptionEndDate: &end}
	assert.True(t, paid.HasAccess(now))

	pending := Subscription{
		Status:       SubscriptionStatusPendingPaymentMethod,
		TrialEndDate: now.AddDate(0, 0, 2),
	}
	assert.False(t, pending.HasAccess(now), "pending payment method blocks access even with trial time left")

	expired := Subscription{Status: SubscriptionStatusExpired, TrialEndDate: now.AddDate(0, 0, -1)}
	assert.False(t, expired.HasAccess(now))
}

func TestSubscriptionDaysRemaining(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	trial := Subscription{Status: SubscriptionStatusTrial, TrialEndDate: now.Add(36 * time.Hour)}
	assert.Equal(t, 2, trial.DaysRemaining(now), "partial days round up")

	exact := Subscription{Status: SubscriptionStatusTrial, TrialEndDate: now.Add(48 * time.Hour)}
	assert.Equal(t, 2, exact.DaysRemaining(now))

	end := now.Add(12 * time.Hour)
	paid := Subscription{Status: SubscriptionStatusActive, SubscriptionEndDate: &end}
	assert.Equal(t, 1, paid.DaysRemaining(now))

	assert.Equal(t, 0, Subscription{Status: SubscriptionStatusExpired}.DaysRemaining(now))
}
