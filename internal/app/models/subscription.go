package models

import (
	"math"
	"time"

	"github.com/google/uuid"
)

const (
	PlanBasic        = "BASIC"
	PlanProfessional = "PROFESSIONAL"
	PlanEnterprise   = "ENTERPRISE"
)

const (
	SubscriptionStatusTrial                = "TRIAL"
	SubscriptionStatusActive               = "ACTIVE"
	SubscriptionStatusExpired              = "EXPIRED"
	SubscriptionStatusCanceled             = "CANCELED"
	SubscriptionStatusPendingPaymentMethod = "PENDING_PAYMENT_METHOD"
	SubscriptionStatusPastDue              = "PAST_DUE"
)

const TrialDurationDays = 7

type Subscription struct {
	ID                    uuid.UUID  `json:"id"`
	UserID                uuid.UUID  `json:"userId"`
	PlanType              string     `json:"planType"`
	Status                string     `json:"status"`
	TrialStartDate        time.Time  `json:"trialStartDate"`
	TrialEndDate          time.Time  `json:"trialEndDate"`
	SubscriptionStartDate *time.Time `json:"subscriptionStartDate,omitempty"`
	SubscriptionEndDate   *time.Time `json:"subscriptionEndDate,omitempty"`
	CurrentPeriodStart    *time.Time `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd      *time.Time `json:"currentPeriodEnd,omitempty"`
	LastPaymentDate       *time.Time `json:"lastPaymentDate,omitempty"`
	NextBillingDate       *time.Time `json:"nextBillingDate,omitempty"`
	PaymentMethodID       *string    `json:"paymentMethodId,omitempty"`
	StripeCustomerID      *string    `json:"stripeCustomerId,omitempty"`
	AutoRenew             bool       `json:"autoRenew"`
	CancelAtPeriodEnd     bool       `json:"cancelAtPeriodEnd"`
	IsActive              bool       `json:"isActive"`
	CreatedAt             time.Time  `json:"createdAt"`
	UpdatedAt             time.Time  `json:"updatedAt"`
}

// IsTrialActive reports whether the subscription is in an unexpired trial.
// Derived on read, never persisted.
func (s Subscription) IsTrialActive(now time.Time) bool {
	return s.Status == SubscriptionStatusTrial && now.Before(s.TrialEndDate)
}

// IsSubscriptionActive reports whether a paid subscription is current.
func (s Subscription) IsSubscriptionActive(now time.Time) bool {
	return s.Status == SubscriptionStatusActive &&
		s.SubscriptionEndDate != nil &&
		now.Before(*s.SubscriptionEndDate)
}

// HasAccess reports whether the user may use the application. A subscription
// awaiting a payment method never grants access.
func (s Subscription) HasAccess(now time.Time) bool {
	if s.Status == SubscriptionStatusPendingPaymentMethod {
		return false
	}
	return s.IsTrialActive(now) || s.IsSubscriptionActive(now)
}

// DaysRemaining returns the whole days left in the trial or paid period,
// rounded up. Zero when nothing is active.
func (s Subscription) DaysRemaining(now time.Time) int {
	var end time.Time
	switch {
	case s.IsTrialActive(now):
		end = s.TrialEndDate
	case s.IsSubscriptionActive(now):
		end = *s.SubscriptionEndDate
	default:
		return 0
	}
	days := math.Ceil(end.Sub(now).Hours() / 24)
	if days < 0 {
		return 0
	}
	return int(days)
}

// PlanLimits describes the quota attached to a plan. Negative one means
// unlimited.
type PlanLimits struct {
	Fields     int      `json:"fields"`
	Crops      int      `json:"crops"`
	Equipment  int      `json:"equipment"`
	AIRequests int      `json:"aiRequests"`
	StorageGB  int      `json:"storageGb"`
	Features   []string `json:"features"`
}

type Payment struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Reference string    `json:"reference"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Status    string    `json:"status"`
	PlanType  string    `json:"planType"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

type SubscriptionStatusResponse struct {
	Subscription         *Subscription `json:"subscription"`
	IsTrialActive        bool          `json:"isTrialActive"`
	IsSubscriptionActive bool          `json:"isSubscriptionActive"`
	HasAccess            bool          `json:"hasAccess"`
	DaysRemaining        int           `json:"daysRemaining"`
	Limits               PlanLimits    `json:"limits"`
}
