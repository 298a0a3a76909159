package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/models"
	"github.com/farmflow/backend/internal/app/observability/metrics"
)

// PaymentProvider is the billing surface the service needs. Implemented by
// the Stripe wrapper.
type PaymentProvider interface {
	Enabled() bool
	CreatePaymentIntent(amount int64, currency string, metadata map[string]interface{}) (string, string, error)
	GetPaymentStatus(paymentIntentID string) (string, error)
	CreateCustomer(userID uuid.UUID, email string, metadata map[string]interface{}) (string, error)
	DeleteCustomer(customerID string) error
	CreateSetupIntent(customerID string) (string, string, error)
	AttachPaymentMethod(customerID, paymentMethodID string) error
	RefundPayment(paymentIntentID string, amount *int64) error
}

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreateUserSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	GetOrCreateUserSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	GetSubscriptionStatus(ctx context.Context, userID uuid.UUID) (*models.SubscriptionStatusResponse, error)
	HasAccess(ctx context.Context, userID uuid.UUID) (bool, error)
	UpgradeSubscription(ctx context.Context, userID uuid.UUID, planType, paymentReference string) (*models.Subscription, error)
	CancelSubscription(ctx context.Context, userID uuid.UUID, atPeriodEnd bool) (*models.Subscription, error)
	AddPaymentMethodAndActivateTrial(ctx context.Context, userID uuid.UUID, paymentMethodID string) (*models.Subscription, error)
	CreateSetupIntent(ctx context.Context, userID uuid.UUID) (*SetupIntentResponse, error)
	CreatePaymentIntent(ctx context.Context, userID uuid.UUID, planType string) (*PaymentIntentResponse, error)
	ConfirmPayment(ctx context.Context, userID uuid.UUID, reference string) (*models.Subscription, error)
	ProcessExpiredTrials(ctx context.Context) (int, error)
}

type ServiceImpl struct {
	logger   *zap.Logger
	repo     Repository
	payments PaymentProvider
}

func NewService(repo Repository, payments PaymentProvider, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{logger: logger, repo: repo, payments: payments}
}

// Plan prices in cents per month.
var planPriceCents = map[string]int64{
	models.PlanBasic:        999,
	models.PlanProfessional: 2999,
	models.PlanEnterprise:   9999,
}

var planLimits = map[string]models.PlanLimits{
	models.PlanBasic: {
		Fields: 5, Crops: 10, Equipment: 5, AIRequests: 50, StorageGB: 1,
		Features: []string{"dashboard", "crop_tracking", "basic_insights"},
	},
	models.PlanProfessional: {
		Fields: 25, Crops: 50, Equipment: 20, AIRequests: 200, StorageGB: 10,
		Features: []string{"dashboard", "crop_tracking", "basic_insights", "weather_insights", "financials"},
	},
	models.PlanEnterprise: {
		Fields: -1, Crops: -1, Equipment: -1, AIRequests: -1, StorageGB: 100,
		Features: []string{"dashboard", "crop_tracking", "basic_insights", "weather_insights", "financials", "ai_chat", "priority_support"},
	},
}

// PlanLimitsFor returns the quota for a plan, falling back to the basic plan
// for unknown values.
func PlanLimitsFor(planType string) models.PlanLimits {
	if limits, ok := planLimits[planType]; ok {
		return limits
	}
	return planLimits[models.PlanBasic]
}

func validPlan(planType string) bool {
	_, ok := planPriceCents[planType]
	return ok
}

// CreateUserSubscription starts a trial on the basic plan. Called at signup.
func (s *ServiceImpl) CreateUserSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	now := time.Now().UTC()
	sub := &models.Subscription{
		UserID:         userID,
		PlanType:       models.PlanBasic,
		Status:         models.SubscriptionStatusTrial,
		TrialStartDate: now,
		TrialEndDate:   now.AddDate(0, 0, models.TrialDurationDays),
		AutoRenew:      true,
		IsActive:       true,
	}
	created, err := s.repo.Create(ctx, sub)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Trial subscription created",
		zap.String("user_id", userID.String()),
		zap.Time("trial_end", created.TrialEndDate),
	)
	return created, nil
}

// GetOrCreateUserSubscription fetches the user's subscription, creating a
// trial when none exists yet.
func (s *ServiceImpl) GetOrCreateUserSubscription(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	sub, err := s.repo.GetByUserID(ctx, userID)
	if err == nil {
		return sub, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	created, err := s.CreateUserSubscription(ctx, userID)
	if err != nil {
		// Another request may have created it in the meantime.
		if errors.Is(err, models.ErrConflict) {
			return s.repo.GetByUserID(ctx, userID)
		}
		return nil, err
	}
	return created, nil
}

func (s *ServiceImpl) GetSubscriptionStatus(ctx context.Context, userID uuid.UUID) (*models.SubscriptionStatusResponse, error) {
	sub, err := s.GetOrCreateUserSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	return &models.SubscriptionStatusResponse{
		Subscription:         sub,
		IsTrialActive:        sub.IsTrialActive(now),
		IsSubscriptionActive: sub.IsSubscriptionActive(now),
		HasAccess:            sub.HasAccess(now),
		DaysRemaining:        sub.DaysRemaining(now),
		Limits:               PlanLimitsFor(sub.PlanType),
	}, nil
}

func (s *ServiceImpl) HasAccess(ctx context.Context, userID uuid.UUID) (bool, error) {
	sub, err := s.GetOrCreateUserSubscription(ctx, userID)
	if err != nil {
		return false, err
	}
	return sub.HasAccess(time.Now().UTC()), nil
}

// UpgradeSubscription activates a paid plan for one month after a completed
// payment.
func (s *ServiceImpl) UpgradeSubscription(ctx context.Context, userID uuid.UUID, planType, paymentReference string) (*models.Subscription, error) {
	if !validPlan(planType) {
		return nil, fmt.Errorf("unknown plan %q: %w", planType, models.ErrValidation)
	}
	sub, err := s.GetOrCreateUserSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	periodEnd := now.AddDate(0, 1, 0)

	sub.PlanType = planType
	sub.Status = models.SubscriptionStatusActive
	sub.SubscriptionStartDate = &now
	sub.SubscriptionEndDate = &periodEnd
	sub.CurrentPeriodStart = &now
	sub.CurrentPeriodEnd = &periodEnd
	sub.LastPaymentDate = &now
	sub.NextBillingDate = &periodEnd
	sub.CancelAtPeriodEnd = false
	sub.IsActive = true

	updated, err := s.repo.Update(ctx, sub)
	if err != nil {
		return nil, err
	}

	if paymentReference != "" {
		if _, err := s.repo.UpdatePaymentStatus(ctx, paymentReference, models.PaymentStatusCompleted); err != nil {
			s.logger.Warn("Failed to mark payment completed",
				zap.String("reference", paymentReference),
				zap.Error(err),
			)
		}
	}

	s.logger.Info("Subscription upgraded",
		zap.String("user_id", userID.String()),
		zap.String("plan", planType),
	)
	return updated, nil
}

// CancelSubscription cancels immediately or at the end of the paid period.
// Cancelling an unfinished paid period immediately refunds its payment.
func (s *ServiceImpl) CancelSubscription(ctx context.Context, userID uuid.UUID, atPeriodEnd bool) (*models.Subscription, error) {
	sub, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if atPeriodEnd && sub.Status == models.SubscriptionStatusActive {
		sub.CancelAtPeriodEnd = true
		sub.AutoRenew = false
	} else {
		if sub.IsSubscriptionActive(time.Now().UTC()) {
			s.refundCurrentPeriod(ctx, userID)
		}
		sub.Status = models.SubscriptionStatusCanceled
		sub.AutoRenew = false
		sub.IsActive = false
	}

	updated, err := s.repo.Update(ctx, sub)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Subscription canceled",
		zap.String("user_id", userID.String()),
		zap.Bool("at_period_end", atPeriodEnd),
	)
	return updated, nil
}

// refundCurrentPeriod refunds the latest completed payment in full. Failures
// are logged, the cancellation itself still goes through.
func (s *ServiceImpl) refundCurrentPeriod(ctx context.Context, userID uuid.UUID) {
	if !s.payments.Enabled() {
		return
	}
	payment, err := s.repo.GetLatestCompletedPayment(ctx, userID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			s.logger.Warn("Refund lookup failed", zap.String("user_id", userID.String()), zap.Error(err))
		}
		return
	}
	if err := s.payments.RefundPayment(payment.Reference, nil); err != nil {
		s.logger.Error("Refund failed",
			zap.String("user_id", userID.String()),
			zap.String("reference", payment.Reference),
			zap.Error(err),
		)
		return
	}
	if _, err := s.repo.UpdatePaymentStatus(ctx, payment.Reference, models.PaymentStatusRefunded); err != nil {
		s.logger.Warn("Failed to mark payment refunded", zap.String("reference", payment.Reference), zap.Error(err))
	}
	metrics.Get().RecordPayment(ctx, models.PaymentStatusRefunded)
	s.logger.Info("Payment refunded",
		zap.String("user_id", userID.String()),
		zap.String("reference", payment.Reference),
	)
}

// ensureCustomer returns the subscription's billing customer ID, creating one
// with the provider on first use. The new ID is stored on sub but not yet
// persisted; created reports whether this call made it.
func (s *ServiceImpl) ensureCustomer(sub *models.Subscription) (customerID string, created bool, err error) {
	if sub.StripeCustomerID != nil && *sub.StripeCustomerID != "" {
		return *sub.StripeCustomerID, false, nil
	}
	customerID, err = s.payments.CreateCustomer(sub.UserID, "", nil)
	if err != nil {
		return "", false, fmt.Errorf("customer creation failed: %w", err)
	}
	sub.StripeCustomerID = &customerID
	return customerID, true, nil
}

// AddPaymentMethodAndActivateTrial attaches the payment method to the user's
// billing customer and stores it as the renewal default. A subscription
// parked in the pending state returns to an active trial when the trial
// window has time left, otherwise it stays pending until payment.
func (s *ServiceImpl) AddPaymentMethodAndActivateTrial(ctx context.Context, userID uuid.UUID, paymentMethodID string) (*models.Subscription, error) {
	if paymentMethodID == "" {
		return nil, fmt.Errorf("paymentMethodId is required: %w", models.ErrValidation)
	}
	sub, err := s.GetOrCreateUserSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.payments.Enabled() {
		customerID, created, err := s.ensureCustomer(sub)
		if err != nil {
			return nil, err
		}
		if err := s.payments.AttachPaymentMethod(customerID, paymentMethodID); err != nil {
			if created {
				if delErr := s.payments.DeleteCustomer(customerID); delErr != nil {
					s.logger.Warn("Failed to clean up orphaned customer",
						zap.String("customer_id", customerID),
						zap.Error(delErr),
					)
				}
				sub.StripeCustomerID = nil
			}
			return nil, fmt.Errorf("attaching payment method failed: %w", err)
		}
	}

	sub.PaymentMethodID = &paymentMethodID
	now := time.Now().UTC()
	if sub.Status == models.SubscriptionStatusPendingPaymentMethod && now.Before(sub.TrialEndDate) {
		sub.Status = models.SubscriptionStatusTrial
		sub.IsActive = true
	}

	return s.repo.Update(ctx, sub)
}

type SetupIntentResponse struct {
	Reference    string `json:"reference"`
	ClientSecret string `json:"clientSecret"`
}

// CreateSetupIntent opens a provider setup intent so the client can collect a
// card without charging it, ensuring a billing customer exists first.
func (s *ServiceImpl) CreateSetupIntent(ctx context.Context, userID uuid.UUID) (*SetupIntentResponse, error) {
	if !s.payments.Enabled() {
		return nil, fmt.Errorf("payment provider not configured: %w", models.ErrServiceUnavailable)
	}
	sub, err := s.GetOrCreateUserSubscription(ctx, userID)
	if err != nil {
		return nil, err
	}

	customerID, created, err := s.ensureCustomer(sub)
	if err != nil {
		return nil, err
	}
	if created {
		if sub, err = s.repo.Update(ctx, sub); err != nil {
			return nil, err
		}
	}

	intentID, clientSecret, err := s.payments.CreateSetupIntent(customerID)
	if err != nil {
		return nil, fmt.Errorf("setup intent creation failed: %w", err)
	}
	return &SetupIntentResponse{Reference: intentID, ClientSecret: clientSecret}, nil
}

type PaymentIntentResponse struct {
	Reference    string  `json:"reference"`
	ClientSecret string  `json:"clientSecret"`
	Amount       float64 `json:"amount"`
	Currency     string  `json:"currency"`
	PlanType     string  `json:"planType"`
}

// CreatePaymentIntent opens a pending payment for a plan upgrade.
func (s *ServiceImpl) CreatePaymentIntent(ctx context.Context, userID uuid.UUID, planType string) (*PaymentIntentResponse, error) {
	if !validPlan(planType) {
		return nil, fmt.Errorf("unknown plan %q: %w", planType, models.ErrValidation)
	}
	if !s.payments.Enabled() {
		return nil, fmt.Errorf("payment provider not configured: %w", models.ErrServiceUnavailable)
	}

	amountCents := planPriceCents[planType]
	intentID, clientSecret, err := s.payments.CreatePaymentIntent(amountCents, "usd", map[string]interface{}{
		"user_id":   userID.String(),
		"plan_type": planType,
	})
	if err != nil {
		return nil, fmt.Errorf("payment intent creation failed: %w", err)
	}

	amount := float64(amountCents) / 100
	if _, err := s.repo.CreatePayment(ctx, &models.Payment{
		UserID:    userID,
		Reference: intentID,
		Amount:    amount,
		Currency:  "usd",
		Status:    models.PaymentStatusPending,
		PlanType:  planType,
	}); err != nil {
		return nil, err
	}

	return &PaymentIntentResponse{
		Reference:    intentID,
		ClientSecret: clientSecret,
		Amount:       amount,
		Currency:     "usd",
		PlanType:     planType,
	}, nil
}

// ConfirmPayment verifies the payment with the provider and upgrades the
// subscription when it succeeded.
func (s *ServiceImpl) ConfirmPayment(ctx context.Context, userID uuid.UUID, reference string) (*models.Subscription, error) {
	payment, err := s.repo.GetPaymentByReference(ctx, reference)
	if err != nil {
		return nil, err
	}
	if payment.UserID != userID {
		return nil, fmt.Errorf("payment belongs to another user: %w", models.ErrForbidden)
	}

	status, err := s.payments.GetPaymentStatus(reference)
	if err != nil {
		return nil, fmt.Errorf("payment status check failed: %w", err)
	}
	if status != "succeeded" {
		if _, err := s.repo.UpdatePaymentStatus(ctx, reference, models.PaymentStatusFailed); err != nil {
			s.logger.Warn("Failed to mark payment failed", zap.String("reference", reference), zap.Error(err))
		}
		metrics.Get().RecordPayment(ctx, models.PaymentStatusFailed)
		return nil, fmt.Errorf("payment not completed, status %q: %w", status, models.ErrBadRequest)
	}

	sub, err := s.UpgradeSubscription(ctx, userID, payment.PlanType, reference)
	if err != nil {
		return nil, err
	}
	metrics.Get().RecordPayment(ctx, models.PaymentStatusCompleted)
	return sub, nil
}

// ProcessExpiredTrials sweeps trials past their end date. Trials with auto
// renew and a stored payment method move to past due with a pending payment,
// the rest expire and lose access. Returns the number of processed rows.
func (s *ServiceImpl) ProcessExpiredTrials(ctx context.Context) (int, error) {
	now := time.Now().UTC()
	expired, err := s.repo.ListExpiredTrials(ctx, now)
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, sub := range expired {
		if sub.AutoRenew && sub.PaymentMethodID != nil {
			sub.Status = models.SubscriptionStatusPastDue
			if _, err := s.repo.CreatePayment(ctx, &models.Payment{
				UserID:    sub.UserID,
				Reference: fmt.Sprintf("trial-renewal-%s-%d", sub.UserID, now.Unix()),
				Amount:    float64(planPriceCents[sub.PlanType]) / 100,
				Currency:  "usd",
				Status:    models.PaymentStatusPending,
				PlanType:  sub.PlanType,
			}); err != nil && !errors.Is(err, models.ErrConflict) {
				s.logger.Error("Failed to open renewal payment",
					zap.String("user_id", sub.UserID.String()),
					zap.Error(err),
				)
				continue
			}
		} else {
			sub.Status = models.SubscriptionStatusExpired
			sub.IsActive = false
		}

		if _, err := s.repo.Update(ctx, &sub); err != nil {
			s.logger.Error("Failed to update expired trial",
				zap.String("user_id", sub.UserID.String()),
				zap.Error(err),
			)
			continue
		}
		processed++
	}

	if processed > 0 {
		s.logger.Info("Expired trials processed", zap.Int("count", processed))
	}
	return processed, nil
}
