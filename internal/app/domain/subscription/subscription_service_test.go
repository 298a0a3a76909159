package subscription

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/models"
)

type fakeRepo struct {
	subs     map[uuid.UUID]*models.Subscription
	payments map[string]*models.Payment

	createErr error
	getErr    error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		subs:     map[uuid.UUID]*models.Subscription{},
		payments: map[string]*models.Payment{},
	}
}

func (f *fakeRepo) GetByUserID(_ context.Context, userID uuid.UUID) (*models.Subscription, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	sub, ok := f.subs[userID]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *sub
	return &cp, nil
}

func (f *fakeRepo) Create(_ context.Context, sub *models.Subscription) (*models.Subscription, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, exists := f.subs[sub.UserID]; exists {
		return nil, models.ErrConflict
	}
	cp := *sub
	cp.ID = uuid.New()
	f.subs[sub.UserID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRepo) Update(_ context.Context, sub *models.Subscription) (*models.Subscription, error) {
	if _, ok := f.subs[sub.UserID]; !ok {
		return nil, models.ErrNotFound
	}
	cp := *sub
	f.subs[sub.UserID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRepo) ListExpiredTrials(_ context.Context, asOf time.Time) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, sub := range f.subs {
		if sub.Status == models.SubscriptionStatusTrial && sub.TrialEndDate.Before(asOf) {
			out = append(out, *sub)
		}
	}
	return out, nil
}

func (f *fakeRepo) CreatePayment(_ context.Context, payment *models.Payment) (*models.Payment, error) {
	if _, exists := f.payments[payment.Reference]; exists {
		return nil, models.ErrConflict
	}
	cp := *payment
	cp.ID = uuid.New()
	cp.Status = payment.Status
	f.payments[payment.Reference] = &cp
	out := cp
	return &out, nil
}

func (f *fakeRepo) UpdatePaymentStatus(_ context.Context, reference, status string) (*models.Payment, error) {
	p, ok := f.payments[reference]
	if !ok {
		return nil, models.ErrNotFound
	}
	p.Status = status
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) GetPaymentByReference(_ context.Context, reference string) (*models.Payment, error) {
	p, ok := f.payments[reference]
	if !ok {
		return nil, models.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeRepo) GetLatestCompletedPayment(_ context.Context, userID uuid.UUID) (*models.Payment, error) {
	var latest *models.Payment
	for _, p := range f.payments {
		if p.UserID != userID || p.Status != models.PaymentStatusCompleted {
			continue
		}
		if latest == nil || p.CreatedAt.After(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	cp := *latest
	return &cp, nil
}

type fakePayments struct {
	enabled   bool
	status    string
	attachErr error

	customers int
	attached  [][2]string
	refunded  []string
	deleted   []string
}

func (f *fakePayments) Enabled() bool { return f.enabled }

func (f *fakePayments) CreatePaymentIntent(int64, string, map[string]interface{}) (string, string, error) {
	return "pi_test_123", "pi_test_123_secret", nil
}

func (f *fakePayments) GetPaymentStatus(string) (string, error) { return f.status, nil }

func (f *fakePayments) CreateCustomer(uuid.UUID, string, map[string]interface{}) (string, error) {
	f.customers++
	return fmt.Sprintf("cus_test_%d", f.customers), nil
}

func (f *fakePayments) DeleteCustomer(customerID string) error {
	f.deleted = append(f.deleted, customerID)
	return nil
}

func (f *fakePayments) CreateSetupIntent(string) (string, string, error) {
	return "seti_test_123", "seti_test_123_secret", nil
}

func (f *fakePayments) AttachPaymentMethod(customerID, paymentMethodID string) error {
	if f.attachErr != nil {
		return f.attachErr
	}
	f.attached = append(f.attached, [2]string{customerID, paymentMethodID})
	return nil
}

func (f *fakePayments) RefundPayment(reference string, _ *int64) error {
	f.refunded = append(f.refunded, reference)
	return nil
}

func newTestService(repo Repository, payments PaymentProvider) *ServiceImpl {
	return NewService(repo, payments, zap.NewNop())
}

func TestCreateUserSubscription_StartsTrial(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakePayments{})
	userID := uuid.New()

	sub, err := svc.CreateUserSubscription(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, models.PlanBasic, sub.PlanType)
	assert.Equal(t, models.SubscriptionStatusTrial, sub.Status)
	assert.True(t, sub.AutoRenew)
	assert.True(t, sub.IsActive)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, models.TrialDurationDays), sub.TrialEndDate, time.Minute)
}

func TestGetOrCreateUserSubscription_CreatesOnce(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakePayments{})
	userID := uuid.New()

	first, err := svc.GetOrCreateUserSubscription(context.Background(), userID)
	require.NoError(t, err)

	second, err := svc.GetOrCreateUserSubscription(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, repo.subs, 1)
}

// raceRepo simulates a concurrent signup winning the insert between the
// initial miss and our create.
type raceRepo struct {
	*fakeRepo
	missed bool
}

func (r *raceRepo) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	if !r.missed {
		r.missed = true
		return nil, models.ErrNotFound
	}
	return r.fakeRepo.GetByUserID(ctx, userID)
}

func (r *raceRepo) Create(context.Context, *models.Subscription) (*models.Subscription, error) {
	return nil, models.ErrConflict
}

func TestGetOrCreateUserSubscription_ConflictRefetches(t *testing.T) {
	inner := newFakeRepo()
	userID := uuid.New()
	created, err := inner.Create(context.Background(), &models.Subscription{
		UserID: userID,
		Status: models.SubscriptionStatusTrial,
	})
	require.NoError(t, err)

	svc := newTestService(&raceRepo{fakeRepo: inner}, &fakePayments{})

	sub, err := svc.GetOrCreateUserSubscription(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, created.ID, sub.ID)
}

func TestGetSubscriptionStatus_ActiveTrial(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakePayments{})
	userID := uuid.New()

	status, err := svc.GetSubscriptionStatus(context.Background(), userID)

	require.NoError(t, err)
	assert.True(t, status.IsTrialActive)
	assert.False(t, status.IsSubscriptionActive)
	assert.True(t, status.HasAccess)
	assert.Equal(t, models.TrialDurationDays, status.DaysRemaining)
	assert.Equal(t, 5, status.Limits.Fields)
}

func TestUpgradeSubscription(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakePayments{})
	userID := uuid.New()

	_, err := svc.UpgradeSubscription(context.Background(), userID, "GOLD", "")
	assert.ErrorIs(t, err, models.ErrValidation)

	sub, err := svc.UpgradeSubscription(context.Background(), userID, models.PlanProfessional, "")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, models.PlanProfessional, sub.PlanType)
	require.NotNil(t, sub.SubscriptionEndDate)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 1, 0), *sub.SubscriptionEndDate, time.Minute)
	assert.True(t, sub.IsActive)
}

func TestCancelSubscription_AtPeriodEnd(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakePayments{})
	userID := uuid.New()

	_, err := svc.UpgradeSubscription(context.Background(), userID, models.PlanBasic, "")
	require.NoError(t, err)

	sub, err := svc.CancelSubscription(context.Background(), userID, true)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.True(t, sub.CancelAtPeriodEnd)
	assert.False(t, sub.AutoRenew)
	assert.True(t, sub.IsActive)
}

func TestCancelSubscription_Immediate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakePayments{})
	userID := uuid.New()

	_, err := svc.GetOrCreateUserSubscription(context.Background(), userID)
	require.NoError(t, err)

	sub, err := svc.CancelSubscription(context.Background(), userID, false)
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCanceled, sub.Status)
	assert.False(t, sub.IsActive)
}

func TestCreatePaymentIntent(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakePayments{enabled: true})
	userID := uuid.New()

	resp, err := svc.CreatePaymentIntent(context.Background(), userID, models.PlanProfessional)

	require.NoError(t, err)
	assert.Equal(t, "pi_test_123", resp.Reference)
	assert.Equal(t, "pi_test_123_secret", resp.ClientSecret)
	assert.Equal(t, 29.99, resp.Amount)

	payment := repo.payments["pi_test_123"]
	require.NotNil(t, payment)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
}

func TestCreatePaymentIntent_ProviderDisabled(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakePayments{enabled: false})

	_, err := svc.CreatePaymentIntent(context.Background(), uuid.New(), models.PlanBasic)

	assert.ErrorIs(t, err, models.ErrServiceUnavailable)
}

func TestConfirmPayment_Succeeded(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakePayments{enabled: true, status: "succeeded"})
	userID := uuid.New()

	_, err := svc.CreatePaymentIntent(context.Background(), userID, models.PlanEnterprise)
	require.NoError(t, err)

	sub, err := svc.ConfirmPayment(context.Background(), userID, "pi_test_123")

	require.NoError(t, err)
	assert.Equal(t, models.PlanEnterprise, sub.PlanType)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, models.PaymentStatusCompleted, repo.payments["pi_test_123"].Status)
}

func TestConfirmPayment_WrongUser(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakePayments{enabled: true, status: "succeeded"})

	_, err := svc.CreatePaymentIntent(context.Background(), uuid.New(), models.PlanBasic)
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(context.Background(), uuid.New(), "pi_test_123")

	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestConfirmPayment_NotSucceeded(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakePayments{enabled: true, status: "requires_payment_method"})
	userID := uuid.New()

	_, err := svc.CreatePaymentIntent(context.Background(), userID, models.PlanBasic)
	require.NoError(t, err)

	_, err = svc.ConfirmPayment(context.Background(), userID, "pi_test_123")

	assert.ErrorIs(t, err, models.ErrBadRequest)
	assert.Equal(t, models.PaymentStatusFailed, repo.payments["pi_test_123"].Status)
}

func TestAddPaymentMethodAndActivateTrial(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakePayments{})
	userID := uuid.New()

	_, err := svc.AddPaymentMethodAndActivateTrial(context.Background(), userID, "")
	assert.ErrorIs(t, err, models.ErrValidation)

	sub, err := svc.GetOrCreateUserSubscription(context.Background(), userID)
	require.NoError(t, err)

	// Park the subscription waiting for a card with trial time left.
	sub.Status = models.SubscriptionStatusPendingPaymentMethod
	sub.IsActive = false
	_, err = repo.Update(context.Background(), sub)
	require.NoError(t, err)

	updated, err := svc.AddPaymentMethodAndActivateTrial(context.Background(), userID, "pm_card_visa")
	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusTrial, updated.Status)
	assert.True(t, updated.IsActive)
	require.NotNil(t, updated.PaymentMethodID)
	assert.Equal(t, "pm_card_visa", *updated.PaymentMethodID)
}

func TestAddPaymentMethod_AttachesViaProvider(t *testing.T) {
	repo := newFakeRepo()
	payments := &fakePayments{enabled: true}
	svc := newTestService(repo, payments)
	userID := uuid.New()

	sub, err := svc.AddPaymentMethodAndActivateTrial(context.Background(), userID, "pm_card_visa")

	require.NoError(t, err)
	require.NotNil(t, sub.StripeCustomerID)
	assert.Equal(t, "cus_test_1", *sub.StripeCustomerID)
	require.Len(t, payments.attached, 1)
	assert.Equal(t, [2]string{"cus_test_1", "pm_card_visa"}, payments.attached[0])

	// The customer ID survives the round trip through the repository.
	stored, err := repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	require.NotNil(t, stored.StripeCustomerID)
	assert.Equal(t, "cus_test_1", *stored.StripeCustomerID)
}

func TestAddPaymentMethod_AttachFailureCleansUpCustomer(t *testing.T) {
	repo := newFakeRepo()
	payments := &fakePayments{enabled: true, attachErr: errors.New("card declined")}
	svc := newTestService(repo, payments)
	userID := uuid.New()

	_, err := svc.AddPaymentMethodAndActivateTrial(context.Background(), userID, "pm_card_visa")

	require.Error(t, err)
	assert.Equal(t, []string{"cus_test_1"}, payments.deleted)

	stored, err := repo.GetByUserID(context.Background(), userID)
	require.NoError(t, err)
	assert.Nil(t, stored.PaymentMethodID)
	assert.Nil(t, stored.StripeCustomerID)
}

func TestCreateSetupIntent(t *testing.T) {
	repo := newFakeRepo()
	payments := &fakePayments{enabled: true}
	svc := newTestService(repo, payments)
	userID := uuid.New()

	resp, err := svc.CreateSetupIntent(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, "seti_test_123", resp.Reference)
	assert.Equal(t, "seti_test_123_secret", resp.ClientSecret)

	// A second intent reuses the stored customer.
	_, err = svc.CreateSetupIntent(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 1, payments.customers)
}

func TestCreateSetupIntent_ProviderDisabled(t *testing.T) {
	svc := newTestService(newFakeRepo(), &fakePayments{enabled: false})

	_, err := svc.CreateSetupIntent(context.Background(), uuid.New())

	assert.ErrorIs(t, err, models.ErrServiceUnavailable)
}

func TestCancelSubscription_ImmediateRefundsActivePeriod(t *testing.T) {
	repo := newFakeRepo()
	payments := &fakePayments{enabled: true, status: "succeeded"}
	svc := newTestService(repo, payments)
	userID := uuid.New()

	_, err := svc.CreatePaymentIntent(context.Background(), userID, models.PlanProfessional)
	require.NoError(t, err)
	_, err = svc.ConfirmPayment(context.Background(), userID, "pi_test_123")
	require.NoError(t, err)

	sub, err := svc.CancelSubscription(context.Background(), userID, false)

	require.NoError(t, err)
	assert.Equal(t, models.SubscriptionStatusCanceled, sub.Status)
	assert.Equal(t, []string{"pi_test_123"}, payments.refunded)
	assert.Equal(t, models.PaymentStatusRefunded, repo.payments["pi_test_123"].Status)
}

func TestCancelSubscription_TrialCancelDoesNotRefund(t *testing.T) {
	repo := newFakeRepo()
	payments := &fakePayments{enabled: true}
	svc := newTestService(repo, payments)
	userID := uuid.New()

	_, err := svc.GetOrCreateUserSubscription(context.Background(), userID)
	require.NoError(t, err)

	_, err = svc.CancelSubscription(context.Background(), userID, false)

	require.NoError(t, err)
	assert.Empty(t, payments.refunded)
}

func TestProcessExpiredTrials(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo, &fakePayments{})
	now := time.Now().UTC()
	pm := "pm_card_visa"

	renewing := &models.Subscription{
		UserID:          uuid.New(),
		PlanType:        models.PlanBasic,
		Status:          models.SubscriptionStatusTrial,
		TrialEndDate:    now.AddDate(0, 0, -1),
		AutoRenew:       true,
		PaymentMethodID: &pm,
		IsActive:        true,
	}
	lapsing := &models.Subscription{
		UserID:       uuid.New(),
		PlanType:     models.PlanBasic,
		Status:       models.SubscriptionStatusTrial,
		TrialEndDate: now.AddDate(0, 0, -2),
		AutoRenew:    false,
		IsActive:     true,
	}
	healthy := &models.Subscription{
		UserID:       uuid.New(),
		PlanType:     models.PlanBasic,
		Status:       models.SubscriptionStatusTrial,
		TrialEndDate: now.AddDate(0, 0, 3),
		IsActive:     true,
	}
	for _, sub := range []*models.Subscription{renewing, lapsing, healthy} {
		_, err := repo.Create(context.Background(), sub)
		require.NoError(t, err)
	}

	processed, err := svc.ProcessExpiredTrials(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, processed)

	assert.Equal(t, models.SubscriptionStatusPastDue, repo.subs[renewing.UserID].Status)
	assert.True(t, repo.subs[renewing.UserID].IsActive)
	require.Len(t, repo.payments, 1)
	for _, p := range repo.payments {
		assert.Equal(t, renewing.UserID, p.UserID)
		assert.Equal(t, models.PaymentStatusPending, p.Status)
		assert.Equal(t, 9.99, p.Amount)
	}

	assert.Equal(t, models.SubscriptionStatusExpired, repo.subs[lapsing.UserID].Status)
	assert.False(t, repo.subs[lapsing.UserID].IsActive)

	assert.Equal(t, models.SubscriptionStatusTrial, repo.subs[healthy.UserID].Status)
}

func TestPlanLimitsFor_UnknownFallsBackToBasic(t *testing.T) {
	assert.Equal(t, planLimits[models.PlanBasic], PlanLimitsFor("PLATINUM"))
	assert.Equal(t, -1, PlanLimitsFor(models.PlanEnterprise).Fields)
}
