package subscription

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/farmflow/backend/internal/app/models"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	Create(ctx context.Context, sub *models.Subscription) (*models.Subscription, error)
	Update(ctx context.Context, sub *models.Subscription) (*models.Subscription, error)
	ListExpiredTrials(ctx context.Context, asOf time.Time) ([]models.Subscription, error)
	CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, reference, status string) (*models.Payment, error)
	GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error)
	GetLatestCompletedPayment(ctx context.Context, userID uuid.UUID) (*models.Payment, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewRepository(pgpool *pgxpool.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

const subscriptionColumns = `id, user_id, plan_type, status, trial_start_date, trial_end_date,
	subscription_start_date, subscription_end_date, current_period_start, current_period_end,
	last_payment_date, next_billing_date, payment_method_id, stripe_customer_id, auto_renew,
	cancel_at_period_end, is_active, created_at, updated_at`

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	var s models.Subscription
	err := row.Scan(&s.ID, &s.UserID, &s.PlanType, &s.Status, &s.TrialStartDate, &s.TrialEndDate,
		&s.SubscriptionStartDate, &s.SubscriptionEndDate, &s.CurrentPeriodStart, &s.CurrentPeriodEnd,
		&s.LastPaymentDate, &s.NextBillingDate, &s.PaymentMethodID, &s.StripeCustomerID, &s.AutoRenew,
		&s.CancelAtPeriodEnd, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *RepositoryImpl) GetByUserID(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	ctx, span := otel.Tracer("SubscriptionRepository").Start(ctx, "GetByUserID", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
	))
	defer span.End()

	query := fmt.Sprintf(`SELECT %s FROM subscriptions WHERE user_id = $1`, subscriptionColumns)
	sub, err := scanSubscription(r.pgpool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			span.SetStatus(codes.Ok, "No subscription")
			return nil, fmt.Errorf("subscription not found: %w", models.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("database error fetching subscription: %w", err)
	}

	span.SetStatus(codes.Ok, "Subscription fetched")
	return sub, nil
}

func (r *RepositoryImpl) Create(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	ctx, span := otel.Tracer("SubscriptionRepository").Start(ctx, "Create", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
	))
	defer span.End()

	query := fmt.Sprintf(`INSERT INTO subscriptions
		(user_id, plan_type, status, trial_start_date, trial_end_date, auto_renew, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s`, subscriptionColumns)
	created, err := scanSubscription(r.pgpool.QueryRow(ctx, query,
		sub.UserID, sub.PlanType, sub.Status, sub.TrialStartDate, sub.TrialEndDate,
		sub.AutoRenew, sub.IsActive))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			span.SetStatus(codes.Error, "Subscription already exists")
			return nil, fmt.Errorf("subscription already exists for user: %w", models.ErrConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database insert failed")
		return nil, fmt.Errorf("database error creating subscription: %w", err)
	}

	span.SetStatus(codes.Ok, "Subscription created")
	return created, nil
}

func (r *RepositoryImpl) Update(ctx context.Context, sub *models.Subscription) (*models.Subscription, error) {
	ctx, span := otel.Tracer("SubscriptionRepository").Start(ctx, "Update", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "UPDATE"),
	))
	defer span.End()

	query := fmt.Sprintf(`UPDATE subscriptions SET
		plan_type = $1, status = $2, subscription_start_date = $3, subscription_end_date = $4,
		current_period_start = $5, current_period_end = $6, last_payment_date = $7,
		next_billing_date = $8, payment_method_id = $9, stripe_customer_id = $10, auto_renew = $11,
		cancel_at_period_end = $12, is_active = $13, updated_at = NOW()
		WHERE id = $14
		RETURNING %s`, subscriptionColumns)
	updated, err := scanSubscription(r.pgpool.QueryRow(ctx, query,
		sub.PlanType, sub.Status, sub.SubscriptionStartDate, sub.SubscriptionEndDate,
		sub.CurrentPeriodStart, sub.CurrentPeriodEnd, sub.LastPaymentDate,
		sub.NextBillingDate, sub.PaymentMethodID, sub.StripeCustomerID, sub.AutoRenew,
		sub.CancelAtPeriodEnd, sub.IsActive, sub.ID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("subscription not found: %w", models.ErrNotFound)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database update failed")
		return nil, fmt.Errorf("database error updating subscription: %w", err)
	}

	span.SetStatus(codes.Ok, "Subscription updated")
	return updated, nil
}

// ListExpiredTrials returns trial subscriptions whose trial window has passed.
func (r *RepositoryImpl) ListExpiredTrials(ctx context.Context, asOf time.Time) ([]models.Subscription, error) {
	query := fmt.Sprintf(`SELECT %s FROM subscriptions
		WHERE status = $1 AND trial_end_date < $2`, subscriptionColumns)
	rows, err := r.pgpool.Query(ctx, query, models.SubscriptionStatusTrial, asOf)
	if err != nil {
		return nil, fmt.Errorf("database error listing expired trials: %w", err)
	}
	defer rows.Close()

	subs := []models.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning subscription row: %w", err)
		}
		subs = append(subs, *sub)
	}
	return subs, rows.Err()
}

const paymentColumns = `id, user_id, reference, amount, currency, status, plan_type, created_at, updated_at`

func scanPayment(row pgx.Row) (*models.Payment, error) {
	var p models.Payment
	err := row.Scan(&p.ID, &p.UserID, &p.Reference, &p.Amount, &p.Currency, &p.Status,
		&p.PlanType, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RepositoryImpl) CreatePayment(ctx context.Context, payment *models.Payment) (*models.Payment, error) {
	query := fmt.Sprintf(`INSERT INTO payments (user_id, reference, amount, currency, status, plan_type)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, paymentColumns)
	created, err := scanPayment(r.pgpool.QueryRow(ctx, query,
		payment.UserID, payment.Reference, payment.Amount, payment.Currency,
		payment.Status, payment.PlanType))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("payment reference already recorded: %w", models.ErrConflict)
		}
		return nil, fmt.Errorf("database error creating payment: %w", err)
	}
	return created, nil
}

func (r *RepositoryImpl) UpdatePaymentStatus(ctx context.Context, reference, status string) (*models.Payment, error) {
	query := fmt.Sprintf(`UPDATE payments SET status = $1, updated_at = NOW()
		WHERE reference = $2 RETURNING %s`, paymentColumns)
	updated, err := scanPayment(r.pgpool.QueryRow(ctx, query, status, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("payment not found: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("database error updating payment: %w", err)
	}
	return updated, nil
}

func (r *RepositoryImpl) GetPaymentByReference(ctx context.Context, reference string) (*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments WHERE reference = $1`, paymentColumns)
	payment, err := scanPayment(r.pgpool.QueryRow(ctx, query, reference))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("payment not found: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("database error fetching payment: %w", err)
	}
	return payment, nil
}

// GetLatestCompletedPayment returns the user's most recent completed payment,
// the one an immediate cancellation refunds.
func (r *RepositoryImpl) GetLatestCompletedPayment(ctx context.Context, userID uuid.UUID) (*models.Payment, error) {
	query := fmt.Sprintf(`SELECT %s FROM payments
		WHERE user_id = $1 AND status = $2
		ORDER BY created_at DESC LIMIT 1`, paymentColumns)
	payment, err := scanPayment(r.pgpool.QueryRow(ctx, query, userID, models.PaymentStatusCompleted))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no completed payment: %w", models.ErrNotFound)
		}
		return nil, fmt.Errorf("database error fetching latest payment: %w", err)
	}
	return payment, nil
}
