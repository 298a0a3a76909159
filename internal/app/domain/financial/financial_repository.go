package financial

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
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
	CreateAccount(ctx context.Context, userID uuid.UUID, req models.CreateAccountRequest) (*models.FinancialAccount, error)
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.FinancialAccount, error)
	CreateTransaction(ctx context.Context, userID uuid.UUID, req models.CreateTransactionRequest) (*models.FinancialTransaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.FinancialTransaction, int64, error)
}

type RepositoryImpl struct {
	logger *zap.Logger
	pgpool *pgxpool.Pool
}

func NewRepository(pgpool *pgxpool.Pool, logger *zap.Logger) *RepositoryImpl {
	return &RepositoryImpl{logger: logger, pgpool: pgpool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *RepositoryImpl) CreateAccount(ctx context.Context, userID uuid.UUID, req models.CreateAccountRequest) (*models.FinancialAccount, error) {
	ctx, span := otel.Tracer("FinancialRepository").Start(ctx, "CreateAccount", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
	))
	defer span.End()

	balance := 0.0
	if req.Balance != nil {
		balance = *req.Balance
	}
	currency := "USD"
	if req.Currency != nil {
		currency = *req.Currency
	}

	var a models.FinancialAccount
	query := `INSERT INTO financial_accounts (user_id, name, account_type, balance, currency)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, name, account_type, balance, currency, created_at, updated_at`
	err := r.pgpool.QueryRow(ctx, query, userID, req.Name, req.AccountType, balance, currency).
		Scan(&a.ID, &a.UserID, &a.Name, &a.AccountType, &a.Balance, &a.Currency, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database insert failed")
		return nil, fmt.Errorf("database error creating account: %w", err)
	}

	span.SetStatus(codes.Ok, "Account created")
	return &a, nil
}

func (r *RepositoryImpl) ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.FinancialAccount, error) {
	query := `SELECT id, user_id, name, account_type, balance, currency, created_at, updated_at
		FROM financial_accounts WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.pgpool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("database error listing accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.FinancialAccount{}
	for rows.Next() {
		var a models.FinancialAccount
		if err := rows.Scan(&a.ID, &a.UserID, &a.Name, &a.AccountType, &a.Balance,
			&a.Currency, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning account row: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// CreateTransaction inserts the transaction and, when an account is attached,
// adjusts that account's balance in the same transaction. The balance change
// is a single UPDATE, income adds and expense subtracts.
func (r *RepositoryImpl) CreateTransaction(ctx context.Context, userID uuid.UUID, req models.CreateTransactionRequest) (*models.FinancialTransaction, error) {
	ctx, span := otel.Tracer("FinancialRepository").Start(ctx, "CreateTransaction", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
	))
	defer span.End()

	l := r.logger.With(zap.String("method", "CreateTransaction"), zap.String("user_id", userID.String()))

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var t models.FinancialTransaction
	insert := `INSERT INTO financial_transactions
		(user_id, account_id, transaction_type, amount, category, description, transaction_date)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, NOW()))
		RETURNING id, user_id, account_id, transaction_type, amount, category, description, transaction_date, created_at`
	err = tx.QueryRow(ctx, insert,
		userID, req.AccountID, req.TransactionType, req.Amount, req.Category, req.Description, req.TransactionDate).
		Scan(&t.ID, &t.UserID, &t.AccountID, &t.TransactionType, &t.Amount,
			&t.Category, &t.Description, &t.TransactionDate, &t.CreatedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database insert failed")
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, fmt.Errorf("referenced account does not exist: %w", models.ErrConflict)
		}
		l.Error("Failed to insert transaction", zap.Error(err))
		return nil, fmt.Errorf("database error creating transaction: %w", err)
	}

	if req.AccountID != nil {
		delta := req.Amount
		if req.TransactionType == models.TransactionTypeExpense {
			delta = -req.Amount
		}
		tag, err := tx.Exec(ctx,
			`UPDATE financial_accounts SET balance = balance + $1, updated_at = NOW() WHERE id = $2 AND user_id = $3`,
			delta, *req.AccountID, userID)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Balance update failed")
			return nil, fmt.Errorf("database error updating account balance: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return nil, fmt.Errorf("account not found: %w", models.ErrNotFound)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("database error committing transaction: %w", err)
	}

	span.SetStatus(codes.Ok, "Transaction created")
	return &t, nil
}

// ListTransactions applies the optional filters and returns a page plus the
// total row count for the same predicate.
func (r *RepositoryImpl) ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.FinancialTransaction, int64, error) {
	ctx, span := otel.Tracer("FinancialRepository").Start(ctx, "ListTransactions", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
	))
	defer span.End()

	where := sq.And{sq.Eq{"user_id": userID}}
	if filter.TransactionType != nil {
		where = append(where, sq.Eq{"transaction_type": *filter.TransactionType})
	}
	if filter.Category != nil {
		where = append(where, sq.Eq{"category": *filter.Category})
	}
	if filter.StartDate != nil {
		where = append(where, sq.GtOrEq{"transaction_date": *filter.StartDate})
	}
	if filter.EndDate != nil {
		where = append(where, sq.LtOrEq{"transaction_date": *filter.EndDate})
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("financial_transactions").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building count query: %w", err)
	}
	var total int64
	if err := r.pgpool.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Count query failed")
		return nil, 0, fmt.Errorf("database error counting transactions: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	listSQL, listArgs, err := psql.
		Select("id", "user_id", "account_id", "transaction_type", "amount", "category",
			"description", "transaction_date", "created_at").
		From("financial_transactions").
		Where(where).
		OrderBy("transaction_date DESC").
		Limit(uint64(limit)).
		Offset(uint64((page - 1) * limit)).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("error building list query: %w", err)
	}

	rows, err := r.pgpool.Query(ctx, listSQL, listArgs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, 0, fmt.Errorf("database error listing transactions: %w", err)
	}
	defer rows.Close()

	transactions := []models.FinancialTransaction{}
	for rows.Next() {
		var t models.FinancialTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &t.TransactionType, &t.Amount,
			&t.Category, &t.Description, &t.TransactionDate, &t.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("error scanning transaction row: %w", err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating transaction rows: %w", err)
	}

	span.SetStatus(codes.Ok, "Transactions listed")
	return transactions, total, nil
}
