package financial

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/farmflow/backend/internal/app/models"
)

var _ Service = (*ServiceImpl)(nil)

type Service interface {
	CreateAccount(ctx context.Context, userID uuid.UUID, req models.CreateAccountRequest) (*models.FinancialAccount, error)
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.FinancialAccount, error)
	CreateTransaction(ctx context.Context, userID uuid.UUID, req models.CreateTransactionRequest) (*models.FinancialTransaction, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.FinancialTransaction, int64, error)
}

type ServiceImpl struct {
	logger  *zap.Logger
	repo    Repository
	printer *message.Printer
}

func NewService(repo Repository, logger *zap.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		repo:    repo,
		printer: message.NewPrinter(language.English),
	}
}

// FormatAmount renders a money amount with grouping, e.g. "1,234.50".
func (s *ServiceImpl) FormatAmount(amount float64) string {
	return s.printer.Sprintf("%.2f", amount)
}

func (s *ServiceImpl) CreateAccount(ctx context.Context, userID uuid.UUID, req models.CreateAccountRequest) (*models.FinancialAccount, error) {
	if req.Name == "" {
		return nil, fmt.Errorf("account name is required: %w", models.ErrValidation)
	}
	if req.AccountType == "" {
		return nil, fmt.Errorf("account type is required: %w", models.ErrValidation)
	}
	return s.repo.CreateAccount(ctx, userID, req)
}

func (s *ServiceImpl) ListAccounts(ctx context.Context, userID uuid.UUID) ([]models.FinancialAccount, error) {
	return s.repo.ListAccounts(ctx, userID)
}

func (s *ServiceImpl) CreateTransaction(ctx context.Context, userID uuid.UUID, req models.CreateTransactionRequest) (*models.FinancialTransaction, error) {
	if req.TransactionType != models.TransactionTypeIncome && req.TransactionType != models.TransactionTypeExpense {
		return nil, fmt.Errorf("transaction type must be INCOME or EXPENSE: %w", models.ErrValidation)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", models.ErrValidation)
	}
	if req.Category == "" {
		return nil, fmt.Errorf("category is required: %w", models.ErrValidation)
	}
	t, err := s.repo.CreateTransaction(ctx, userID, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Transaction recorded",
		zap.String("transaction_id", t.ID.String()),
		zap.String("type", t.TransactionType),
		zap.String("amount", s.FormatAmount(t.Amount)),
	)
	return t, nil
}

func (s *ServiceImpl) ListTransactions(ctx context.Context, userID uuid.UUID, filter models.TransactionFilter) ([]models.FinancialTransaction, int64, error) {
	if filter.StartDate != nil && filter.EndDate != nil && !filter.StartDate.Before(*filter.EndDate) {
		return nil, 0, fmt.Errorf("start date must be before end date: %w", models.ErrValidation)
	}
	return s.repo.ListTransactions(ctx, userID, filter)
}
