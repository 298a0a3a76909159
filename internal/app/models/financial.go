package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	TransactionTypeIncome  = "INCOME"
	TransactionTypeExpense = "EXPENSE"
)

type FinancialAccount struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	Name        string    `json:"name"`
	AccountType string    `json:"accountType"`
	Balance     float64   `json:"balance"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type FinancialTransaction struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"userId"`
	AccountID       *uuid.UUID `json:"accountId,omitempty"`
	TransactionType string     `json:"transactionType"`
	Amount          float64    `json:"amount"`
	Category        string     `json:"category"`
	Description     *string    `json:"description,omitempty"`
	TransactionDate time.Time  `json:"transactionDate"`
	CreatedAt       time.Time  `json:"createdAt"`
}

type CreateAccountRequest struct {
	Name        string   `json:"name"`
	AccountType string   `json:"accountType"`
	Balance     *float64 `json:"balance"`
	Currency    *string  `json:"currency"`
}

type CreateTransactionRequest struct {
	AccountID       *uuid.UUID `json:"accountId"`
	TransactionType string     `json:"transactionType"`
	Amount          float64    `json:"amount"`
	Category        string     `json:"category"`
	Description     *string    `json:"description"`
	TransactionDate *time.Time `json:"transactionDate"`
}

type TransactionFilter struct {
	TransactionType *string
	Category        *string
	StartDate       *time.Time
	EndDate         *time.Time
	Page            int
	Limit           int
}

// FinancialSummary aggregates transactions over a period.
type FinancialSummary struct {
	TotalIncome      float64 `json:"totalIncome"`
	TotalExpenses    float64 `json:"totalExpenses"`
	Balance          float64 `json:"balance"`
	TransactionCount int64   `json:"transactionCount"`
}
