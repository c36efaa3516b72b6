package ledger

import (
	"context"
	"time"

	"github.com/embeddingminds/sgps/models"
)

// BalanceRow is the locked view of a client service the operation works on.
type BalanceRow struct {
	ClientServiceID int
	AmountDue       models.Money
	Status          string
	PaymentStatus   string
}

// PaymentFields are the columns of the payment row the operation inserts.
type PaymentFields struct {
	ClientServiceID int
	Amount          models.Money
	Method          string
	ReferenceNumber *string
	Notes           *string
	Status          string
	PaymentType     string
	PaymentDate     time.Time
}

// Store opens transactions against the record store. It is injected into the
// Service so tests can substitute a fake.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a transaction-scoped handle. GetClientServiceForUpdate must observe
// the latest committed balance and block concurrent writers of the same row
// until Commit or Rollback.
type Tx interface {
	GetClientServiceForUpdate(ctx context.Context, clientServiceID int) (BalanceRow, error)
	UpdateClientServiceBalance(ctx context.Context, clientServiceID int, newBalance models.Money, serviceStatus, paymentStatus string) error
	InsertPayment(ctx context.Context, p PaymentFields) (models.Payment, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
