package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/embeddingminds/sgps/models"
)

// Result is the outcome of a successfully applied payment.
type Result struct {
	Payment                models.Payment `json:"payment"`
	RemainingServiceAmount models.Money   `json:"remaining_service_amount"`
}

// Service applies payments against client service balances. The store handle
// is injected so the operation carries no global connection state.
type Service struct {
	store              Store
	defaultPaymentType string
}

// New creates a ledger service. defaultPaymentType is used when the caller
// does not specify one; empty falls back to "efectivo".
func New(store Store, defaultPaymentType string) *Service {
	if defaultPaymentType == "" {
		defaultPaymentType = models.MethodEfectivo
	}
	return &Service{store: store, defaultPaymentType: defaultPaymentType}
}

// ApplyPayment applies one payment to one client service. The payment row
// and the balance update commit together or roll back together; no partial
// write is ever observable. An omitted amount settles the full outstanding
// balance.
func (s *Service) ApplyPayment(ctx context.Context, in models.PaymentInput) (Result, error) {
	if msg := in.Validate(); msg != "" {
		return Result{}, validationf("%s", msg)
	}

	tx, err := s.store.Begin(ctx)
	if err != nil {
		return Result{}, storagef("begin transaction", err)
	}
	committed := false
	defer func() {
		if !committed {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				slog.Warn("ledger rollback failed", "client_service_id", in.ClientServiceID, "error", rbErr)
			}
		}
	}()

	row, err := tx.GetClientServiceForUpdate(ctx, in.ClientServiceID)
	if err != nil {
		return Result{}, classify("read client service", err)
	}

	amount := row.AmountDue
	if in.Amount != nil {
		amount = *in.Amount
	}
	if amount <= 0 {
		return Result{}, validationf("resolved payment amount %s is not positive", amount)
	}
	if amount > row.AmountDue {
		return Result{}, validationf("amount %s exceeds outstanding balance %s", amount, row.AmountDue)
	}

	out := Derive(row.AmountDue, amount)

	if err := tx.UpdateClientServiceBalance(ctx, row.ClientServiceID, out.RemainingBalance, out.ServiceStatus, out.PaymentStatus); err != nil {
		return Result{}, classify("update balance", err)
	}

	paymentType := s.defaultPaymentType
	if in.PaymentType != nil && *in.PaymentType != "" {
		paymentType = *in.PaymentType
	}
	ref := in.ReferenceNumber
	if ref == nil || *ref == "" {
		generated := generateReference()
		ref = &generated
	}

	payment, err := tx.InsertPayment(ctx, PaymentFields{
		ClientServiceID: row.ClientServiceID,
		Amount:          amount,
		Method:          in.Method,
		ReferenceNumber: ref,
		Notes:           in.Notes,
		Status:          models.PaymentStatusEnProceso,
		PaymentType:     paymentType,
		PaymentDate:     time.Now().UTC(),
	})
	if err != nil {
		return Result{}, classify("insert payment", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Result{}, classify("commit", err)
	}
	committed = true

	slog.Info("payment applied",
		"client_service_id", row.ClientServiceID,
		"amount", amount.String(),
		"remaining", out.RemainingBalance.String(),
		"service_status", out.ServiceStatus)

	return Result{Payment: payment, RemainingServiceAmount: out.RemainingBalance}, nil
}

// classify keeps errors the store already typed and wraps the rest as
// storage failures.
func classify(op string, err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrConflict) || errors.Is(err, ErrValidation) {
		return err
	}
	return storagef(op, err)
}

func generateReference() string {
	return fmt.Sprintf("PAY-%.8s", uuid.NewString())
}
