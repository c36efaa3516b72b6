package ledger

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/embeddingminds/sgps/models"
)

// fakeStore keeps committed state in memory. Transactions stage their writes
// and only apply them on Commit, so the tests can observe exactly what a
// rollback leaves behind.
type fakeStore struct {
	rows     map[int]BalanceRow
	payments []models.Payment

	beginErr  error
	readErr   error
	updateErr error
	insertErr error
	commitErr error

	begins    int
	rollbacks int
	commits   int
}

func newFakeStore(rows ...BalanceRow) *fakeStore {
	s := &fakeStore{rows: make(map[int]BalanceRow)}
	for _, r := range rows {
		s.rows[r.ClientServiceID] = r
	}
	return s
}

func (s *fakeStore) Begin(ctx context.Context) (Tx, error) {
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	s.begins++
	return &fakeTx{store: s}, nil
}

type fakeTx struct {
	store          *fakeStore
	pendingRow     *BalanceRow
	pendingPayment *models.Payment
	done           bool
}

func (t *fakeTx) GetClientServiceForUpdate(ctx context.Context, id int) (BalanceRow, error) {
	if t.store.readErr != nil {
		return BalanceRow{}, t.store.readErr
	}
	row, ok := t.store.rows[id]
	if !ok || models.SettledServiceStatus(row.Status) || row.PaymentStatus == models.PaymentPagado {
		return BalanceRow{}, ErrNotFound
	}
	return row, nil
}

func (t *fakeTx) UpdateClientServiceBalance(ctx context.Context, id int, newBalance models.Money, serviceStatus, paymentStatus string) error {
	if t.store.updateErr != nil {
		return t.store.updateErr
	}
	t.pendingRow = &BalanceRow{
		ClientServiceID: id,
		AmountDue:       newBalance,
		Status:          serviceStatus,
		PaymentStatus:   paymentStatus,
	}
	return nil
}

func (t *fakeTx) InsertPayment(ctx context.Context, p PaymentFields) (models.Payment, error) {
	if t.store.insertErr != nil {
		return models.Payment{}, t.store.insertErr
	}
	payment := models.Payment{
		ID:              len(t.store.payments) + 1,
		ClientServiceID: p.ClientServiceID,
		Amount:          p.Amount,
		Method:          p.Method,
		ReferenceNumber: p.ReferenceNumber,
		Notes:           p.Notes,
		Status:          p.Status,
		PaymentType:     p.PaymentType,
		PaymentDate:     p.PaymentDate,
	}
	t.pendingPayment = &payment
	return payment, nil
}

func (t *fakeTx) Commit(ctx context.Context) error {
	if t.store.commitErr != nil {
		return t.store.commitErr
	}
	if t.pendingRow != nil {
		t.store.rows[t.pendingRow.ClientServiceID] = *t.pendingRow
	}
	if t.pendingPayment != nil {
		t.store.payments = append(t.store.payments, *t.pendingPayment)
	}
	t.store.commits++
	t.done = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.done {
		t.store.rollbacks++
		t.done = true
	}
	return nil
}

func pendingService(id int, due models.Money) BalanceRow {
	return BalanceRow{
		ClientServiceID: id,
		AmountDue:       due,
		Status:          models.ServiceActivo,
		PaymentStatus:   models.PaymentPendiente,
	}
}

func money(m models.Money) *models.Money { return &m }

func TestApplyPaymentPartialThenSettle(t *testing.T) {
	store := newFakeStore(pendingService(7, 10000))
	svc := New(store, "")
	ctx := context.Background()

	ref := "TRX-1"
	res, err := svc.ApplyPayment(ctx, models.PaymentInput{
		ClientServiceID: 7,
		Amount:          money(4000),
		Method:          models.MethodTransferencia,
		ReferenceNumber: &ref,
	})
	if err != nil {
		t.Fatalf("first payment: %v", err)
	}
	if res.Payment.Amount != 4000 {
		t.Errorf("payment amount = %s, want 40.00", res.Payment.Amount)
	}
	if res.RemainingServiceAmount != 6000 {
		t.Errorf("remaining = %s, want 60.00", res.RemainingServiceAmount)
	}
	row := store.rows[7]
	if row.AmountDue != 6000 || row.Status != models.ServiceActivo || row.PaymentStatus != models.PaymentPendiente {
		t.Errorf("after partial payment row = %+v", row)
	}

	res, err = svc.ApplyPayment(ctx, models.PaymentInput{
		ClientServiceID: 7,
		Amount:          money(6000),
		Method:          models.MethodTransferencia,
	})
	if err != nil {
		t.Fatalf("second payment: %v", err)
	}
	if res.RemainingServiceAmount != 0 {
		t.Errorf("remaining = %s, want 0.00", res.RemainingServiceAmount)
	}
	row = store.rows[7]
	if row.AmountDue != 0 || row.Status != models.ServiceCancelado || row.PaymentStatus != models.PaymentPagado {
		t.Errorf("after settlement row = %+v", row)
	}
	if len(store.payments) != 2 {
		t.Errorf("payments = %d, want 2", len(store.payments))
	}
}

func TestApplyPaymentDefaultsToFullBalance(t *testing.T) {
	store := newFakeStore(pendingService(3, 2500))
	svc := New(store, "")

	res, err := svc.ApplyPayment(context.Background(), models.PaymentInput{
		ClientServiceID: 3,
		Method:          models.MethodEfectivo,
	})
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}
	if res.Payment.Amount != 2500 {
		t.Errorf("amount = %s, want full balance 25.00", res.Payment.Amount)
	}
	if res.RemainingServiceAmount != 0 {
		t.Errorf("remaining = %s, want 0.00", res.RemainingServiceAmount)
	}
	if store.rows[3].Status != models.ServiceCancelado {
		t.Errorf("status = %q, want cancelado", store.rows[3].Status)
	}
}

func TestApplyPaymentOverpaymentRejected(t *testing.T) {
	store := newFakeStore(pendingService(1, 10000))
	svc := New(store, "")

	_, err := svc.ApplyPayment(context.Background(), models.PaymentInput{
		ClientServiceID: 1,
		Amount:          money(15000),
		Method:          models.MethodEfectivo,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}

	// Rejection leaves no trace: balance unchanged, no payment row.
	if store.rows[1].AmountDue != 10000 {
		t.Errorf("balance = %s, want unchanged 100.00", store.rows[1].AmountDue)
	}
	if len(store.payments) != 0 {
		t.Errorf("payments = %d, want 0", len(store.payments))
	}
	if store.rollbacks != 1 {
		t.Errorf("rollbacks = %d, want 1", store.rollbacks)
	}
}

func TestApplyPaymentNotFound(t *testing.T) {
	store := newFakeStore()
	svc := New(store, "")

	_, err := svc.ApplyPayment(context.Background(), models.PaymentInput{
		ClientServiceID: 42,
		Method:          models.MethodEfectivo,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
	if store.rollbacks != 1 {
		t.Errorf("rollbacks = %d, want 1", store.rollbacks)
	}
}

func TestApplyPaymentSettledServiceNotPayable(t *testing.T) {
	store := newFakeStore(BalanceRow{
		ClientServiceID: 9,
		AmountDue:       0,
		Status:          models.ServiceCancelado,
		PaymentStatus:   models.PaymentPagado,
	})
	svc := New(store, "")

	_, err := svc.ApplyPayment(context.Background(), models.PaymentInput{
		ClientServiceID: 9,
		Method:          models.MethodEfectivo,
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("error = %v, want ErrNotFound", err)
	}
}

func TestApplyPaymentInvalidInputDoesNotTouchStore(t *testing.T) {
	store := newFakeStore(pendingService(1, 10000))
	svc := New(store, "")

	_, err := svc.ApplyPayment(context.Background(), models.PaymentInput{
		ClientServiceID: 1,
		Method:          "bitcoin",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("error = %v, want ErrValidation", err)
	}
	if store.begins != 0 {
		t.Errorf("begins = %d, want 0 (validation happens before the transaction)", store.begins)
	}
}

// Simulated failure after the balance update but before commit: neither the
// balance change nor the payment row may be durably visible.
func TestApplyPaymentAtomicOnInsertFailure(t *testing.T) {
	store := newFakeStore(pendingService(5, 10000))
	store.insertErr = errors.New("disk full")
	svc := New(store, "")

	_, err := svc.ApplyPayment(context.Background(), models.PaymentInput{
		ClientServiceID: 5,
		Amount:          money(4000),
		Method:          models.MethodTarjeta,
	})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("error = %v, want ErrStorage", err)
	}
	if store.rows[5].AmountDue != 10000 {
		t.Errorf("balance = %s, want unchanged 100.00", store.rows[5].AmountDue)
	}
	if len(store.payments) != 0 {
		t.Errorf("payments = %d, want 0", len(store.payments))
	}
	if store.commits != 0 || store.rollbacks != 1 {
		t.Errorf("commits = %d rollbacks = %d, want 0 and 1", store.commits, store.rollbacks)
	}
}

func TestApplyPaymentAtomicOnCommitFailure(t *testing.T) {
	store := newFakeStore(pendingService(5, 10000))
	store.commitErr = errors.New("connection reset")
	svc := New(store, "")

	_, err := svc.ApplyPayment(context.Background(), models.PaymentInput{
		ClientServiceID: 5,
		Amount:          money(4000),
		Method:          models.MethodCheque,
	})
	if !errors.Is(err, ErrStorage) {
		t.Fatalf("error = %v, want ErrStorage", err)
	}
	if store.rows[5].AmountDue != 10000 || len(store.payments) != 0 {
		t.Errorf("state leaked past failed commit: row=%+v payments=%d", store.rows[5], len(store.payments))
	}
}

func TestApplyPaymentConflictPassesThrough(t *testing.T) {
	store := newFakeStore(pendingService(2, 10000))
	store.updateErr = ErrConflict
	svc := New(store, "")

	_, err := svc.ApplyPayment(context.Background(), models.PaymentInput{
		ClientServiceID: 2,
		Amount:          money(1000),
		Method:          models.MethodEfectivo,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("error = %v, want ErrConflict", err)
	}
}

func TestApplyPaymentDefaults(t *testing.T) {
	store := newFakeStore(pendingService(1, 10000))
	svc := New(store, "mensualidad")

	res, err := svc.ApplyPayment(context.Background(), models.PaymentInput{
		ClientServiceID: 1,
		Amount:          money(1000),
		Method:          models.MethodOtro,
	})
	if err != nil {
		t.Fatalf("ApplyPayment: %v", err)
	}
	if res.Payment.PaymentType != "mensualidad" {
		t.Errorf("payment type = %q, want configured default", res.Payment.PaymentType)
	}
	if res.Payment.Status != models.PaymentStatusEnProceso {
		t.Errorf("status = %q, want %q", res.Payment.Status, models.PaymentStatusEnProceso)
	}
	if res.Payment.ReferenceNumber == nil || !strings.HasPrefix(*res.Payment.ReferenceNumber, "PAY-") {
		t.Errorf("reference = %v, want generated PAY- reference", res.Payment.ReferenceNumber)
	}
}
