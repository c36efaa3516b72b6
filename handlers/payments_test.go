package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/embeddingminds/sgps/ledger"
	"github.com/embeddingminds/sgps/models"
)

// stubStore serves one client service balance and records the writes the
// ledger makes against it.
type stubStore struct {
	row       ledger.BalanceRow
	missing   bool
	commitErr error

	updatedBalance *models.Money
	inserted       *ledger.PaymentFields
}

func (s *stubStore) Begin(ctx context.Context) (ledger.Tx, error) { return &stubTx{s: s}, nil }

type stubTx struct{ s *stubStore }

func (t *stubTx) GetClientServiceForUpdate(ctx context.Context, id int) (ledger.BalanceRow, error) {
	if t.s.missing || t.s.row.ClientServiceID != id {
		return ledger.BalanceRow{}, ledger.ErrNotFound
	}
	return t.s.row, nil
}

func (t *stubTx) UpdateClientServiceBalance(ctx context.Context, id int, newBalance models.Money, serviceStatus, paymentStatus string) error {
	t.s.updatedBalance = &newBalance
	return nil
}

func (t *stubTx) InsertPayment(ctx context.Context, p ledger.PaymentFields) (models.Payment, error) {
	t.s.inserted = &p
	return models.Payment{
		ID:              1,
		ClientServiceID: p.ClientServiceID,
		Amount:          p.Amount,
		Method:          p.Method,
		ReferenceNumber: p.ReferenceNumber,
		Status:          p.Status,
		PaymentType:     p.PaymentType,
		PaymentDate:     p.PaymentDate,
	}, nil
}

func (t *stubTx) Commit(ctx context.Context) error   { return t.s.commitErr }
func (t *stubTx) Rollback(ctx context.Context) error { return nil }

func newTestAPI(store ledger.Store) *API {
	return New(nil, ledger.New(store, ""))
}

func postPayment(t *testing.T, api *API, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/payments", strings.NewReader(body))
	rec := httptest.NewRecorder()
	api.CreatePayment(rec, req)
	return rec
}

func TestCreatePayment(t *testing.T) {
	store := &stubStore{row: ledger.BalanceRow{
		ClientServiceID: 7,
		AmountDue:       10000,
		Status:          models.ServiceActivo,
		PaymentStatus:   models.PaymentPendiente,
	}}
	api := newTestAPI(store)

	rec := postPayment(t, api,
		`{"client_service_id": 7, "amount": 40.00, "payment_method": "transferencia", "reference_number": "TRX-1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body)
	}

	var resp struct {
		Data ledger.Result `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Data.Payment.Amount != 4000 {
		t.Errorf("payment amount = %s, want 40.00", resp.Data.Payment.Amount)
	}
	if resp.Data.RemainingServiceAmount != 6000 {
		t.Errorf("remaining = %s, want 60.00", resp.Data.RemainingServiceAmount)
	}
	if store.updatedBalance == nil || *store.updatedBalance != 6000 {
		t.Errorf("stored balance = %v, want 60.00", store.updatedBalance)
	}
}

func TestCreatePaymentStatusMapping(t *testing.T) {
	tests := []struct {
		name     string
		store    *stubStore
		body     string
		wantCode int
	}{
		{
			name:     "invalid JSON",
			store:    &stubStore{},
			body:     `{`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unknown method",
			store:    &stubStore{},
			body:     `{"client_service_id": 1, "payment_method": "bitcoin"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "overpayment",
			store: &stubStore{row: ledger.BalanceRow{
				ClientServiceID: 1, AmountDue: 10000,
				Status: models.ServiceActivo, PaymentStatus: models.PaymentPendiente,
			}},
			body:     `{"client_service_id": 1, "amount": 150.00, "payment_method": "efectivo"}`,
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "service not found",
			store:    &stubStore{missing: true},
			body:     `{"client_service_id": 99, "payment_method": "efectivo"}`,
			wantCode: http.StatusNotFound,
		},
		{
			name: "storage failure",
			store: &stubStore{
				row: ledger.BalanceRow{
					ClientServiceID: 1, AmountDue: 10000,
					Status: models.ServiceActivo, PaymentStatus: models.PaymentPendiente,
				},
				commitErr: errors.New("connection reset"),
			},
			body:     `{"client_service_id": 1, "payment_method": "efectivo"}`,
			wantCode: http.StatusInternalServerError,
		},
		{
			name: "concurrent conflict",
			store: &stubStore{
				row: ledger.BalanceRow{
					ClientServiceID: 1, AmountDue: 10000,
					Status: models.ServiceActivo, PaymentStatus: models.PaymentPendiente,
				},
				commitErr: ledger.ErrConflict,
			},
			body:     `{"client_service_id": 1, "payment_method": "efectivo"}`,
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postPayment(t, newTestAPI(tt.store), tt.body)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantCode, rec.Body)
			}
		})
	}
}

func TestListPaymentsByDateRangeValidation(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{name: "missing params", target: "/payments/filter/date"},
		{name: "missing end", target: "/payments/filter/date?start=2026-01-01"},
		{name: "malformed start", target: "/payments/filter/date?start=not-a-date&end=2026-01-31"},
		{name: "malformed end", target: "/payments/filter/date?start=2026-01-01&end=31/01/2026"},
		{name: "impossible date", target: "/payments/filter/date?start=2026-02-30&end=2026-03-01"},
	}

	// Rejected before any query runs, so no database is needed.
	api := &API{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			api.ListPaymentsByDateRange(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("GET %s status = %d, want %d", tt.target, rec.Code, http.StatusBadRequest)
			}
		})
	}
}
