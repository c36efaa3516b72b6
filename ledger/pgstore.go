package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/embeddingminds/sgps/models"
)

// PGStore is the PostgreSQL record store. The row lock taken by
// GetClientServiceForUpdate serializes concurrent payments against the same
// client service, so two requests can never both subtract from a stale
// balance.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore wraps a pgx pool as a ledger store.
func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Begin(ctx context.Context) (Tx, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &pgTx{tx: tx}, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) GetClientServiceForUpdate(ctx context.Context, clientServiceID int) (BalanceRow, error) {
	var row BalanceRow
	err := t.tx.QueryRow(ctx, `SELECT client_service_id, amount_due, status, payment_status
		FROM client_services
		WHERE client_service_id = $1
		  AND status NOT IN ('cancelado', 'completado')
		  AND payment_status <> 'pagado'
		FOR UPDATE`, clientServiceID).
		Scan(&row.ClientServiceID, &row.AmountDue, &row.Status, &row.PaymentStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return BalanceRow{}, ErrNotFound
	}
	if err != nil {
		return BalanceRow{}, pgError(err)
	}
	return row, nil
}

func (t *pgTx) UpdateClientServiceBalance(ctx context.Context, clientServiceID int, newBalance models.Money, serviceStatus, paymentStatus string) error {
	tag, err := t.tx.Exec(ctx, `UPDATE client_services
		SET amount_due = $1,
		    status = $2,
		    payment_status = $3,
		    updated_at = CURRENT_TIMESTAMP
		WHERE client_service_id = $4`,
		newBalance, serviceStatus, paymentStatus, clientServiceID)
	if err != nil {
		return pgError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) InsertPayment(ctx context.Context, p PaymentFields) (models.Payment, error) {
	var out models.Payment
	err := t.tx.QueryRow(ctx, `INSERT INTO payments
		(client_service_id, amount, payment_method, reference_number, notes, status, payment_type, payment_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING payment_id, client_service_id, amount, payment_method, reference_number, notes, status, payment_type, payment_date, created_at`,
		p.ClientServiceID, p.Amount, p.Method, p.ReferenceNumber, p.Notes, p.Status, p.PaymentType, p.PaymentDate).
		Scan(&out.ID, &out.ClientServiceID, &out.Amount, &out.Method, &out.ReferenceNumber,
			&out.Notes, &out.Status, &out.PaymentType, &out.PaymentDate, &out.CreatedAt)
	if err != nil {
		return models.Payment{}, pgError(err)
	}
	return out, nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return pgError(err)
	}
	return nil
}

func (t *pgTx) Rollback(ctx context.Context) error {
	err := t.tx.Rollback(ctx)
	if errors.Is(err, pgx.ErrTxClosed) {
		return nil
	}
	return err
}

// pgError maps serialization failures and deadlocks (SQLSTATE 40001, 40P01)
// to ErrConflict; everything else passes through for the service to wrap.
func pgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "40001" || pgErr.Code == "40P01" {
			return fmt.Errorf("%w: %s", ErrConflict, pgErr.Code)
		}
	}
	return err
}
