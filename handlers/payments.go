package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/embeddingminds/sgps/ledger"
	"github.com/embeddingminds/sgps/metrics"
	"github.com/embeddingminds/sgps/models"
)

const paymentSelectQuery = `SELECT p.payment_id, p.client_service_id, p.amount, p.payment_method,
	p.reference_number, p.notes, p.status, p.payment_type, p.payment_date, p.created_at
	FROM payments p`

const paymentDetailQuery = `SELECT p.payment_id, p.client_service_id, p.amount, p.payment_method,
	p.reference_number, p.notes, p.status, p.payment_type, p.payment_date, p.created_at,
	cs.client_id, c.name, s.name
	FROM payments p
	JOIN client_services cs ON p.client_service_id = cs.client_service_id
	JOIN clients c ON cs.client_id = c.client_id
	JOIN services s ON cs.service_id = s.service_id`

func scanPayment(scanner interface{ Scan(...any) error }) (models.Payment, error) {
	var p models.Payment
	err := scanner.Scan(&p.ID, &p.ClientServiceID, &p.Amount, &p.Method,
		&p.ReferenceNumber, &p.Notes, &p.Status, &p.PaymentType, &p.PaymentDate, &p.CreatedAt)
	return p, err
}

func scanDetailedPayment(scanner interface{ Scan(...any) error }) (models.Payment, error) {
	var p models.Payment
	err := scanner.Scan(&p.ID, &p.ClientServiceID, &p.Amount, &p.Method,
		&p.ReferenceNumber, &p.Notes, &p.Status, &p.PaymentType, &p.PaymentDate, &p.CreatedAt,
		&p.ClientID, &p.ClientName, &p.ServiceName)
	return p, err
}

func (a *API) listPayments(w http.ResponseWriter, r *http.Request, condition string, args ...any) {
	query := paymentSelectQuery
	if condition != "" {
		query += " WHERE " + condition
	}
	query += " ORDER BY p.payment_date DESC"

	rows, err := a.db.Query(r.Context(), query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		payments = append(payments, p)
	}
	writeJSON(w, http.StatusOK, payments)
}

// ListPayments lists all payments
// @Summary      List payments
// @Description  Get all payments ordered by payment date (newest first).
// @Tags         payments
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Payment}
// @Router       /payments [get]
// @Security     BasicAuth
func (a *API) ListPayments(w http.ResponseWriter, r *http.Request) {
	a.listPayments(w, r, "")
}

// GetPayment retrieves a single payment by ID
// @Summary      Get payment
// @Tags         payments
// @Produce      json
// @Param        id   path      int  true  "Payment ID"
// @Success      200  {object}  Response{data=models.Payment}
// @Failure      404  {object}  Response{error=string}
// @Router       /payments/{id} [get]
// @Security     BasicAuth
func (a *API) GetPayment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	p, err := scanPayment(a.db.QueryRow(r.Context(), paymentSelectQuery+" WHERE p.payment_id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "payment not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// CreatePayment applies a payment to a client service balance
// @Summary      Apply payment
// @Description  Apply a payment against the outstanding balance of a client service. The payment record and the balance update commit atomically. An omitted amount settles the full balance.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        payment  body      models.PaymentInput  true  "Payment contents"
// @Success      201      {object}  Response{data=ledger.Result}
// @Failure      400      {object}  Response{error=string}
// @Failure      404      {object}  Response{error=string}
// @Failure      409      {object}  Response{error=string}
// @Failure      500      {object}  Response{error=string}
// @Router       /payments [post]
// @Security     BasicAuth
func (a *API) CreatePayment(w http.ResponseWriter, r *http.Request) {
	var input models.PaymentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	result, err := a.ledger.ApplyPayment(r.Context(), input)
	if err != nil {
		metrics.PaymentRejected(rejectionReason(err))
		writeLedgerError(w, err)
		return
	}

	metrics.PaymentApplied(int64(result.Payment.Amount))
	writeJSON(w, http.StatusCreated, result)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ledger.ErrValidation):
		return "validation"
	case errors.Is(err, ledger.ErrNotFound):
		return "not_found"
	case errors.Is(err, ledger.ErrConflict):
		return "conflict"
	default:
		return "storage"
	}
}

// UpdatePayment updates the editable metadata of a payment
// @Summary      Update payment metadata
// @Description  Edit reference number and notes. Amount, method and the service reference are immutable after creation.
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id       path      int                          true  "Payment ID"
// @Param        payment  body      models.PaymentMetadataInput  true  "Updated metadata"
// @Success      200      {object}  Response{data=models.Payment}
// @Failure      404      {object}  Response{error=string}
// @Router       /payments/{id} [put]
// @Security     BasicAuth
func (a *API) UpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.PaymentMetadataInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	p, err := scanPayment(a.db.QueryRow(r.Context(), `UPDATE payments
		SET reference_number = $1, notes = $2
		WHERE payment_id = $3
		RETURNING payment_id, client_service_id, amount, payment_method, reference_number,
			notes, status, payment_type, payment_date, created_at`,
		input.ReferenceNumber, input.Notes, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "payment not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// UpdatePaymentStatus updates the status of a payment
// @Summary      Update payment status
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        id      path      int          true  "Payment ID"
// @Param        status  body      statusInput  true  "New status"
// @Success      200     {object}  Response{data=models.Payment}
// @Failure      400     {object}  Response{error=string}
// @Failure      404     {object}  Response{error=string}
// @Router       /payments/{id}/status [patch]
// @Security     BasicAuth
func (a *API) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input statusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !models.ValidPaymentRecordStatus(input.Status) {
		writeError(w, http.StatusBadRequest, "status must be one of: borrador, en proceso, pagado")
		return
	}

	p, err := scanPayment(a.db.QueryRow(r.Context(), `UPDATE payments
		SET status = $1
		WHERE payment_id = $2
		RETURNING payment_id, client_service_id, amount, payment_method, reference_number,
			notes, status, payment_type, payment_date, created_at`,
		input.Status, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "payment not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePayment deletes a payment record
// @Summary      Delete payment
// @Description  Remove a payment record. The subscription balance is not recalculated.
// @Tags         payments
// @Produce      json
// @Param        id   path      int  true  "Payment ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /payments/{id} [delete]
// @Security     BasicAuth
func (a *API) DeletePayment(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	tag, err := a.db.Exec(r.Context(), "DELETE FROM payments WHERE payment_id = $1", id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "payment not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// ListPaymentsByService lists the payments of one client service
// @Summary      List payments by client service
// @Tags         payments
// @Produce      json
// @Param        clientServiceID  path      int  true  "Client service ID"
// @Success      200              {object}  Response{data=[]models.Payment}
// @Router       /payments/service/{clientServiceID} [get]
// @Security     BasicAuth
func (a *API) ListPaymentsByService(w http.ResponseWriter, r *http.Request) {
	clientServiceID, _ := strconv.Atoi(chi.URLParam(r, "clientServiceID"))
	a.listPayments(w, r, "p.client_service_id = $1", clientServiceID)
}

// ListPaymentsByClient lists all payments of one client
// @Summary      List payments by client
// @Tags         payments
// @Produce      json
// @Param        clientID  path      int  true  "Client ID"
// @Success      200       {object}  Response{data=[]models.Payment}
// @Router       /payments/client/{clientID} [get]
// @Security     BasicAuth
func (a *API) ListPaymentsByClient(w http.ResponseWriter, r *http.Request) {
	clientID, _ := strconv.Atoi(chi.URLParam(r, "clientID"))
	a.listPayments(w, r,
		"p.client_service_id IN (SELECT client_service_id FROM client_services WHERE client_id = $1)",
		clientID)
}

// GetClientPaymentsTotal sums the payments of one client
// @Summary      Total payments for a client
// @Tags         payments
// @Produce      json
// @Param        clientID  path      int  true  "Client ID"
// @Success      200       {object}  Response{data=map[string]models.Money}
// @Router       /payments/client/{clientID}/total [get]
// @Security     BasicAuth
func (a *API) GetClientPaymentsTotal(w http.ResponseWriter, r *http.Request) {
	clientID, _ := strconv.Atoi(chi.URLParam(r, "clientID"))
	var total models.Money
	err := a.db.QueryRow(r.Context(), `SELECT COALESCE(SUM(p.amount), 0)
		FROM payments p
		JOIN client_services cs ON p.client_service_id = cs.client_service_id
		WHERE cs.client_id = $1`, clientID).Scan(&total)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]models.Money{"total": total})
}

// ListPaymentsByStatus lists payments with a given status
// @Summary      List payments by status
// @Tags         payments
// @Produce      json
// @Param        status  path      string  true  "Payment status"  Enums(borrador, en proceso, pagado)
// @Success      200     {object}  Response{data=[]models.Payment}
// @Failure      400     {object}  Response{error=string}
// @Router       /payments/status/{status} [get]
// @Security     BasicAuth
func (a *API) ListPaymentsByStatus(w http.ResponseWriter, r *http.Request) {
	status := chi.URLParam(r, "status")
	if !models.ValidPaymentRecordStatus(status) {
		writeError(w, http.StatusBadRequest, "status must be one of: borrador, en proceso, pagado")
		return
	}
	a.listPayments(w, r, "p.status = $1", status)
}

// ListPaymentsByDateRange lists payments between two dates
// @Summary      List payments by date range
// @Tags         payments
// @Produce      json
// @Param        start  query     string  true  "Start date (YYYY-MM-DD)"
// @Param        end    query     string  true  "End date (YYYY-MM-DD)"
// @Success      200    {object}  Response{data=[]models.Payment}
// @Failure      400    {object}  Response{error=string}
// @Router       /payments/filter/date [get]
// @Security     BasicAuth
func (a *API) ListPaymentsByDateRange(w http.ResponseWriter, r *http.Request) {
	start := r.URL.Query().Get("start")
	end := r.URL.Query().Get("end")
	if start == "" || end == "" {
		writeError(w, http.StatusBadRequest, "start and end query parameters are required")
		return
	}
	if !models.ValidDate(start) || !models.ValidDate(end) {
		writeError(w, http.StatusBadRequest, "start and end must be dates in YYYY-MM-DD format")
		return
	}
	a.listPayments(w, r, "p.payment_date >= $1::date AND p.payment_date < $2::date + 1", start, end)
}

// ListDetailedPayments lists payments with client and service info joined
// @Summary      List detailed payments
// @Tags         payments
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Payment}
// @Router       /payments/details/all [get]
// @Security     BasicAuth
func (a *API) ListDetailedPayments(w http.ResponseWriter, r *http.Request) {
	rows, err := a.db.Query(r.Context(), paymentDetailQuery+" ORDER BY p.payment_date DESC")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	payments := []models.Payment{}
	for rows.Next() {
		p, err := scanDetailedPayment(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		payments = append(payments, p)
	}
	writeJSON(w, http.StatusOK, payments)
}
