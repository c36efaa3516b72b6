package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/embeddingminds/sgps/models"
)

const clientServiceSelectQuery = `SELECT cs.client_service_id, cs.client_id, cs.service_id, cs.amount_due,
	cs.status, cs.payment_status, cs.due_date, cs.notes, cs.created_at, cs.updated_at,
	c.name, s.name, s.price
	FROM client_services cs
	JOIN clients c ON cs.client_id = c.client_id
	JOIN services s ON cs.service_id = s.service_id`

func scanClientService(scanner interface{ Scan(...any) error }) (models.ClientService, error) {
	var cs models.ClientService
	err := scanner.Scan(&cs.ID, &cs.ClientID, &cs.ServiceID, &cs.AmountDue,
		&cs.Status, &cs.PaymentStatus, &cs.DueDate, &cs.Notes, &cs.CreatedAt, &cs.UpdatedAt,
		&cs.ClientName, &cs.ServiceName, &cs.ServicePrice)
	return cs, err
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}

func isNotNullViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23502"
}

func (a *API) listClientServices(w http.ResponseWriter, r *http.Request, condition string, args ...any) {
	query := clientServiceSelectQuery
	if condition != "" {
		query += " WHERE " + condition
	}
	query += " ORDER BY cs.created_at DESC"

	rows, err := a.db.Query(r.Context(), query, args...)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	subs := []models.ClientService{}
	for rows.Next() {
		cs, err := scanClientService(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		subs = append(subs, cs)
	}
	writeJSON(w, http.StatusOK, subs)
}

// ListClientServices lists all subscriptions
// @Summary      List client services
// @Description  Get all client-service subscriptions with client and service names joined.
// @Tags         client-services
// @Produce      json
// @Success      200  {object}  Response{data=[]models.ClientService}
// @Router       /client-services [get]
// @Security     BasicAuth
func (a *API) ListClientServices(w http.ResponseWriter, r *http.Request) {
	a.listClientServices(w, r, "")
}

// GetClientService retrieves a single subscription by ID
// @Summary      Get client service
// @Tags         client-services
// @Produce      json
// @Param        id   path      int  true  "Client service ID"
// @Success      200  {object}  Response{data=models.ClientService}
// @Failure      404  {object}  Response{error=string}
// @Router       /client-services/{id} [get]
// @Security     BasicAuth
func (a *API) GetClientService(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	cs, err := scanClientService(a.db.QueryRow(r.Context(),
		clientServiceSelectQuery+" WHERE cs.client_service_id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "client service not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

// CreateClientService assigns a service to a client
// @Summary      Create client service
// @Description  Assign a catalog service to a client. amount_due defaults to the catalog price.
// @Tags         client-services
// @Accept       json
// @Produce      json
// @Param        subscription  body      models.ClientServiceInput  true  "Subscription contents"
// @Success      201           {object}  Response{data=models.ClientService}
// @Failure      400           {object}  Response{error=string}
// @Failure      404           {object}  Response{error=string}
// @Router       /client-services [post]
// @Security     BasicAuth
func (a *API) CreateClientService(w http.ResponseWriter, r *http.Request) {
	var input models.ClientServiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	var id int
	err := a.db.QueryRow(r.Context(), `INSERT INTO client_services
		(client_id, service_id, amount_due, due_date, notes)
		VALUES ($1, $2, COALESCE($3::bigint, (SELECT price FROM services WHERE service_id = $2)), $4, $5)
		RETURNING client_service_id`,
		input.ClientID, input.ServiceID, input.AmountDue, input.DueDate, input.Notes).Scan(&id)
	if err != nil {
		// A missing service also surfaces as a null amount_due from the
		// COALESCE subselect (23502), not only as a foreign key violation.
		if isForeignKeyViolation(err) || isNotNullViolation(err) {
			writeError(w, http.StatusNotFound, "client or service not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	cs, err := scanClientService(a.db.QueryRow(r.Context(),
		clientServiceSelectQuery+" WHERE cs.client_service_id = $1", id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch created client service: "+err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, cs)
}

// UpdateClientService updates the non-financial fields of a subscription
// @Summary      Update client service metadata
// @Description  Edit due date and notes. Balance and payment status only change through payments.
// @Tags         client-services
// @Accept       json
// @Produce      json
// @Param        id        path      int                                true  "Client service ID"
// @Param        metadata  body      models.ClientServiceMetadataInput  true  "Updated metadata"
// @Success      200       {object}  Response{data=models.ClientService}
// @Failure      404       {object}  Response{error=string}
// @Router       /client-services/{id} [put]
// @Security     BasicAuth
func (a *API) UpdateClientService(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.ClientServiceMetadataInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	tag, err := a.db.Exec(r.Context(), `UPDATE client_services
		SET due_date = $1, notes = $2, updated_at = CURRENT_TIMESTAMP
		WHERE client_service_id = $3`,
		input.DueDate, input.Notes, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "client service not found")
		return
	}

	cs, err := scanClientService(a.db.QueryRow(r.Context(),
		clientServiceSelectQuery+" WHERE cs.client_service_id = $1", id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch updated client service: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

type statusInput struct {
	Status string `json:"status"`
}

// UpdateClientServiceStatus changes the subscription status
// @Summary      Update client service status
// @Description  Change the subscription status. Terminal financial states (cancelado, completado) require a zero balance; those transitions normally happen through payments.
// @Tags         client-services
// @Accept       json
// @Produce      json
// @Param        id      path      int          true  "Client service ID"
// @Param        status  body      statusInput  true  "New status"
// @Success      200     {object}  Response{data=models.ClientService}
// @Failure      400     {object}  Response{error=string}
// @Failure      404     {object}  Response{error=string}
// @Router       /client-services/{id}/status [patch]
// @Security     BasicAuth
func (a *API) UpdateClientServiceStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input statusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if !models.ValidServiceStatus(input.Status) {
		writeError(w, http.StatusBadRequest, "status must be one of: activo, inactivo, cancelado, suspendido, completado")
		return
	}

	if models.SettledServiceStatus(input.Status) {
		var due models.Money
		err := a.db.QueryRow(r.Context(),
			"SELECT amount_due FROM client_services WHERE client_service_id = $1", id).Scan(&due)
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "client service not found")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if due != 0 {
			writeError(w, http.StatusBadRequest,
				"cannot mark a subscription "+input.Status+" while "+due.String()+" is outstanding")
			return
		}
	}

	tag, err := a.db.Exec(r.Context(), `UPDATE client_services
		SET status = $1, updated_at = CURRENT_TIMESTAMP
		WHERE client_service_id = $2`, input.Status, id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "client service not found")
		return
	}

	cs, err := scanClientService(a.db.QueryRow(r.Context(),
		clientServiceSelectQuery+" WHERE cs.client_service_id = $1", id))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to re-fetch updated client service: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

// DeleteClientService deletes a subscription
// @Summary      Delete client service
// @Tags         client-services
// @Produce      json
// @Param        id   path      int  true  "Client service ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /client-services/{id} [delete]
// @Security     BasicAuth
func (a *API) DeleteClientService(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	tag, err := a.db.Exec(r.Context(), "DELETE FROM client_services WHERE client_service_id = $1", id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "client service not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// ListClientServicesByClient lists the subscriptions of one client
// @Summary      List client services by client
// @Tags         client-services
// @Produce      json
// @Param        clientID  path      int  true  "Client ID"
// @Success      200       {object}  Response{data=[]models.ClientService}
// @Router       /client-services/client/{clientID} [get]
// @Security     BasicAuth
func (a *API) ListClientServicesByClient(w http.ResponseWriter, r *http.Request) {
	clientID, _ := strconv.Atoi(chi.URLParam(r, "clientID"))
	a.listClientServices(w, r, "cs.client_id = $1", clientID)
}

// SearchClientServices searches subscriptions by service or client name
// @Summary      Search client services
// @Tags         client-services
// @Produce      json
// @Param        q    query     string  true  "Service or client name fragment"
// @Success      200  {object}  Response{data=[]models.ClientService}
// @Router       /client-services/search [get]
// @Security     BasicAuth
func (a *API) SearchClientServices(w http.ResponseWriter, r *http.Request) {
	q := strings.Join(strings.Fields(r.URL.Query().Get("q")), " ")
	if q == "" {
		writeError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}
	a.listClientServices(w, r, "(s.name ILIKE $1 OR c.name ILIKE $1)", "%"+q+"%")
}
