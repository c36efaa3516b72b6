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

const clientSelectQuery = `SELECT client_id, type, name, phone, email, identification_number,
	identification_type, address, city, country, postal_code, is_active, created_at, updated_at
	FROM clients`

func scanClient(scanner interface{ Scan(...any) error }) (models.Client, error) {
	var c models.Client
	err := scanner.Scan(&c.ID, &c.Type, &c.Name, &c.Phone, &c.Email, &c.IdentificationNumber,
		&c.IdentificationType, &c.Address, &c.City, &c.Country, &c.PostalCode,
		&c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// ListClients lists all clients
// @Summary      List clients
// @Description  Get all clients ordered by creation date (newest first).
// @Tags         clients
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Client}
// @Router       /clients [get]
// @Security     BasicAuth
func (a *API) ListClients(w http.ResponseWriter, r *http.Request) {
	rows, err := a.db.Query(r.Context(), clientSelectQuery+" ORDER BY created_at DESC")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		clients = append(clients, c)
	}
	writeJSON(w, http.StatusOK, clients)
}

// GetClient retrieves a single client by ID
// @Summary      Get client
// @Tags         clients
// @Produce      json
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  Response{data=models.Client}
// @Failure      404  {object}  Response{error=string}
// @Router       /clients/{id} [get]
// @Security     BasicAuth
func (a *API) GetClient(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	c, err := scanClient(a.db.QueryRow(r.Context(), clientSelectQuery+" WHERE client_id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "client not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// CreateClient creates a new client
// @Summary      Create client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        client  body      models.ClientInput  true  "Client contents"
// @Success      201     {object}  Response{data=models.Client}
// @Failure      400     {object}  Response{error=string}
// @Failure      409     {object}  Response{error=string}
// @Router       /clients [post]
// @Security     BasicAuth
func (a *API) CreateClient(w http.ResponseWriter, r *http.Request) {
	var input models.ClientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	c, err := scanClient(a.db.QueryRow(r.Context(), `INSERT INTO clients
		(type, name, phone, email, identification_number, identification_type, address, city, country, postal_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING client_id, type, name, phone, email, identification_number,
			identification_type, address, city, country, postal_code, is_active, created_at, updated_at`,
		input.Type, input.Name, input.Phone, input.Email, input.IdentificationNumber,
		input.IdentificationType, input.Address, input.City, input.Country, input.PostalCode))
	if err != nil {
		if isUniqueViolation(err) {
			writeError(w, http.StatusConflict, "email or identification number already registered")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// UpdateClient updates an existing client
// @Summary      Update client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id      path      int                 true  "Client ID"
// @Param        client  body      models.ClientInput  true  "Updated client contents"
// @Success      200     {object}  Response{data=models.Client}
// @Failure      404     {object}  Response{error=string}
// @Router       /clients/{id} [put]
// @Security     BasicAuth
func (a *API) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.ClientInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	c, err := scanClient(a.db.QueryRow(r.Context(), `UPDATE clients
		SET type = $1, name = $2, phone = $3, email = $4, identification_number = $5,
			identification_type = $6, address = $7, city = $8, country = $9,
			postal_code = $10, is_active = $11, updated_at = CURRENT_TIMESTAMP
		WHERE client_id = $12
		RETURNING client_id, type, name, phone, email, identification_number,
			identification_type, address, city, country, postal_code, is_active, created_at, updated_at`,
		input.Type, input.Name, input.Phone, input.Email, input.IdentificationNumber,
		input.IdentificationType, input.Address, input.City, input.Country,
		input.PostalCode, isActive, id))
	if err != nil {
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			writeError(w, http.StatusNotFound, "client not found")
		case isUniqueViolation(err):
			writeError(w, http.StatusConflict, "email or identification number already registered")
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// DeleteClient deletes a client
// @Summary      Delete client
// @Tags         clients
// @Produce      json
// @Param        id   path      int  true  "Client ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /clients/{id} [delete]
// @Security     BasicAuth
func (a *API) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	tag, err := a.db.Exec(r.Context(), "DELETE FROM clients WHERE client_id = $1", id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "client not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}

// SearchClients searches clients by name
// @Summary      Search clients
// @Description  Case-insensitive partial match on client name, limited to 100 results.
// @Tags         clients
// @Produce      json
// @Param        name  query     string  true  "Name fragment"
// @Success      200   {object}  Response{data=[]models.Client}
// @Router       /clients/search [get]
// @Security     BasicAuth
func (a *API) SearchClients(w http.ResponseWriter, r *http.Request) {
	name := strings.Join(strings.Fields(r.URL.Query().Get("name")), " ")
	if name == "" {
		writeError(w, http.StatusBadRequest, "name query parameter is required")
		return
	}

	rows, err := a.db.Query(r.Context(),
		clientSelectQuery+" WHERE name ILIKE $1 ORDER BY created_at DESC LIMIT 100",
		"%"+name+"%")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		clients = append(clients, c)
	}
	writeJSON(w, http.StatusOK, clients)
}
