package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"github.com/embeddingminds/sgps/models"
)

const serviceSelectQuery = `SELECT service_id, name, description, price, is_active, created_at, updated_at
	FROM services`

func scanService(scanner interface{ Scan(...any) error }) (models.Service, error) {
	var s models.Service
	err := scanner.Scan(&s.ID, &s.Name, &s.Description, &s.Price, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// ListServices lists the service catalog
// @Summary      List services
// @Tags         services
// @Produce      json
// @Success      200  {object}  Response{data=[]models.Service}
// @Router       /services [get]
// @Security     BasicAuth
func (a *API) ListServices(w http.ResponseWriter, r *http.Request) {
	rows, err := a.db.Query(r.Context(), serviceSelectQuery+" ORDER BY created_at DESC")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	services := []models.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		services = append(services, s)
	}
	writeJSON(w, http.StatusOK, services)
}

// GetService retrieves a single service by ID
// @Summary      Get service
// @Tags         services
// @Produce      json
// @Param        id   path      int  true  "Service ID"
// @Success      200  {object}  Response{data=models.Service}
// @Failure      404  {object}  Response{error=string}
// @Router       /services/{id} [get]
// @Security     BasicAuth
func (a *API) GetService(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	s, err := scanService(a.db.QueryRow(r.Context(), serviceSelectQuery+" WHERE service_id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "service not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// CreateService creates a new catalog service
// @Summary      Create service
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        service  body      models.ServiceInput  true  "Service contents"
// @Success      201      {object}  Response{data=models.Service}
// @Failure      400      {object}  Response{error=string}
// @Router       /services [post]
// @Security     BasicAuth
func (a *API) CreateService(w http.ResponseWriter, r *http.Request) {
	var input models.ServiceInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if msg := input.Validate(); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	s, err := scanService(a.db.QueryRow(r.Context(), `INSERT INTO services (name, description, price)
		VALUES ($1, $2, $3)
		RETURNING service_id, name, description, price, is_active, created_at, updated_at`,
		input.Name, input.Description, input.Price))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, s)
}

// UpdateService updates an existing service
// @Summary      Update service
// @Tags         services
// @Accept       json
// @Produce      json
// @Param        id       path      int                  true  "Service ID"
// @Param        service  body      models.ServiceInput  true  "Updated service contents"
// @Success      200      {object}  Response{data=models.Service}
// @Failure      404      {object}  Response{error=string}
// @Router       /services/{id} [put]
// @Security     BasicAuth
func (a *API) UpdateService(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	var input models.ServiceInput
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

	s, err := scanService(a.db.QueryRow(r.Context(), `UPDATE services
		SET name = $1, description = $2, price = $3, is_active = $4, updated_at = CURRENT_TIMESTAMP
		WHERE service_id = $5
		RETURNING service_id, name, description, price, is_active, created_at, updated_at`,
		input.Name, input.Description, input.Price, isActive, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeError(w, http.StatusNotFound, "service not found")
		} else {
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// SearchServices finds services whose name or description match a term
// @Summary      Search services
// @Tags         services
// @Produce      json
// @Param        term  query     string  true  "Search term, partial match on name or description"
// @Success      200   {object}  Response{data=[]models.Service}
// @Failure      400   {object}  Response{error=string}
// @Router       /services/search [get]
// @Security     BasicAuth
func (a *API) SearchServices(w http.ResponseWriter, r *http.Request) {
	term := strings.Join(strings.Fields(r.URL.Query().Get("term")), " ")
	if term == "" {
		writeError(w, http.StatusBadRequest, "term query parameter is required")
		return
	}

	rows, err := a.db.Query(r.Context(),
		serviceSelectQuery+" WHERE name ILIKE $1 OR description ILIKE $1 ORDER BY name LIMIT 100",
		"%"+term+"%")
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	services := []models.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		services = append(services, s)
	}
	writeJSON(w, http.StatusOK, services)
}

// ListServicesByPrice lists services whose price falls in a range
// @Summary      List services by price range
// @Tags         services
// @Produce      json
// @Param        min  query     string  true  "Minimum price, e.g. 10.00"
// @Param        max  query     string  true  "Maximum price, e.g. 50.00"
// @Success      200  {object}  Response{data=[]models.Service}
// @Failure      400  {object}  Response{error=string}
// @Router       /services/filter/price [get]
// @Security     BasicAuth
func (a *API) ListServicesByPrice(w http.ResponseWriter, r *http.Request) {
	min, err := models.ParseMoney(r.URL.Query().Get("min"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "min must be a valid price")
		return
	}
	max, err := models.ParseMoney(r.URL.Query().Get("max"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "max must be a valid price")
		return
	}
	if min > max {
		writeError(w, http.StatusBadRequest, "min cannot be greater than max")
		return
	}

	rows, err := a.db.Query(r.Context(),
		serviceSelectQuery+" WHERE price BETWEEN $1 AND $2 ORDER BY price",
		min, max)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer rows.Close()

	services := []models.Service{}
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		services = append(services, s)
	}
	writeJSON(w, http.StatusOK, services)
}

// DeleteService deletes a service
// @Summary      Delete service
// @Tags         services
// @Produce      json
// @Param        id   path      int  true  "Service ID"
// @Success      200  {object}  Response{data=map[string]string}
// @Failure      404  {object}  Response{error=string}
// @Router       /services/{id} [delete]
// @Security     BasicAuth
func (a *API) DeleteService(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(chi.URLParam(r, "id"))
	tag, err := a.db.Exec(r.Context(), "DELETE FROM services WHERE service_id = $1", id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if tag.RowsAffected() == 0 {
		writeError(w, http.StatusNotFound, "service not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "deleted"})
}
