package handlers

import (
	"net/http"

	"github.com/embeddingminds/sgps/models"
)

type dashboardData struct {
	TotalClients        int `json:"total_clients"`
	TotalServices       int `json:"total_services"`
	TotalClientServices int `json:"total_client_services"`
	TotalPayments       int `json:"total_payments"`

	OutstandingReceivable models.Money `json:"outstanding_receivable"`
	TotalCollected        models.Money `json:"total_collected"`

	ActiveSubscriptions  int `json:"active_subscriptions"`
	OverdueSubscriptions int `json:"overdue_subscriptions"`

	RecentPayments []models.Payment `json:"recent_payments"`
}

// GetDashboard retrieves dashboard summary statistics
// @Summary      Get dashboard
// @Description  Get entity totals, outstanding receivable, collected volume, and recent payments.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  Response{data=dashboardData}
// @Router       /dashboard [get]
// @Security     BasicAuth
func (a *API) GetDashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var d dashboardData

	a.db.QueryRow(ctx, "SELECT COUNT(*) FROM clients").Scan(&d.TotalClients)
	a.db.QueryRow(ctx, "SELECT COUNT(*) FROM services").Scan(&d.TotalServices)
	a.db.QueryRow(ctx, "SELECT COUNT(*) FROM client_services").Scan(&d.TotalClientServices)
	a.db.QueryRow(ctx, "SELECT COUNT(*) FROM payments").Scan(&d.TotalPayments)

	a.db.QueryRow(ctx, `SELECT COALESCE(SUM(amount_due), 0) FROM client_services
		WHERE status NOT IN ('cancelado', 'completado')`).Scan(&d.OutstandingReceivable)
	a.db.QueryRow(ctx, "SELECT COALESCE(SUM(amount), 0) FROM payments").Scan(&d.TotalCollected)

	a.db.QueryRow(ctx, "SELECT COUNT(*) FROM client_services WHERE status = 'activo'").Scan(&d.ActiveSubscriptions)
	a.db.QueryRow(ctx, `SELECT COUNT(*) FROM client_services
		WHERE payment_status = 'vencido'
		   OR (payment_status IN ('pendiente', 'parcial') AND due_date IS NOT NULL AND due_date < CURRENT_DATE)`).
		Scan(&d.OverdueSubscriptions)

	d.RecentPayments = []models.Payment{}
	rows, err := a.db.Query(ctx, paymentSelectQuery+" ORDER BY p.payment_date DESC LIMIT 5")
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			p, err := scanPayment(rows)
			if err != nil {
				break
			}
			d.RecentPayments = append(d.RecentPayments, p)
		}
	}

	writeJSON(w, http.StatusOK, d)
}
