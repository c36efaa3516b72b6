package models

import "time"

// Service subscription statuses.
const (
	ServiceActivo     = "activo"
	ServiceInactivo   = "inactivo"
	ServiceCancelado  = "cancelado"
	ServiceSuspendido = "suspendido"
	ServiceCompletado = "completado"
)

// Payment statuses of a subscription balance.
const (
	PaymentPendiente = "pendiente"
	PaymentParcial   = "parcial"
	PaymentPagado    = "pagado"
	PaymentVencido   = "vencido"
)

// ValidServiceStatus reports whether s is a recognized subscription status.
func ValidServiceStatus(s string) bool {
	switch s {
	case ServiceActivo, ServiceInactivo, ServiceCancelado, ServiceSuspendido, ServiceCompletado:
		return true
	}
	return false
}

// SettledServiceStatus reports whether s is a terminal state that requires a
// zero balance. Subscriptions in these states are not payable.
func SettledServiceStatus(s string) bool {
	return s == ServiceCancelado || s == ServiceCompletado
}

// ValidDate reports whether s is an ISO calendar date (2006-01-02). Dates are
// checked before they reach the database so a typo is a 400, not a driver
// error.
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// ClientService represents a service contracted by a client, carrying the
// outstanding balance the ledger operation settles against.
type ClientService struct {
	ID            int       `json:"client_service_id"`
	ClientID      int       `json:"client_id"`
	ServiceID     int       `json:"service_id"`
	AmountDue     Money     `json:"amount_due"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	DueDate       *string   `json:"due_date"`
	Notes         *string   `json:"notes"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	// Computed fields
	ClientName   *string `json:"client_name,omitempty"`
	ServiceName  *string `json:"service_name,omitempty"`
	ServicePrice *Money  `json:"service_price,omitempty"`
}

// ClientServiceInput is used for creating subscriptions. AmountDue is
// optional and defaults to the catalog price of the service.
type ClientServiceInput struct {
	ClientID  int     `json:"client_id"`
	ServiceID int     `json:"service_id"`
	AmountDue *Money  `json:"amount_due"`
	DueDate   *string `json:"due_date"`
	Notes     *string `json:"notes"`
}

func (c *ClientServiceInput) Validate() string {
	if c.ClientID <= 0 {
		return "client_id is required"
	}
	if c.ServiceID <= 0 {
		return "service_id is required"
	}
	if c.AmountDue != nil && *c.AmountDue < 0 {
		return "amount_due must be zero or greater"
	}
	if c.DueDate != nil && !ValidDate(*c.DueDate) {
		return "due_date must be a date in YYYY-MM-DD format"
	}
	return ""
}

// ClientServiceMetadataInput carries the non-financial fields an update may
// touch. Balance and payment status only move through the ledger operation.
type ClientServiceMetadataInput struct {
	DueDate *string `json:"due_date"`
	Notes   *string `json:"notes"`
}

func (c *ClientServiceMetadataInput) Validate() string {
	if c.DueDate != nil && !ValidDate(*c.DueDate) {
		return "due_date must be a date in YYYY-MM-DD format"
	}
	return ""
}
