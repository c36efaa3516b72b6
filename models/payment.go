package models

import (
	"strings"
	"time"
)

// Payment methods.
const (
	MethodEfectivo      = "efectivo"
	MethodTransferencia = "transferencia"
	MethodTarjeta       = "tarjeta"
	MethodCheque        = "cheque"
	MethodOtro          = "otro"
)

// Payment record statuses.
const (
	PaymentStatusBorrador  = "borrador"
	PaymentStatusEnProceso = "en proceso"
	PaymentStatusPagado    = "pagado"
)

// ValidPaymentMethod reports whether m is a recognized payment method.
func ValidPaymentMethod(m string) bool {
	switch m {
	case MethodEfectivo, MethodTransferencia, MethodTarjeta, MethodCheque, MethodOtro:
		return true
	}
	return false
}

// ValidPaymentRecordStatus reports whether s is a recognized payment status.
func ValidPaymentRecordStatus(s string) bool {
	switch s {
	case PaymentStatusBorrador, PaymentStatusEnProceso, PaymentStatusPagado:
		return true
	}
	return false
}

// Payment is an immutable record of funds applied to one client service.
// Amount, method and the service reference are never recomputed after
// creation; only reference, notes and status may change.
type Payment struct {
	ID              int       `json:"payment_id"`
	ClientServiceID int       `json:"client_service_id"`
	Amount          Money     `json:"amount"`
	Method          string    `json:"payment_method"`
	ReferenceNumber *string   `json:"reference_number"`
	Notes           *string   `json:"notes"`
	Status          string    `json:"status"`
	PaymentType     string    `json:"payment_type"`
	PaymentDate     time.Time `json:"payment_date"`
	CreatedAt       time.Time `json:"created_at"`
	// Computed fields
	ClientID    *int    `json:"client_id,omitempty"`
	ClientName  *string `json:"client_name,omitempty"`
	ServiceName *string `json:"service_name,omitempty"`
}

// PaymentInput is the request body for applying a payment. Amount is
// optional; when omitted the full outstanding balance is settled.
type PaymentInput struct {
	ClientServiceID int     `json:"client_service_id"`
	Amount          *Money  `json:"amount"`
	Method          string  `json:"payment_method"`
	ReferenceNumber *string `json:"reference_number"`
	Notes           *string `json:"notes"`
	PaymentType     *string `json:"payment_type"`
}

func (p *PaymentInput) Validate() string {
	if p.ClientServiceID <= 0 {
		return "client_service_id is required"
	}
	p.Method = strings.ToLower(strings.TrimSpace(p.Method))
	if p.Method == "" {
		return "payment_method is required"
	}
	if !ValidPaymentMethod(p.Method) {
		return "payment_method must be one of: efectivo, transferencia, tarjeta, cheque, otro"
	}
	if p.Amount != nil && *p.Amount <= 0 {
		return "amount must be positive"
	}
	if p.ReferenceNumber != nil && len(*p.ReferenceNumber) > 100 {
		return "reference_number cannot exceed 100 characters"
	}
	if p.Notes != nil && len(*p.Notes) > 500 {
		return "notes cannot exceed 500 characters"
	}
	return ""
}

// PaymentMetadataInput carries the editable fields of an existing payment.
type PaymentMetadataInput struct {
	ReferenceNumber *string `json:"reference_number"`
	Notes           *string `json:"notes"`
}

func (p *PaymentMetadataInput) Validate() string {
	if p.ReferenceNumber != nil && len(*p.ReferenceNumber) > 100 {
		return "reference_number cannot exceed 100 characters"
	}
	if p.Notes != nil && len(*p.Notes) > 500 {
		return "notes cannot exceed 500 characters"
	}
	return ""
}
