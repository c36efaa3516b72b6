package ledger

import "github.com/embeddingminds/sgps/models"

// Outcome is the result of applying a payment amount to a balance.
type Outcome struct {
	RemainingBalance models.Money
	PaymentStatus    string
	ServiceStatus    string
}

// Derive computes the new balance and statuses after applying amount to
// previous. It is a pure function; callers must have validated
// 0 < amount <= previous beforehand. A fully settled balance cancels the
// subscription, anything else leaves it active with a pending balance.
func Derive(previous, amount models.Money) Outcome {
	remaining := previous - amount
	if remaining < 0 {
		remaining = 0
	}
	out := Outcome{RemainingBalance: remaining}
	if remaining == 0 {
		out.PaymentStatus = models.PaymentPagado
		out.ServiceStatus = models.ServiceCancelado
	} else {
		out.PaymentStatus = models.PaymentPendiente
		out.ServiceStatus = models.ServiceActivo
	}
	return out
}
