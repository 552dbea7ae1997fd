package domain

import "strings"

type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusConfirmed Status = "confirmed"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// ParseStatus matches case-insensitively against the workflow statuses.
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusPending, StatusApproved, StatusConfirmed, StatusRejected, StatusCompleted:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// IsApproval reports whether entering s fires the approval side effects.
func (s Status) IsApproval() bool {
	return s == StatusApproved || s == StatusConfirmed
}

// IsApprovalTransition is true only when next is an approval status and
// differs from prev. Comparison ignores case so legacy rows still match.
func IsApprovalTransition(prev, next Status) bool {
	if !next.IsApproval() {
		return false
	}
	return !strings.EqualFold(strings.TrimSpace(string(prev)), strings.TrimSpace(string(next)))
}

type PaymentStatus string

const (
	PaymentStatusPending       PaymentStatus = "pending"
	PaymentStatusPaid          PaymentStatus = "paid"
	PaymentStatusFailed        PaymentStatus = "failed"
	PaymentStatusRefunded      PaymentStatus = "refunded"
	PaymentStatusPartiallyPaid PaymentStatus = "partially_paid"
)

// ParseSettablePaymentStatus accepts the subset an admin may set directly.
// refunded and partially_paid exist on stored records but are not settable here.
func ParseSettablePaymentStatus(raw string) (PaymentStatus, error) {
	switch s := PaymentStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return s, nil
	default:
		return "", ErrInvalidPaymentStatus
	}
}

// ParsePaymentStatus accepts every stored payment status. Used for filtering.
func ParsePaymentStatus(raw string) (PaymentStatus, error) {
	switch s := PaymentStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded, PaymentStatusPartiallyPaid:
		return s, nil
	default:
		return "", ErrInvalidPaymentStatus
	}
}

type PaymentMethod string

const (
	PaymentMethodCash PaymentMethod = "cash"
	PaymentMethodEFT  PaymentMethod = "eft"
)

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	switch m := PaymentMethod(strings.ToLower(strings.TrimSpace(raw))); m {
	case "":
		return PaymentMethodCash, nil
	case PaymentMethodCash, PaymentMethodEFT:
		return m, nil
	default:
		return "", ErrInvalidPaymentMethod
	}
}
