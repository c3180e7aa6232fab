// Package lifecycle owns booking status transitions and the income and
// activity aggregates derived from a business's bookings.
package lifecycle

import (
	"math"
	"strings"

	"github.com/ray-remotestate/bazaar/apperror"
	"github.com/ray-remotestate/bazaar/models"
)

type Action string

const (
	ActionAccept   Action = "accept"
	ActionDecline  Action = "decline"
	ActionComplete Action = "complete"
	ActionCancel   Action = "cancel"
)

// MinDeclineReasonLength is counted after trimming surrounding whitespace.
const MinDeclineReasonLength = 5

type rule struct {
	from  models.BookingStatus
	to    models.BookingStatus
	actor models.Role
}

var rules = map[Action]rule{
	ActionAccept:   {from: models.BookingPending, to: models.BookingConfirmed, actor: models.RoleBusiness},
	ActionDecline:  {from: models.BookingPending, to: models.BookingDeclined, actor: models.RoleBusiness},
	ActionComplete: {from: models.BookingConfirmed, to: models.BookingCompleted, actor: models.RoleBusiness},
	ActionCancel:   {from: models.BookingPending, to: models.BookingCancelled, actor: models.RoleCustomer},
}

// Transition returns the status a booking moves to when action is applied to
// a booking currently in status current.
func Transition(current models.BookingStatus, action Action) (models.BookingStatus, error) {
	r, ok := rules[action]
	if !ok {
		return "", apperror.Validation("unknown booking action %q", action)
	}
	if current != r.from {
		if current.IsTerminal() {
			return "", apperror.Validation("cannot %s a booking that is already %s", action, current)
		}
		return "", apperror.Validation("cannot %s a booking that is %s, it must be %s", action, current, r.from)
	}
	return r.to, nil
}

// Actor returns the role allowed to perform action.
func Actor(action Action) models.Role {
	return rules[action].actor
}

// ValidateDeclineReason returns the trimmed reason.
func ValidateDeclineReason(reason string) (string, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return "", apperror.Validation("a decline reason is required")
	}
	if len([]rune(reason)) < MinDeclineReasonLength {
		return "", apperror.Validation("decline reason must be at least %d characters", MinDeclineReasonLength)
	}
	return reason, nil
}

func ValidateAmountReceived(amount *float64) (float64, error) {
	if amount == nil {
		return 0, apperror.Validation("amountReceived is required")
	}
	if math.IsNaN(*amount) || math.IsInf(*amount, 0) {
		return 0, apperror.Validation("amountReceived must be a number")
	}
	if *amount < 0 {
		return 0, apperror.Validation("amountReceived cannot be negative")
	}
	return *amount, nil
}
