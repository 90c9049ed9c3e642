// Package order runs the three-step order form (name, phone, product) on top
// of the per-user session store.
package order

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/m3rciful/linkbot/core/telegram/state"
)

// Conversation states of the order form.
const (
	StateAwaitingName    state.State = "awaiting_name"
	StateAwaitingPhone   state.State = "awaiting_phone"
	StateAwaitingProduct state.State = "awaiting_product"
)

// Draft keys inside Session.Data.
const (
	KeyFullName = "full_name"
	KeyPhone    = "phone"
	KeyProduct  = "product"
)

// Order numbers are display tokens in [MinNumber, MaxNumber]; no uniqueness.
const (
	MinNumber = 10000
	MaxNumber = 99999
)

var (
	// ErrNotInProgress is returned by Input when the user has no active form.
	ErrNotInProgress = errors.New("no order in progress")
	// ErrBrokenDraft is returned when a stored draft misses earlier fields.
	ErrBrokenDraft = errors.New("order draft is incomplete")
)

// Requester identifies who placed an order.
type Requester struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

// Handle returns "@username" or an empty string.
func (r Requester) Handle() string {
	if r.Username == "" {
		return ""
	}
	return "@" + r.Username
}

// DisplayName is the best human readable name for the requester.
func (r Requester) DisplayName() string {
	if h := r.Handle(); h != "" {
		return h
	}
	name := strings.TrimSpace(r.FirstName + " " + r.LastName)
	if name != "" {
		return name
	}
	return fmt.Sprintf("пользователь %d", r.ID)
}

// Record is a completed order. It only lives long enough to be shown to the
// user and sent to the administrator.
type Record struct {
	Number    int
	FullName  string
	Phone     string
	Product   string
	Requester Requester
	CreatedAt time.Time
}

// Outcome describes what an operation did to the conversation.
type Outcome string

const (
	// OutcomePrompt asks for the next field.
	OutcomePrompt Outcome = "prompt"
	// OutcomeReprompt repeats the current question after empty input.
	OutcomeReprompt Outcome = "reprompt"
	// OutcomeCompleted carries a Record.
	OutcomeCompleted Outcome = "completed"
	// OutcomeCancelled means the draft was dropped.
	OutcomeCancelled Outcome = "cancelled"
	// OutcomeNothingToCancel is returned by Cancel for idle users.
	OutcomeNothingToCancel Outcome = "noop"
)

// Reply is the user-facing result of a Flow operation.
type Reply struct {
	Outcome Outcome
	State   state.State
	Text    string
	Record  *Record
}

// RandomNumber draws a uniform order number.
func RandomNumber() int {
	return MinNumber + rand.IntN(MaxNumber-MinNumber+1)
}
