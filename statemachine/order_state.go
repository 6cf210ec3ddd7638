package statemachine

import (
	"fmt"
	"strings"

	"github.com/Sujan7036/friends-momo-sub001/models"
)

// Actor is who asks for a transition
type Actor string

const (
	ActorStaff    Actor = "staff"
	ActorCustomer Actor = "customer"
)

// Transition defines a valid state change and who can perform it
type Transition struct {
	From  models.OrderStatus `json:"from"`
	To    models.OrderStatus `json:"to"`
	Actor Actor              `json:"actor"`
}

// TransitionError explains why a requested status change was refused
type TransitionError struct {
	From  string
	To    string
	Actor Actor
	Valid []string
}

func (e *TransitionError) Error() string {
	valid := "none (terminal state)"
	if len(e.Valid) > 0 {
		valid = strings.Join(e.Valid, ", ")
	}
	return fmt.Sprintf("invalid transition: %s → %s is not allowed for %s. Valid transitions from %s are: %s",
		e.From, e.To, e.Actor, e.From, valid)
}

// orderTransitions is the authoritative order state machine
var orderTransitions = []Transition{
	// Kitchen flow
	{From: models.StatusPending, To: models.StatusConfirmed, Actor: ActorStaff},
	{From: models.StatusPending, To: models.StatusPreparing, Actor: ActorStaff},
	{From: models.StatusConfirmed, To: models.StatusPreparing, Actor: ActorStaff},
	{From: models.StatusPreparing, To: models.StatusReady, Actor: ActorStaff},
	{From: models.StatusReady, To: models.StatusDelivered, Actor: ActorStaff},
	{From: models.StatusReady, To: models.StatusCompleted, Actor: ActorStaff},
	{From: models.StatusDelivered, To: models.StatusCompleted, Actor: ActorStaff},
	// Customers may cancel until the kitchen starts
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorCustomer},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: ActorCustomer},
	// Staff may cancel anything not yet handed over
	{From: models.StatusPending, To: models.StatusCancelled, Actor: ActorStaff},
	{From: models.StatusConfirmed, To: models.StatusCancelled, Actor: ActorStaff},
	{From: models.StatusPreparing, To: models.StatusCancelled, Actor: ActorStaff},
	{From: models.StatusReady, To: models.StatusCancelled, Actor: ActorStaff},
}

type orderKey struct {
	From  models.OrderStatus
	To    models.OrderStatus
	Actor Actor
}

var orderTransitionMap = func() map[orderKey]bool {
	m := make(map[orderKey]bool)
	for _, t := range orderTransitions {
		m[orderKey{t.From, t.To, t.Actor}] = true
	}
	return m
}()

// ValidTransitionsFrom returns all valid next states from a given state
func ValidTransitionsFrom(status models.OrderStatus) []models.OrderStatus {
	var nexts []models.OrderStatus
	seen := map[models.OrderStatus]bool{}
	for _, t := range orderTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransition checks if a given actor can move an order from one state to another
func CanTransition(from, to models.OrderStatus, actor Actor) error {
	if orderTransitionMap[orderKey{From: from, To: to, Actor: actor}] {
		return nil
	}
	valid := make([]string, 0)
	for _, s := range ValidTransitionsFrom(from) {
		valid = append(valid, string(s))
	}
	return &TransitionError{From: string(from), To: string(to), Actor: actor, Valid: valid}
}

// IsTerminal reports whether no transition leaves status
func IsTerminal(status models.OrderStatus) bool {
	return len(ValidTransitionsFrom(status)) == 0
}

// GetAllTransitions returns the full state machine for documentation
func GetAllTransitions() []Transition {
	return append([]Transition(nil), orderTransitions...)
}
