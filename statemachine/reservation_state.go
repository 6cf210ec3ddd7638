package statemachine

import (
	"github.com/Sujan7036/friends-momo-sub001/models"
)

type ReservationTransition struct {
	From  models.ReservationStatus `json:"from"`
	To    models.ReservationStatus `json:"to"`
	Actor Actor                    `json:"actor"`
}

var reservationTransitions = []ReservationTransition{
	{From: models.ReservationPending, To: models.ReservationConfirmed, Actor: ActorStaff},
	{From: models.ReservationConfirmed, To: models.ReservationCompleted, Actor: ActorStaff},
	{From: models.ReservationPending, To: models.ReservationCancelled, Actor: ActorStaff},
	{From: models.ReservationConfirmed, To: models.ReservationCancelled, Actor: ActorStaff},
	{From: models.ReservationPending, To: models.ReservationCancelled, Actor: ActorCustomer},
	{From: models.ReservationConfirmed, To: models.ReservationCancelled, Actor: ActorCustomer},
}

func ValidReservationTransitionsFrom(status models.ReservationStatus) []models.ReservationStatus {
	var nexts []models.ReservationStatus
	seen := map[models.ReservationStatus]bool{}
	for _, t := range reservationTransitions {
		if t.From == status && !seen[t.To] {
			nexts = append(nexts, t.To)
			seen[t.To] = true
		}
	}
	return nexts
}

// CanTransitionReservation checks the reservation lifecycle. Whether the
// reservation time has passed is checked by the caller.
func CanTransitionReservation(from, to models.ReservationStatus, actor Actor) error {
	for _, t := range reservationTransitions {
		if t.From == from && t.To == to && t.Actor == actor {
			return nil
		}
	}
	valid := make([]string, 0)
	for _, s := range ValidReservationTransitionsFrom(from) {
		valid = append(valid, string(s))
	}
	return &TransitionError{From: string(from), To: string(to), Actor: actor, Valid: valid}
}

func GetAllReservationTransitions() []ReservationTransition {
	return append([]ReservationTransition(nil), reservationTransitions...)
}
