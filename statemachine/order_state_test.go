package statemachine

import (
	"errors"
	"testing"

	"github.com/Sujan7036/friends-momo-sub001/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		actor   Actor
		wantErr bool
	}{
		{"staff starts preparing", models.StatusPending, models.StatusPreparing, ActorStaff, false},
		{"staff marks ready", models.StatusPreparing, models.StatusReady, ActorStaff, false},
		{"staff delivers", models.StatusReady, models.StatusDelivered, ActorStaff, false},
		{"customer cancels pending", models.StatusPending, models.StatusCancelled, ActorCustomer, false},
		{"customer cancels confirmed", models.StatusConfirmed, models.StatusCancelled, ActorCustomer, false},
		{"customer cannot cancel preparing", models.StatusPreparing, models.StatusCancelled, ActorCustomer, true},
		{"customer cannot advance", models.StatusPending, models.StatusPreparing, ActorCustomer, true},
		{"no skipping to delivered", models.StatusPending, models.StatusDelivered, ActorStaff, true},
		{"no going back", models.StatusReady, models.StatusPreparing, ActorStaff, true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			err := CanTransition(testCase.from, testCase.to, testCase.actor)
			if testCase.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCancelFromTerminalStatesAlwaysFails(t *testing.T) {
	for _, from := range []models.OrderStatus{models.StatusDelivered, models.StatusCompleted, models.StatusCancelled} {
		for _, actor := range []Actor{ActorStaff, ActorCustomer} {
			err := CanTransition(from, models.StatusCancelled, actor)

			var terr *TransitionError
			if assert.True(t, errors.As(err, &terr), "%s by %s", from, actor) {
				assert.Contains(t, terr.Error(), string(from))
			}
		}
	}
}

func TestTerminalStates(t *testing.T) {
	assert.True(t, IsTerminal(models.StatusCompleted))
	assert.True(t, IsTerminal(models.StatusCancelled))
	assert.False(t, IsTerminal(models.StatusDelivered))
	assert.False(t, IsTerminal(models.StatusPending))

	err := CanTransition(models.StatusCancelled, models.StatusPending, ActorStaff)
	assert.Contains(t, err.Error(), "none (terminal state)")
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.ElementsMatch(t,
		[]models.OrderStatus{models.StatusConfirmed, models.StatusPreparing, models.StatusCancelled},
		ValidTransitionsFrom(models.StatusPending))
	assert.Empty(t, ValidTransitionsFrom(models.StatusCancelled))
}

func TestCanTransitionReservation(t *testing.T) {
	assert.NoError(t, CanTransitionReservation(models.ReservationPending, models.ReservationConfirmed, ActorStaff))
	assert.NoError(t, CanTransitionReservation(models.ReservationConfirmed, models.ReservationCompleted, ActorStaff))
	assert.NoError(t, CanTransitionReservation(models.ReservationConfirmed, models.ReservationCancelled, ActorCustomer))
	assert.Error(t, CanTransitionReservation(models.ReservationPending, models.ReservationConfirmed, ActorCustomer))
	assert.Error(t, CanTransitionReservation(models.ReservationCompleted, models.ReservationCancelled, ActorStaff))
	assert.Error(t, CanTransitionReservation(models.ReservationCancelled, models.ReservationCancelled, ActorCustomer))
	assert.Empty(t, ValidReservationTransitionsFrom(models.ReservationCompleted))
}
