package models

import (
	"fmt"
	"time"
)

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

var ReservationStatuses = []ReservationStatus{
	ReservationPending, ReservationConfirmed, ReservationCompleted, ReservationCancelled,
}

func (s ReservationStatus) Valid() bool {
	for _, known := range ReservationStatuses {
		if s == known {
			return true
		}
	}
	return false
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Reservation struct {
	ID                 uint              `json:"id" gorm:"primaryKey"`
	ConfirmationCode   string            `json:"confirmation_code" gorm:"size:16;uniqueIndex;not null"`
	UserID             *uint             `json:"user_id" gorm:"index"`
	User               *User             `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Name               string            `json:"name" gorm:"size:200;not null"`
	Email              string            `json:"email" gorm:"size:191;not null"`
	Phone              string            `json:"phone" gorm:"size:30;not null"`
	ReservationDate    string            `json:"reservation_date" gorm:"size:10;not null;index"` // YYYY-MM-DD
	ReservationTime    string            `json:"reservation_time" gorm:"size:5;not null"`        // HH:MM
	PartySize          int               `json:"party_size" gorm:"not null"`
	SpecialRequests    string            `json:"special_requests"`
	Status             ReservationStatus `json:"status" gorm:"size:20;not null;default:'pending';index"`
	CancellationReason string            `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time        `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// ScheduledAt combines the stored date and time in loc
func (r *Reservation) ScheduledAt(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, r.ReservationDate+" "+r.ReservationTime, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("reservation %d: bad date/time: %w", r.ID, err)
	}
	return t, nil
}
