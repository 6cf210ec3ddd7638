package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/events"
	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"
	"github.com/Sujan7036/friends-momo-sub001/settings"
	"github.com/Sujan7036/friends-momo-sub001/statemachine"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

const (
	DefaultMaxPartySize = 20
	QRCodeSize          = 256
)

type ReservationService struct {
	reservations *repository.ReservationRepository
	settings     *SettingsService
	activity     *ActivityService
	events       events.Publisher
	appURL       string
	loc          *time.Location
	now          func() time.Time
}

func NewReservationService(reservations *repository.ReservationRepository, settings *SettingsService, activity *ActivityService, pub events.Publisher, appURL string) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		settings:     settings,
		activity:     activity,
		events:       pub,
		appURL:       appURL,
		loc:          time.Local,
		now:          time.Now,
	}
}

type ReservationInput struct {
	UserID          *uint
	Name            string
	Email           string
	Phone           string
	Date            string // YYYY-MM-DD
	Time            string // HH:MM
	PartySize       int
	SpecialRequests string
}

// openingHours is the JSON shape of the opening_hours setting.
type openingHours struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// Create books a table after validating the request against the current
// settings and the availability check.
func (s *ReservationService) Create(ctx context.Context, in ReservationInput, ip string) (*models.Reservation, error) {
	snap, err := s.settings.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	if !snap.Bool(settings.KeyReservationsEnabled, true) {
		return nil, ErrReservationsClosed
	}

	v := &ValidationError{}
	v.required("name", in.Name)
	v.email("email", in.Email)
	v.required("phone", in.Phone)

	maxParty := int(snap.Int(settings.KeyMaxPartySize, DefaultMaxPartySize))
	if in.PartySize < 1 || in.PartySize > maxParty {
		v.Add("party_size", fmt.Sprintf("must be between 1 and %d", maxParty))
	}

	at, err := time.ParseInLocation(models.DateLayout+" "+models.TimeLayout, in.Date+" "+in.Time, s.loc)
	if err != nil {
		if _, derr := time.Parse(models.DateLayout, in.Date); derr != nil {
			v.Add("reservation_date", "must be a date like 2024-06-30")
		} else {
			v.Add("reservation_time", "must be a time like 19:30")
		}
	} else {
		in.Date, in.Time = at.Format(models.DateLayout), at.Format(models.TimeLayout)
		if !at.After(s.now()) {
			v.Add("reservation_date", "must be in the future")
		}
		if hours, ok := s.openingHours(snap); ok && (in.Time < hours.Open || in.Time >= hours.Close) {
			v.Add("reservation_time", fmt.Sprintf("must be between %s and %s", hours.Open, hours.Close))
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	available, err := s.CheckAvailability(ctx, in.Date, in.Time, in.PartySize)
	if err != nil {
		return nil, err
	}
	if !available {
		return nil, ErrNoAvailability
	}

	r := &models.Reservation{
		ConfirmationCode: newConfirmationCode(),
		UserID:           in.UserID,
		Name:             strings.TrimSpace(in.Name),
		Email:            repository.NormalizeEmail(in.Email),
		Phone:            strings.TrimSpace(in.Phone),
		ReservationDate:  in.Date,
		ReservationTime:  in.Time,
		PartySize:        in.PartySize,
		SpecialRequests:  strings.TrimSpace(in.SpecialRequests),
		Status:           models.ReservationPending,
	}
	if err := s.reservations.Create(ctx, r); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type: events.ReservationCreated, EntityID: r.ID, Reference: r.ConfirmationCode,
		Status: string(r.Status), ActorID: derefID(in.UserID),
	})
	s.activity.Log(ctx, derefID(in.UserID), ActionReservationMade,
		fmt.Sprintf("Reservation %s for %d on %s %s", r.ConfirmationCode, r.PartySize, r.ReservationDate, r.ReservationTime), ip)
	return r, nil
}

// CheckAvailability reports whether a table is free for the party.
//
// TODO: capacity is not modelled yet, so every slot is reported available;
// replace with a count of overlapping reservations against table capacity.
func (s *ReservationService) CheckAvailability(ctx context.Context, date, clock string, partySize int) (bool, error) {
	return true, nil
}

func (s *ReservationService) openingHours(snap settings.Snapshot) (openingHours, bool) {
	val, ok := snap.Get(settings.KeyOpeningHours)
	if !ok || val.Kind != settings.KindJSON {
		return openingHours{}, false
	}
	var h openingHours
	if err := json.Unmarshal(val.JSON, &h); err != nil {
		slog.Warn("Ignoring malformed opening hours", "error", err)
		return openingHours{}, false
	}
	if _, err := time.Parse(models.TimeLayout, h.Open); err != nil {
		return openingHours{}, false
	}
	if _, err := time.Parse(models.TimeLayout, h.Close); err != nil {
		return openingHours{}, false
	}
	return h, true
}

// UpdateStatus applies a staff transition.
func (s *ReservationService) UpdateStatus(ctx context.Context, actorID, id uint, to models.ReservationStatus, ip string) (*models.Reservation, error) {
	if to == models.ReservationCancelled {
		return s.Cancel(ctx, statemachine.ActorStaff, Viewer{UserID: actorID, Role: models.RoleStaff}, id, "", ip)
	}
	r, err := s.reservations.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := statemachine.CanTransitionReservation(r.Status, to, statemachine.ActorStaff); err != nil {
		return nil, err
	}
	if err := s.reservations.SetStatus(ctx, id, to); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type: events.ReservationStatus, EntityID: r.ID, Reference: r.ConfirmationCode,
		Status: string(to), ActorID: actorID,
	})
	s.activity.Log(ctx, actorID, ActionReservationStatus,
		fmt.Sprintf("Reservation %s: %s → %s", r.ConfirmationCode, r.Status, to), ip)
	return s.reservations.Find(ctx, id)
}

// Cancel refuses reservations that are already finished or whose time has
// passed. Customers may only cancel their own.
func (s *ReservationService) Cancel(ctx context.Context, actor statemachine.Actor, viewer Viewer, id uint, reason, ip string) (*models.Reservation, error) {
	r, err := s.reservations.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor == statemachine.ActorCustomer && (r.UserID == nil || *r.UserID != viewer.UserID) {
		return nil, ErrForbidden
	}
	if err := statemachine.CanTransitionReservation(r.Status, models.ReservationCancelled, actor); err != nil {
		return nil, err
	}
	at, err := r.ScheduledAt(s.loc)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !at.After(now) {
		return nil, ErrReservationPast
	}

	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Cancelled by " + string(actor)
	}
	if err := s.reservations.Cancel(ctx, id, reason, now); err != nil {
		return nil, err
	}
	s.publish(ctx, events.Event{
		Type: events.ReservationCancelled, EntityID: r.ID, Reference: r.ConfirmationCode,
		Status: string(models.ReservationCancelled), ActorID: viewer.UserID,
	})
	s.activity.Log(ctx, viewer.UserID, ActionReservationCancel, "Reservation "+r.ConfirmationCode+" cancelled", ip)
	return s.reservations.Find(ctx, id)
}

func (s *ReservationService) Get(ctx context.Context, viewer Viewer, id uint) (*models.Reservation, error) {
	r, err := s.reservations.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !viewer.owns(r.UserID) {
		return nil, ErrForbidden
	}
	return r, nil
}

func (s *ReservationService) ListForUser(ctx context.Context, userID uint, page, perPage int) (*repository.Page[models.Reservation], error) {
	return s.reservations.ForUser(ctx, userID, page, perPage)
}

func (s *ReservationService) List(ctx context.Context, q repository.ReservationQuery, page, perPage int) (*repository.Page[models.Reservation], error) {
	return s.reservations.List(ctx, q, page, perPage)
}

// ByCode looks a reservation up by its confirmation code. The code is the
// credential, so no viewer check applies.
func (s *ReservationService) ByCode(ctx context.Context, code string) (*models.Reservation, error) {
	return s.reservations.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// ConfirmationURL is the link encoded in the reservation QR code.
func (s *ReservationService) ConfirmationURL(r *models.Reservation) string {
	return s.appURL + "/reservations/confirmation/" + r.ConfirmationCode
}

// QRCode renders the confirmation link as a PNG.
func (s *ReservationService) QRCode(ctx context.Context, viewer Viewer, id uint) ([]byte, error) {
	r, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(s.ConfirmationURL(r), qrcode.Medium, QRCodeSize)
}

func (s *ReservationService) publish(ctx context.Context, e events.Event) {
	e.OccurredAt = s.now()
	if err := s.events.Publish(ctx, e); err != nil {
		slog.Warn("Failed to publish event", "type", e.Type, "reference", e.Reference, "error", err)
	}
}

// newConfirmationCode formats RES-XXXXXXXX.
func newConfirmationCode() string {
	id := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return "RES-" + id[:8]
}
