package service

import (
	"context"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/cart"
	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"
)

type DashboardService struct {
	orders       *repository.OrderRepository
	reservations *repository.ReservationRepository
	users        *repository.UserRepository
	items        *repository.MenuItemRepository
	now          func() time.Time
}

func NewDashboardService(orders *repository.OrderRepository, reservations *repository.ReservationRepository, users *repository.UserRepository, items *repository.MenuItemRepository) *DashboardService {
	return &DashboardService{orders: orders, reservations: reservations, users: users, items: items, now: time.Now}
}

// StaffDashboard is the kitchen and front-of-house overview.
type StaffDashboard struct {
	OrdersByStatus       map[models.OrderStatus]int64 `json:"orders_by_status"`
	ActiveOrders         []models.Order               `json:"active_orders"`
	TodaysReservations   []models.Reservation         `json:"todays_reservations"`
	UpcomingReservations []models.Reservation         `json:"upcoming_reservations"`
}

type Revenue struct {
	Orders  int64   `json:"orders"`
	Revenue float64 `json:"revenue"`
}

// AdminStats aggregates counts and revenue for the admin dashboard.
type AdminStats struct {
	Today                Revenue                            `json:"today"`
	Last7Days            Revenue                            `json:"last_7_days"`
	Last30Days           Revenue                            `json:"last_30_days"`
	OrdersByStatus       map[models.OrderStatus]int64       `json:"orders_by_status"`
	ReservationsByStatus map[models.ReservationStatus]int64 `json:"reservations_by_status"`
	Customers            int64                              `json:"customers"`
	MenuItems            int64                              `json:"menu_items"`
	RecentOrders         []models.Order                     `json:"recent_orders"`
}

func (s *DashboardService) Staff(ctx context.Context) (*StaffDashboard, error) {
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.orders.List(ctx, repository.OrderQuery{Active: true}, 1, repository.MaxPerPage)
	if err != nil {
		return nil, err
	}
	today := s.now().Format(models.DateLayout)
	todays, err := s.reservations.OnDate(ctx, today)
	if err != nil {
		return nil, err
	}
	upcoming, err := s.reservations.Upcoming(ctx, today, 10)
	if err != nil {
		return nil, err
	}
	return &StaffDashboard{
		OrdersByStatus:       counts,
		ActiveOrders:         active.Items,
		TodaysReservations:   todays,
		UpcomingReservations: upcoming,
	}, nil
}

func (s *DashboardService) Admin(ctx context.Context) (*AdminStats, error) {
	now := s.now()
	y, m, d := now.Date()
	startOfDay := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	tomorrow := startOfDay.AddDate(0, 0, 1)

	stats := &AdminStats{}
	for _, w := range []struct {
		into *Revenue
		days int
	}{{&stats.Today, 1}, {&stats.Last7Days, 7}, {&stats.Last30Days, 30}} {
		rev, n, err := s.orders.RevenueBetween(ctx, tomorrow.AddDate(0, 0, -w.days), tomorrow)
		if err != nil {
			return nil, err
		}
		*w.into = Revenue{Orders: n, Revenue: cart.Round(rev)}
	}

	var err error
	if stats.OrdersByStatus, err = s.orders.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if stats.ReservationsByStatus, err = s.reservations.CountByStatus(ctx); err != nil {
		return nil, err
	}
	if stats.Customers, err = s.users.Count(ctx, repository.Filters{"role": models.RoleCustomer}); err != nil {
		return nil, err
	}
	if stats.MenuItems, err = s.items.Count(ctx, nil); err != nil {
		return nil, err
	}
	if stats.RecentOrders, err = s.orders.Recent(ctx, 10); err != nil {
		return nil, err
	}
	return stats, nil
}
