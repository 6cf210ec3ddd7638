package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/cart"
	"github.com/Sujan7036/friends-momo-sub001/config"
	"github.com/Sujan7036/friends-momo-sub001/events"
	"github.com/Sujan7036/friends-momo-sub001/mailer"
	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, e events.Event) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

// outbox keeps every message instead of sending it.
type outbox struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (o *outbox) Send(_ context.Context, msg mailer.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.err != nil {
		return o.err
	}
	o.sent = append(o.sent, msg)
	return nil
}

type fixture struct {
	db       *gorm.DB
	users    *repository.UserRepository
	cats     *repository.CategoryRepository
	items    *repository.MenuItemRepository
	orderRep *repository.OrderRepository
	resRep   *repository.ReservationRepository
	setRep   *repository.SettingRepository

	activity     *ActivityService
	settings     *SettingsService
	auth         *AuthService
	menu         *MenuService
	cart         *CartService
	orders       *OrderService
	reservations *ReservationService
	userSvc      *UserService
	dashboard    *DashboardService

	pub  *mockPublisher
	mail *outbox
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := config.OpenDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}, false)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	f := &fixture{
		db:       db,
		users:    repository.NewUserRepository(db),
		cats:     repository.NewCategoryRepository(db),
		items:    repository.NewMenuItemRepository(db),
		orderRep: repository.NewOrderRepository(db),
		resRep:   repository.NewReservationRepository(db),
		setRep:   repository.NewSettingRepository(db),
		pub:      &mockPublisher{},
		mail:     &outbox{},
	}
	f.pub.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()

	f.activity = NewActivityService(repository.NewActivityRepository(db))
	f.settings = NewSettingsService(f.setRep, cart.DefaultPricing)
	require.NoError(t, f.settings.EnsureDefaults(context.Background()))
	f.auth = NewAuthService(f.users, f.activity, f.mail, "http://localhost:8080", 30*24*time.Hour)
	f.menu = NewMenuService(f.cats, f.items, f.activity)
	f.cart = NewCartService(f.items, f.settings)
	f.orders = NewOrderService(f.orderRep, f.items, f.settings, f.activity, f.pub)
	f.reservations = NewReservationService(f.resRep, f.settings, f.activity, f.pub, "http://localhost:8080")
	f.userSvc = NewUserService(f.users, f.activity)
	f.dashboard = NewDashboardService(f.orderRep, f.resRep, f.users, f.items)
	return f
}

func (f *fixture) category(t *testing.T, name string, active bool) *models.Category {
	t.Helper()
	c := &models.Category{Name: name, IsActive: active}
	require.NoError(t, f.cats.Create(context.Background(), c))
	return c
}

func (f *fixture) menuItem(t *testing.T, cat *models.Category, name string, price float64, available bool) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{CategoryID: cat.ID, Name: name, Price: price, IsAvailable: available}
	require.NoError(t, f.items.Create(context.Background(), item))
	return item
}

func (f *fixture) register(t *testing.T, email string) *models.User {
	t.Helper()
	u, err := f.auth.Register(context.Background(), RegisterInput{
		FirstName: "Test", LastName: "User", Email: email,
		Password: "secret123", PasswordConfirm: "secret123",
	}, "127.0.0.1")
	require.NoError(t, err)
	return u
}

func (f *fixture) setSetting(t *testing.T, key, value string) {
	t.Helper()
	_, err := f.settings.Update(context.Background(), key, value)
	require.NoError(t, err)
}
