package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Sujan7036/friends-momo-sub001/cart"
	"github.com/Sujan7036/friends-momo-sub001/config"
	"github.com/Sujan7036/friends-momo-sub001/events"
	"github.com/Sujan7036/friends-momo-sub001/handlers"
	"github.com/Sujan7036/friends-momo-sub001/mailer"
	"github.com/Sujan7036/friends-momo-sub001/middleware"
	"github.com/Sujan7036/friends-momo-sub001/models"
	"github.com/Sujan7036/friends-momo-sub001/repository"
	"github.com/Sujan7036/friends-momo-sub001/routes"
	"github.com/Sujan7036/friends-momo-sub001/service"
	"github.com/Sujan7036/friends-momo-sub001/session"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testApp struct {
	srv   *httptest.Server
	users *repository.UserRepository
	auth  *service.AuthService
	item  *models.MenuItem
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := config.OpenDatabase(config.DatabaseConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "test.db"),
	}, false)
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	categories := repository.NewCategoryRepository(db)
	items := repository.NewMenuItemRepository(db)
	orders := repository.NewOrderRepository(db)
	reservations := repository.NewReservationRepository(db)

	settingsSvc := service.NewSettingsService(repository.NewSettingRepository(db), cart.DefaultPricing)
	require.NoError(t, settingsSvc.EnsureDefaults(ctx))
	activity := service.NewActivityService(repository.NewActivityRepository(db))
	auth := service.NewAuthService(users, activity, mailer.LogMailer{}, "http://localhost:8080", 24*time.Hour)

	sessions := &middleware.Sessions{
		Store:      session.NewMemoryStore(time.Hour),
		CookieName: "test_session",
		TTL:        time.Hour,
		Remember:   auth,
	}
	jwt := &middleware.JWT{Secret: []byte("test-secret"), TTL: time.Hour}
	h := &handlers.Handler{
		Auth:         auth,
		Users:        service.NewUserService(users, activity),
		Menu:         service.NewMenuService(categories, items, activity),
		Cart:         service.NewCartService(items, settingsSvc),
		Orders:       service.NewOrderService(orders, items, settingsSvc, activity, events.Nop{}),
		Reservations: service.NewReservationService(reservations, settingsSvc, activity, events.Nop{}, "http://localhost:8080"),
		Settings:     settingsSvc,
		Activity:     activity,
		Dashboard:    service.NewDashboardService(orders, reservations, users, items),
		Sessions:     sessions,
		JWT:          jwt,
	}

	r := gin.New()
	r.Use(sessions.Middleware(), middleware.Identify(jwt))
	routes.SetupRoutes(r, h)

	cat := &models.Category{Name: "Momo", IsActive: true}
	require.NoError(t, categories.Create(ctx, cat))
	item := &models.MenuItem{CategoryID: cat.ID, Name: "Chicken Momo", Price: 10, IsAvailable: true}
	require.NoError(t, items.Create(ctx, item))

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return &testApp{srv: srv, users: users, auth: auth, item: item}
}

// client keeps cookies between requests and never follows redirects.
func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) user(t *testing.T, email string, role models.UserRole) *models.User {
	t.Helper()
	ctx := context.Background()
	u, err := a.auth.Register(ctx, service.RegisterInput{
		FirstName: "Test", LastName: "User", Email: email, Phone: "0400000000",
		Password: "secret123", PasswordConfirm: "secret123",
	}, "")
	require.NoError(t, err)
	if role != models.RoleCustomer {
		require.NoError(t, a.users.SetRole(ctx, u.ID, role))
	}
	return u
}

func (a *testApp) login(t *testing.T, c *http.Client, email string) *http.Response {
	t.Helper()
	resp, err := c.PostForm(a.srv.URL+"/login", url.Values{"email": {email}, "password": {"secret123"}})
	require.NoError(t, err)
	resp.Body.Close()
	return resp
}

func doJSON(t *testing.T, c *http.Client, method, target string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequest(method, target, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func location(resp *http.Response) string {
	return resp.Header.Get("Location")
}

func TestCartEndpoint(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	cartURL := app.srv.URL + "/api/cart"

	resp, body := doJSON(t, c, http.MethodPost, cartURL, map[string]any{
		"action": "add", "menu_item_id": app.item.ID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Item added to cart", body["message"])

	// the session cookie carries the cart to the next request
	resp, body = doJSON(t, c, http.MethodGet, cartURL, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := body["data"].(map[string]any)
	lines := data["items"].([]any)
	require.Len(t, lines, 1)
	line := lines[0].(map[string]any)
	assert.Equal(t, 2.0, line["quantity"])
	assert.Equal(t, 20.0, line["line_total"])
	totals := data["totals"].(map[string]any)
	assert.Equal(t, 20.0, totals["subtotal"])
	assert.Equal(t, 1.6, totals["tax"])

	key := line["key"].(string)
	resp, body = doJSON(t, c, http.MethodPost, cartURL, map[string]any{"action": "update", "key": key, "quantity": 0})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["data"].(map[string]any)["items"])
}

func TestCartEndpoint_Errors(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	cartURL := app.srv.URL + "/api/cart"

	tests := []struct {
		name     string
		body     map[string]any
		wantCode int
	}{
		{"unknown action", map[string]any{"action": "explode"}, http.StatusBadRequest},
		{"missing item", map[string]any{"action": "add"}, http.StatusBadRequest},
		{"unavailable item", map[string]any{"action": "add", "menu_item_id": 999}, http.StatusBadRequest},
		{"update without key", map[string]any{"action": "update", "quantity": 1}, http.StatusBadRequest},
		{"remove unknown line", map[string]any{"action": "remove", "key": "nope"}, http.StatusBadRequest},
		{"get", map[string]any{"action": "get"}, http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, body := doJSON(t, c, http.MethodPost, cartURL, tc.body)
			assert.Equal(t, tc.wantCode, resp.StatusCode)
			assert.Equal(t, tc.wantCode == http.StatusOK, body["success"])
			if tc.wantCode != http.StatusOK {
				assert.NotEmpty(t, body["message"])
			}
		})
	}
}

func TestLoginRedirects(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "cust@x.com", models.RoleCustomer)
	app.user(t, "staff@x.com", models.RoleStaff)

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"missing fields", url.Values{"email": {"cust@x.com"}}, "/login?error=missing_fields"},
		{"wrong password", url.Values{"email": {"cust@x.com"}, "password": {"nope"}}, "/login?error=invalid_credentials"},
		{"customer", url.Values{"email": {"cust@x.com"}, "password": {"secret123"}}, "/?success=logged_in"},
		{"staff", url.Values{"email": {"staff@x.com"}, "password": {"secret123"}}, "/staff/dashboard?success=logged_in"},
		{"local redirect", url.Values{"email": {"cust@x.com"}, "password": {"secret123"}, "redirect": {"/checkout"}}, "/checkout?success=logged_in"},
		{"offsite redirect", url.Values{"email": {"cust@x.com"}, "password": {"secret123"}, "redirect": {"//evil.com"}}, "/?success=logged_in"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := app.client(t).PostForm(app.srv.URL+"/login", tc.form)
			require.NoError(t, err)
			resp.Body.Close()
			assert.Equal(t, http.StatusFound, resp.StatusCode)
			assert.Equal(t, tc.want, location(resp))
		})
	}
}

func TestRegisterAndLogout(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)
	form := url.Values{
		"first_name": {"Asha"}, "last_name": {"Rai"}, "email": {"asha@x.com"},
		"password": {"secret123"}, "password_confirm": {"secret123"},
	}

	resp, err := c.PostForm(app.srv.URL+"/register", form)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/login?success=registered", location(resp))

	resp, err = c.PostForm(app.srv.URL+"/register", form)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/register?error=email_exists", location(resp))

	form.Set("email", "other@x.com")
	form.Set("password_confirm", "different")
	resp, err = c.PostForm(app.srv.URL+"/register", form)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/register?error=validation&fields=password_confirm", location(resp))

	app.login(t, c, "asha@x.com")
	resp, _ = doJSON(t, c, http.MethodGet, app.srv.URL+"/api/profile", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = c.PostForm(app.srv.URL+"/logout", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "/?success=logged_out", location(resp))

	resp, _ = doJSON(t, c, http.MethodGet, app.srv.URL+"/api/profile", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoleGates(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "cust@x.com", models.RoleCustomer)
	app.user(t, "staff@x.com", models.RoleStaff)
	app.user(t, "admin@x.com", models.RoleAdmin)

	tests := []struct {
		name  string
		email string
		path  string
		want  int
	}{
		{"anonymous orders", "", "/api/orders", http.StatusUnauthorized},
		{"anonymous staff", "", "/api/staff/dashboard", http.StatusUnauthorized},
		{"customer staff", "cust@x.com", "/api/staff/dashboard", http.StatusForbidden},
		{"customer admin", "cust@x.com", "/api/admin/users", http.StatusForbidden},
		{"staff dashboard", "staff@x.com", "/api/staff/dashboard", http.StatusOK},
		{"staff admin", "staff@x.com", "/api/admin/dashboard", http.StatusForbidden},
		{"admin staff", "admin@x.com", "/api/staff/orders", http.StatusOK},
		{"admin dashboard", "admin@x.com", "/api/admin/dashboard", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := app.client(t)
			if tc.email != "" {
				app.login(t, c, tc.email)
			}
			resp, body := doJSON(t, c, http.MethodGet, app.srv.URL+tc.path, nil)
			assert.Equal(t, tc.want, resp.StatusCode)
			assert.Equal(t, tc.want == http.StatusOK, body["success"])
		})
	}
}

func TestBearerToken(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "cust@x.com", models.RoleCustomer)
	c := app.client(t)

	resp, body := doJSON(t, c, http.MethodPost, app.srv.URL+"/api/auth/token",
		map[string]string{"email": "cust@x.com", "password": "secret123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token := body["data"].(map[string]any)["token"].(string)

	req, _ := http.NewRequest(http.MethodGet, app.srv.URL+"/api/profile", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	req.Header.Set("Authorization", "Bearer garbage")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestBearerToken_LocksAfterRepeatedFailures(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "cust@x.com", models.RoleCustomer)

	// a fresh client per attempt carries no session cookie
	for i := 0; i < service.MaxLoginAttempts; i++ {
		resp, _ := doJSON(t, app.client(t), http.MethodPost, app.srv.URL+"/api/auth/token",
			map[string]string{"email": "cust@x.com", "password": "wrong-password"})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	}

	resp, body := doJSON(t, app.client(t), http.MethodPost, app.srv.URL+"/api/auth/token",
		map[string]string{"email": "cust@x.com", "password": "secret123"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, service.ErrTooManyAttempts.Error(), body["message"])

	resp, _ = doJSON(t, app.client(t), http.MethodPost, app.srv.URL+"/api/auth/token",
		map[string]string{"email": "other@x.com", "password": "secret123"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCheckoutAndOrderItems(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "cust@x.com", models.RoleCustomer)
	c := app.client(t)
	app.login(t, c, "cust@x.com")

	resp, body := doJSON(t, c, http.MethodPost, app.srv.URL+"/api/orders", map[string]any{"order_type": "pickup"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, service.ErrEmptyCart.Error(), body["message"])

	doJSON(t, c, http.MethodPost, app.srv.URL+"/api/cart", map[string]any{
		"action": "add", "menu_item_id": app.item.ID, "quantity": 3,
	})
	resp, body = doJSON(t, c, http.MethodPost, app.srv.URL+"/api/orders", map[string]any{"order_type": "pickup"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	order := body["data"].(map[string]any)
	assert.Equal(t, "Test User", order["customer_name"])
	assert.Equal(t, 32.4, order["total"])
	orderID := int(order["id"].(float64))

	// the cart is emptied by checkout
	_, body = doJSON(t, c, http.MethodGet, app.srv.URL+"/api/cart", nil)
	assert.Empty(t, body["data"].(map[string]any)["items"])

	resp, _ = doJSON(t, c, http.MethodGet, app.srv.URL+"/api/order-items", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = doJSON(t, c, http.MethodGet, app.srv.URL+"/api/order-items?order_id="+itoa(orderID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	items := body["data"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Chicken Momo", items[0].(map[string]any)["name"])

	// another customer cannot read it
	app.user(t, "other@x.com", models.RoleCustomer)
	other := app.client(t)
	app.login(t, other, "other@x.com")
	resp, _ = doJSON(t, other, http.MethodGet, app.srv.URL+"/api/order-items?order_id="+itoa(orderID), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestStaffStatusUpdate_RefusedTransition(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "staff@x.com", models.RoleStaff)
	c := app.client(t)

	doJSON(t, c, http.MethodPost, app.srv.URL+"/api/cart", map[string]any{"action": "add", "menu_item_id": app.item.ID})
	resp, body := doJSON(t, c, http.MethodPost, app.srv.URL+"/api/orders", map[string]any{
		"customer_name": "Guest", "customer_email": "guest@x.com", "customer_phone": "0400000000",
		"order_type": "pickup",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	orderID := itoa(int(body["data"].(map[string]any)["id"].(float64)))

	app.login(t, c, "staff@x.com")
	resp, body = doJSON(t, c, http.MethodPut, app.srv.URL+"/api/staff/orders/"+orderID+"/status",
		map[string]string{"status": "completed"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, "pending", body["current_state"])

	resp, body = doJSON(t, c, http.MethodPut, app.srv.URL+"/api/staff/orders/"+orderID+"/status",
		map[string]string{"status": "confirmed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "confirmed", body["data"].(map[string]any)["order"].(map[string]any)["status"])
}

func TestReservationQRCode(t *testing.T) {
	app := newTestApp(t)
	app.user(t, "cust@x.com", models.RoleCustomer)
	c := app.client(t)
	app.login(t, c, "cust@x.com")

	date := time.Now().AddDate(0, 0, 7).Format("2006-01-02")
	resp, body := doJSON(t, c, http.MethodPost, app.srv.URL+"/api/reservations", map[string]any{
		"reservation_date": date, "reservation_time": "19:00", "party_size": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := body["data"].(map[string]any)
	res := data["reservation"].(map[string]any)
	assert.Contains(t, data["confirmation_url"], "/reservations/confirmation/RES-")
	id := itoa(int(res["id"].(float64)))

	resp, err := c.Get(app.srv.URL + "/api/reservations/" + id + "/qrcode")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	png, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))

	// anyone holding the code can open the confirmation
	code := res["confirmation_code"].(string)
	resp, body = doJSON(t, app.client(t), http.MethodGet, app.srv.URL+"/reservations/confirmation/"+strings.ToLower(code), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, code, body["data"].(map[string]any)["confirmation_code"])

	resp, _ = doJSON(t, app.client(t), http.MethodGet, app.srv.URL+"/reservations/confirmation/RES-NOPE0000", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCheckAvailabilityEndpoint(t *testing.T) {
	app := newTestApp(t)
	c := app.client(t)

	resp, _ := doJSON(t, c, http.MethodGet, app.srv.URL+"/api/reservations/availability?date=2030-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := doJSON(t, c, http.MethodGet, app.srv.URL+"/api/reservations/availability?date=2030-01-01&time=19:00&party_size=4", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["data"].(map[string]any)["available"])
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
