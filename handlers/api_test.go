package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"restaurant-ordering-api/clock"
	"restaurant-ordering-api/handlers"
	"restaurant-ordering-api/models"
	"restaurant-ordering-api/orders"
	"restaurant-ordering-api/otp"
	"restaurant-ordering-api/routes"
	"restaurant-ordering-api/token"
)

type testEnv struct {
	router *gin.Engine
	db     *gorm.DB
	tokens *token.Service
	orders *orders.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderItemOption{},
	))

	clk := clock.New()
	tokens := token.NewService([]byte("test-secret"), clk)
	store := otp.NewStore(clk)
	orderService := orders.NewService(db, clk, 0)

	r := gin.New()
	routes.SetupRoutes(r,
		handlers.NewAuthHandler(db, store, tokens),
		handlers.NewOrderHandler(orderService),
		tokens)

	return &testEnv{router: r, db: db, tokens: tokens, orders: orderService}
}

func (e *testEnv) request(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	admin := models.User{Name: "Root", Phone: "+15559999999", PasswordHash: "x", Role: models.RoleAdmin}
	require.NoError(t, e.db.Create(&admin).Error)
	tok, err := e.tokens.IssueAccessToken(&admin)
	require.NoError(t, err)
	return tok
}

func checkoutBody() gin.H {
	return gin.H{
		"customer_name": "Dana",
		"phone":         "+15551234567",
		"items": []gin.H{
			{"name": "Pad Thai", "unit_price": 12.50, "quantity": 2},
		},
		"note": "no cilantro",
	}
}

func TestCheckoutEndpoint(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/orders", "", checkoutBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp struct {
		Order models.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Regexp(t, `^R\d{6}-\d{4}$`, resp.Order.Number)
	assert.Equal(t, models.StatusPending, resp.Order.Status)
	assert.InDelta(t, 25.00, resp.Order.Subtotal, 1e-9)
	assert.InDelta(t, 2.19, resp.Order.Tax, 1e-9)
	assert.InDelta(t, 0.50, resp.Order.ServiceFee, 1e-9)
	assert.InDelta(t, 27.69, resp.Order.Total, 1e-9)

	// Public lookup by number works; malformed number is rejected as bad input
	w = env.request(t, http.MethodGet, "/api/orders/number/"+resp.Order.Number, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.request(t, http.MethodGet, "/api/orders/number/bogus", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutRejectsEmptyItems(t *testing.T) {
	env := newTestEnv(t)

	body := checkoutBody()
	body["items"] = []gin.H{}
	w := env.request(t, http.MethodPost, "/api/orders", "", body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	env := newTestEnv(t)

	// No token
	w := env.request(t, http.MethodGet, "/api/admin/orders", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Customer token is not enough
	customer := models.User{Name: "Dana", Phone: "+15551234567", PasswordHash: "x", Role: models.RoleCustomer}
	require.NoError(t, env.db.Create(&customer).Error)
	tok, err := env.tokens.IssueAccessToken(&customer)
	require.NoError(t, err)
	w = env.request(t, http.MethodGet, "/api/admin/orders", tok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(t, http.MethodGet, "/api/admin/orders", env.adminToken(t), nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminStatusTransition(t *testing.T) {
	env := newTestEnv(t)
	admin := env.adminToken(t)

	order, err := env.orders.CreateOrder(
		orders.Customer{Name: "Dana", Phone: "+15551234567"},
		[]orders.ItemInput{{Name: "Soup", UnitPrice: 6, Quantity: 1}}, "")
	require.NoError(t, err)

	// Jumping to COMPLETED conflicts with the state machine
	w := env.request(t, http.MethodPut, "/api/admin/orders/"+order.ID+"/status", admin,
		gin.H{"status": "COMPLETED"})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Unknown status string is rejected before lookup
	w = env.request(t, http.MethodPut, "/api/admin/orders/"+order.ID+"/status", admin,
		gin.H{"status": "SHIPPED"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.request(t, http.MethodPut, "/api/admin/orders/"+order.ID+"/status", admin,
		gin.H{"status": "PREPARING"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Batch with an unknown id is all-or-nothing
	w = env.request(t, http.MethodPut, "/api/admin/orders/status", admin,
		gin.H{"order_ids": []string{order.ID, "missing"}, "status": "READY"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	loaded, err := env.orders.GetByID(order.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPreparing, loaded.Status)

	// Mark paid, once
	w = env.request(t, http.MethodPut, "/api/admin/orders/"+order.ID+"/pay", admin, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = env.request(t, http.MethodPut, "/api/admin/orders/"+order.ID+"/pay", admin, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	// Send code
	w := env.request(t, http.MethodPost, "/api/auth/send-code", "", gin.H{"phone": "+15551230000"})
	require.Equal(t, http.StatusOK, w.Code)
	var sent struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))
	require.Len(t, sent.Code, 6)

	// Wrong code is retryable; 000000 is outside the issued range
	w = env.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"phone": "+15551230000", "code": "000000", "name": "Dana", "password": "hunter22",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// Right code registers and signs in
	w = env.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"phone": "+15551230000", "code": sent.Code, "name": "Dana", "password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var reg struct {
		Tokens token.Pair `json:"tokens"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	require.NotEmpty(t, reg.Tokens.AccessToken)
	require.NotEmpty(t, reg.Tokens.RefreshToken)

	// The code is single use
	w = env.request(t, http.MethodPost, "/api/auth/register", "", gin.H{
		"phone": "+15551230000", "code": sent.Code, "name": "Dana", "password": "hunter22",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Access token opens the authenticated surface
	w = env.request(t, http.MethodGet, "/api/profile", reg.Tokens.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Refresh mints a new access token from the refresh token
	w = env.request(t, http.MethodPost, "/api/auth/refresh", "",
		gin.H{"refresh_token": reg.Tokens.RefreshToken})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var refreshed struct {
		AccessToken string `json:"access_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	w = env.request(t, http.MethodGet, "/api/profile", refreshed.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	user := models.User{Name: "Dana", Phone: "+15551234567", PasswordHash: string(hash)}
	require.NoError(t, env.db.Create(&user).Error)

	w := env.request(t, http.MethodPost, "/api/auth/login", "",
		gin.H{"phone": "+15551234567", "password": "hunter22"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.request(t, http.MethodPost, "/api/auth/login", "",
		gin.H{"phone": "+15551234567", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
