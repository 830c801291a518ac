package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storeadmin/internal/config"
	"storeadmin/internal/models"
	"storeadmin/internal/repositories"
	"storeadmin/internal/services/auth"
	"storeadmin/internal/services/cart"
	"storeadmin/internal/services/kyc"
	"storeadmin/internal/services/ledger"
	"storeadmin/internal/services/order"
	"storeadmin/internal/services/support"
	"storeadmin/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	customerClaims = &models.UserClaims{
		UserID:      5,
		Email:       "customer@example.com",
		Role:        models.RoleCustomer,
		Permissions: models.GetDefaultPermissions(models.RoleCustomer),
	}
	adminClaims = &models.UserClaims{
		UserID:      1,
		Email:       "admin@example.com",
		Role:        models.RoleAdmin,
		Permissions: models.GetDefaultPermissions(models.RoleAdmin),
	}
	testJWT = config.JWT{Secret: "s", AccessTTL: time.Minute, RefreshTTL: time.Hour, Issuer: "test"}
)

type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	Data       json.RawMessage   `json:"data"`
	Pagination *utils.Pagination `json:"pagination"`
	Errors     map[string]string `json:"errors"`
}

// newApp returns an app whose requests run as the given caller.
func newApp(claims *models.UserClaims) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		if claims != nil {
			c.Locals("claims", claims)
		}
		return c.Next()
	})
	return app
}

func do(t *testing.T, app *fiber.App, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var env envelope
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_AdminLogin(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(*MockAuthService)
		status    int
		code      string
		cookies   bool
	}{
		{
			name: "success sets cookies",
			body: `{"email":"admin@example.com","password":"secret123"}`,
			setupMock: func(m *MockAuthService) {
				m.On("AdminLogin", mock.Anything, "admin@example.com", "secret123").
					Return(&auth.Session{User: &models.User{ID: 1}, AccessToken: "a", RefreshToken: "r"}, nil)
			},
			status:  fiber.StatusOK,
			cookies: true,
		},
		{
			name: "wrong password",
			body: `{"email":"admin@example.com","password":"nope"}`,
			setupMock: func(m *MockAuthService) {
				m.On("AdminLogin", mock.Anything, "admin@example.com", "nope").Return(nil, auth.ErrInvalidCredentials)
			},
			status: fiber.StatusUnauthorized,
			code:   "INVALID_CREDENTIALS",
		},
		{
			name:   "malformed body",
			body:   `{`,
			status: fiber.StatusBadRequest,
			code:   "INVALID_BODY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockAuthService)
			if tt.setupMock != nil {
				tt.setupMock(svc)
			}
			app := newApp(nil)
			app.Post("/login", NewAuthHandler(svc, testJWT).AdminLogin)

			resp, env := do(t, app, jsonRequest(fiber.MethodPost, "/login", tt.body))
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, tt.code, env.Code)
			if tt.cookies {
				cookies := strings.Join(resp.Header.Values(fiber.HeaderSetCookie), ";")
				assert.Contains(t, cookies, "access_token=a")
				assert.Contains(t, cookies, "refresh_token=r")
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestAuthHandler_RefreshPrefersCookie(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Refresh", mock.Anything, "from-cookie").
		Return(&auth.Session{AccessToken: "a2", RefreshToken: "r2"}, nil)

	app := newApp(nil)
	app.Post("/refresh", NewAuthHandler(svc, testJWT).RefreshToken)

	req := jsonRequest(fiber.MethodPost, "/refresh", `{"refreshToken":"from-body"}`)
	req.Header.Set(fiber.HeaderCookie, "refresh_token=from-cookie")
	resp, _ := do(t, app, req)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = do(t, app, jsonRequest(fiber.MethodPost, "/refresh", `{}`))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestAuthHandler_ChangeEmail(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("ChangeEmail", mock.Anything, uint(5), "taken@example.com", "Secret123").
		Return(nil, auth.ErrEmailTaken)
	svc.On("ChangeEmail", mock.Anything, uint(5), "new@example.com", "Secret123").
		Return(&models.User{ID: 5, Email: "new@example.com"}, nil)

	app := newApp(customerClaims)
	app.Put("/settings/email", NewAuthHandler(svc, testJWT).ChangeEmail)

	resp, env := do(t, app, jsonRequest(fiber.MethodPut, "/settings/email", `{"newEmail":"taken@example.com","password":"Secret123"}`))
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "EMAIL_TAKEN", env.Code)
	assert.Empty(t, resp.Header.Values(fiber.HeaderSetCookie))

	resp, env = do(t, app, jsonRequest(fiber.MethodPut, "/settings/email", `{"newEmail":"new@example.com","password":"Secret123"}`))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, strings.Join(resp.Header.Values(fiber.HeaderSetCookie), ";"), "access_token=")
	var u models.User
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, "new@example.com", u.Email)
	svc.AssertExpectations(t)
}

func TestAuthHandler_UpdateProfile(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("UpdateProfile", mock.Anything, uint(5), auth.ProfileInput{FullName: "Sam Roe", Phone: "+15551234567"}).
		Return(&models.User{ID: 5, FullName: "Sam Roe"}, nil)

	app := newApp(customerClaims)
	app.Put("/settings/profile", NewAuthHandler(svc, testJWT).UpdateProfile)

	resp, _ := do(t, app, jsonRequest(fiber.MethodPut, "/settings/profile", `{"fullName":"Sam Roe","phone":"+15551234567"}`))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, env := do(t, app, jsonRequest(fiber.MethodPut, "/settings/profile", `{"fullName":`))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", env.Code)
	svc.AssertExpectations(t)
}

func TestCartHandler_AddItem(t *testing.T) {
	svc := new(MockCartService)
	svc.On("AddItem", mock.Anything, uint(5), uint(3), 1, models.AttributeSet(nil)).
		Return(&cart.View{CartID: 9, TotalItems: 1}, nil).Once()
	svc.On("AddItem", mock.Anything, uint(5), uint(4), 2, mock.Anything).
		Return(nil, cart.ErrOutOfStock).Once()

	app := newApp(customerClaims)
	app.Post("/cart", NewCartHandler(svc).AddItem)

	resp, env := do(t, app, jsonRequest(fiber.MethodPost, "/cart", `{"productId":3}`))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var view cart.View
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, uint(9), view.CartID)

	resp, env = do(t, app, jsonRequest(fiber.MethodPost, "/cart", `{"productId":4,"quantity":2}`))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "OUT_OF_STOCK", env.Code)
	svc.AssertExpectations(t)
}

func TestOrderHandler_CreateScopesCustomer(t *testing.T) {
	tests := []struct {
		name     string
		claims   *models.UserClaims
		body     string
		customer uint
	}{
		{"customer cannot order for others", customerClaims, `{"customerId":99,"items":[{"productId":1,"quantity":1}]}`, 5},
		{"admin orders for named customer", adminClaims, `{"customerId":99,"items":[{"productId":1,"quantity":1}]}`, 99},
		{"admin without customer orders for self", adminClaims, `{"items":[{"productId":1,"quantity":1}]}`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockOrderService)
			svc.On("Create", mock.Anything, mock.MatchedBy(func(in order.CreateInput) bool {
				return in.CustomerID == tt.customer && len(in.Items) == 1
			})).Return(&models.Order{ID: 1, CustomerID: tt.customer}, nil)

			app := newApp(tt.claims)
			app.Post("/orders", NewOrderHandler(svc).Create)

			resp, _ := do(t, app, jsonRequest(fiber.MethodPost, "/orders", tt.body))
			assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
			svc.AssertExpectations(t)
		})
	}
}

func TestOrderHandler_GetChecksOwnership(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("Get", mock.Anything, uint(7)).Return(&models.Order{ID: 7, CustomerID: 42}, nil)

	h := NewOrderHandler(svc)

	app := newApp(customerClaims)
	app.Get("/orders/:id", h.Get)
	resp, _ := do(t, app, httptest.NewRequest(fiber.MethodGet, "/orders/7", nil))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	app = newApp(adminClaims)
	app.Get("/orders/:id", h.Get)
	resp, _ = do(t, app, httptest.NewRequest(fiber.MethodGet, "/orders/7", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, env := do(t, app, httptest.NewRequest(fiber.MethodGet, "/orders/abc", nil))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_ID", env.Code)
}

func TestOrderHandler_ListPagination(t *testing.T) {
	svc := new(MockOrderService)
	svc.On("List", mock.Anything, mock.MatchedBy(func(f repositories.OrderFilter) bool {
		return f.Limit == 5 && f.Offset == 5 && f.Status == "pending" &&
			f.Created.From.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	})).Return([]models.Order{{ID: 1}}, int64(12), nil)

	app := newApp(adminClaims)
	app.Get("/orders", NewOrderHandler(svc).List)

	resp, env := do(t, app, httptest.NewRequest(fiber.MethodGet, "/orders?page=2&limit=5&status=pending&startDate=2024-01-01", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Pagination)
	assert.Equal(t, 2, env.Pagination.Page)
	assert.Equal(t, int64(12), env.Pagination.Total)
	assert.Equal(t, 3, env.Pagination.Pages)
	svc.AssertExpectations(t)
}

func TestAddressHandler_SetDefault(t *testing.T) {
	svc := new(MockAddressService)
	svc.On("Get", mock.Anything, uint(3)).
		Return(&models.CustomerAddress{ID: 3, CustomerID: 5, AddressType: models.AddressTypeShipping}, nil)
	svc.On("Get", mock.Anything, uint(4)).
		Return(&models.CustomerAddress{ID: 4, CustomerID: 77, AddressType: models.AddressTypeBilling}, nil)
	svc.On("SetDefault", mock.Anything, uint(5), uint(3), models.AddressTypeShipping).
		Return(&models.CustomerAddress{ID: 3, CustomerID: 5, IsDefault: true}, nil)

	app := newApp(customerClaims)
	app.Patch("/addresses/:id/set-default", NewAddressHandler(svc).SetDefault)

	resp, _ := do(t, app, httptest.NewRequest(fiber.MethodPatch, "/addresses/3/set-default", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, env := do(t, app, httptest.NewRequest(fiber.MethodPatch, "/addresses/4/set-default", nil))
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ADDRESS_NOT_FOUND", env.Code)

	resp, env = do(t, app, jsonRequest(fiber.MethodPatch, "/addresses/3/set-default", `{"addressType":`))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", env.Code)
	svc.AssertNumberOfCalls(t, "SetDefault", 1)
	svc.AssertExpectations(t)
}

func TestTransactionHandler_Refund(t *testing.T) {
	svc := new(MockLedgerService)
	isAmount := func(v int64) interface{} {
		return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(decimal.NewFromInt(v)) })
	}
	svc.On("ProcessRefund", mock.Anything, "TXN-1", isAmount(150), "damaged").
		Return(nil, ledger.ErrRefundExceedsOriginal)
	svc.On("ProcessRefund", mock.Anything, "TXN-1", isAmount(100), "damaged").
		Return(&ledger.RefundOutcome{
			Refund:   &models.Transaction{TransactionID: "REF-1"},
			Original: &models.Transaction{TransactionID: "TXN-1", Status: models.TransactionStatusRefunded},
		}, nil)

	app := newApp(adminClaims)
	app.Post("/refund", NewTransactionHandler(svc).Refund)

	resp, env := do(t, app, jsonRequest(fiber.MethodPost, "/refund", `{"transactionId":"TXN-1","amount":150,"reason":"damaged"}`))
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "REFUND_EXCEEDS_ORIGINAL", env.Code)

	resp, env = do(t, app, jsonRequest(fiber.MethodPost, "/refund", `{"transactionId":"TXN-1","amount":"100.00","reason":"damaged"}`))
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var out ledger.RefundOutcome
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, models.TransactionStatusRefunded, out.Original.Status)
	svc.AssertExpectations(t)
}

func TestKYCHandler_SubmitMultipart(t *testing.T) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	require.NoError(t, w.WriteField("documentType", "passport"))
	require.NoError(t, w.WriteField("documentNumber", "P123"))
	part, err := w.CreateFormFile("frontImage", "front.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	svc := new(MockKYCService)
	svc.On("Create", mock.Anything, uint(5), mock.MatchedBy(func(in kyc.CreateInput) bool {
		if in.Front == nil || in.Back != nil || in.Selfie != nil {
			return false
		}
		data, err := io.ReadAll(in.Front.Reader)
		return err == nil && string(data) == "png-bytes" &&
			in.Front.Filename == "front.png" && in.DocumentType == "passport"
	})).Return(&models.KYCApplication{ID: 1, UserID: 5}, nil)

	app := newApp(customerClaims)
	app.Post("/kyc/submit", NewKYCHandler(svc).Submit)

	req := httptest.NewRequest(fiber.MethodPost, "/kyc/submit", &body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	resp, _ := do(t, app, req)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestSupportHandler_ListScopesCustomers(t *testing.T) {
	svc := new(MockSupportService)
	svc.On("List", mock.Anything, mock.MatchedBy(func(f repositories.TicketFilter) bool {
		return f.CustomerID != nil && *f.CustomerID == 5
	})).Return([]models.SupportTicket{}, int64(0), nil).Once()
	svc.On("List", mock.Anything, mock.MatchedBy(func(f repositories.TicketFilter) bool {
		return f.CustomerID != nil && *f.CustomerID == 9
	})).Return([]models.SupportTicket{}, int64(0), nil).Once()

	h := NewSupportHandler(svc)

	app := newApp(customerClaims)
	app.Get("/support", h.List)
	resp, _ := do(t, app, httptest.NewRequest(fiber.MethodGet, "/support?customerId=9", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	app = newApp(adminClaims)
	app.Get("/support", h.List)
	resp, _ = do(t, app, httptest.NewRequest(fiber.MethodGet, "/support?customerId=9", nil))
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestSupportHandler_RateNotOwner(t *testing.T) {
	svc := new(MockSupportService)
	svc.On("Rate", mock.Anything, uint(5), uint(2), 4).Return(nil, support.ErrNotTicketOwner)

	app := newApp(customerClaims)
	app.Post("/support/:id/rating", NewSupportHandler(svc).Rate)

	resp, env := do(t, app, jsonRequest(fiber.MethodPost, "/support/2/rating", `{"rating":4}`))
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "NOT_TICKET_OWNER", env.Code)
}

func TestMissingClaimsIsUnauthorized(t *testing.T) {
	app := newApp(nil)
	app.Get("/cart", NewCartHandler(new(MockCartService)).Get)

	resp, env := do(t, app, httptest.NewRequest(fiber.MethodGet, "/cart", nil))
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.False(t, env.Success)
}
