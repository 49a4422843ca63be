package server_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shop/internal/config"
	"shop/internal/domain/model"
	"shop/internal/events"
	"shop/internal/handler"
	"shop/internal/infra/memory"
	"shop/internal/logging"
	"shop/internal/metrics"
	"shop/internal/server"
	"shop/internal/txref"
	"shop/internal/usecase"
	"shop/internal/validator"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jwtSecret = "test-secret"

type app struct {
	e        *echo.Echo
	store    *memory.Store
	category model.Category
}

func newApp(t *testing.T) *app {
	t.Helper()

	cfg := config.Config{JWTSecret: jwtSecret, LogLevel: "error"}
	logger := logging.NewWithOutput("test", "error", io.Discard)
	s := memory.NewStore()
	m := metrics.New()
	pub := events.NewPublisher("", "shop.orders")

	authUC := usecase.NewAuthUsecase(cfg, s.Users(), validator.NewAuthValidator(s.Users()))
	productUC := usecase.NewProductUsecase(s, s.Products(), s.Categories(), s.Sellers())
	addressUC := usecase.NewAddressUsecase(s.Addresses(), validator.NewAddressValidator())
	cartUC := usecase.NewCartUsecase(s, s.CartLines())
	checkoutUC := usecase.NewCheckoutUsecase(s, txref.NewRandomGenerator(), pub, m, logger, false)
	orderUC := usecase.NewOrderUsecase(s, s.Orders(), s.OrderItems(), s.AuditLogs(), pub, m, logger)
	sellerUC := usecase.NewSellerUsecase(s, s.Sellers(), validator.NewSellerValidator(), false)
	profileUC := usecase.NewProfileUsecase(s.Users())

	e := server.New(server.Deps{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
		Users:   s.Users(),
		Auth:    handler.NewAuthHandler(authUC),
		Product: handler.NewProductHandler(productUC),
		Address: handler.NewAddressHandler(addressUC),
		Cart:    handler.NewCartHandler(cartUC, checkoutUC),
		Order:   handler.NewOrderHandler(orderUC),
		Seller:  handler.NewSellerHandler(sellerUC),
		Profile: handler.NewProfileHandler(profileUC),
	})

	return &app{
		e:        e,
		store:    s,
		category: s.AddCategory(model.Category{Name: "Tools", Slug: "tools"}),
	}
}

func (a *app) user(t *testing.T, email string, accountType model.AccountType) string {
	t.Helper()
	return a.login(t, model.User{Email: email, IsActive: true, AccountType: accountType})
}

func (a *app) login(t *testing.T, u model.User) string {
	t.Helper()
	u = a.store.AddUser(u)
	token, _, err := usecase.IssueAccessToken(jwtSecret, &u, time.Now())
	require.NoError(t, err)
	return token
}

func (a *app) product(slug string, price string, stock int64) model.Product {
	return a.store.AddProduct(model.Product{
		CategoryID:   a.category.ID,
		Name:         slug,
		Slug:         slug,
		PriceCurrent: decimal.RequireFromString(price),
		InStock:      stock,
	})
}

func (a *app) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorBody struct {
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details json.RawMessage `json:"details"`
}

type cartBody struct {
	Message string              `json:"message"`
	Item    *usecase.LineOutput `json:"item"`
}

func TestHealthAndMetrics(t *testing.T) {
	a := newApp(t)

	rec := a.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "shop_http_requests_total")
}

func TestRegisterAndLogin(t *testing.T) {
	a := newApp(t)

	//account_typeは受け付けず常にBUYER
	rec := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "New@Example.com", "password": "password123", "first_name": "Aru", "account_type": "SELLER",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reg := decode[usecase.AuthRegisterResponse](t, rec)
	assert.Equal(t, model.AccountTypeBuyer, reg.User.AccountType)

	rec = a.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "new@example.com", "password": "password123",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "new@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	login := decode[usecase.AuthLoginResponse](t, rec)
	require.NotEmpty(t, login.Token.AccessToken)

	//発行されたtokenで保護ルートに入れる
	rec = a.do(t, http.MethodGet, "/cart", login.Token.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "new@example.com", "password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newApp(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/cart"},
		{http.MethodPost, "/cart"},
		{http.MethodPost, "/checkout"},
		{http.MethodGet, "/profile/orders"},
		{http.MethodGet, "/profile/shipping_addresses"},
		{http.MethodPatch, "/seller/products/x"},
		{http.MethodGet, "/seller/products"},
		{http.MethodPost, "/seller/products"},
		{http.MethodDelete, "/seller/products/x"},
		{http.MethodGet, "/seller"},
		{http.MethodPost, "/seller"},
		{http.MethodPatch, "/seller"},
		{http.MethodPost, "/sellers/x/approve"},
		{http.MethodPost, "/categories"},
		{http.MethodGet, "/profile"},
		{http.MethodDelete, "/profile"},
	} {
		rec := a.do(t, tc.method, tc.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, tc.path)
	}
}

func TestCartCheckoutAndCancelFlow(t *testing.T) {
	a := newApp(t)
	token := a.user(t, "buyer@example.com", model.AccountTypeBuyer)
	p := a.product("hammer", "10.00", 5)

	rec := a.do(t, http.MethodPost, "/cart", token, map[string]any{"slug": "hammer", "quantity": 1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Item added to cart", decode[cartBody](t, rec).Message)

	rec = a.do(t, http.MethodPost, "/cart", token, map[string]any{"slug": "hammer", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[cartBody](t, rec)
	assert.Equal(t, "Item quantity updated", updated.Message)
	require.NotNil(t, updated.Item)
	assert.Equal(t, "20.00", updated.Item.Total)

	rec = a.do(t, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "["), rec.Body.String())
	lines := decode[[]usecase.LineOutput](t, rec)
	require.Len(t, lines, 1)
	assert.Equal(t, "hammer", lines[0].Product.Slug)
	assert.Equal(t, "20.00", lines[0].Total)

	rec = a.do(t, http.MethodPost, "/checkout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	order := decode[usecase.OrderSummary](t, rec)
	assert.Len(t, order.TxRef, 12)
	assert.Equal(t, "20.00", order.Subtotal)
	assert.Equal(t, "20.00", order.Total)
	assert.Equal(t, model.PaymentStatusPending, order.PaymentStatus)

	cur, _ := a.store.Product(p.ID)
	assert.Equal(t, int64(3), cur.InStock)

	//カートは空になる
	rec = a.do(t, http.MethodGet, "/cart", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]usecase.LineOutput](t, rec))

	rec = a.do(t, http.MethodGet, "/profile/orders", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[usecase.Page[usecase.OrderSummary]](t, rec)
	require.Len(t, page.Result, 1)
	assert.Equal(t, order.TxRef, page.Result[0].TxRef)
	assert.Equal(t, 1, page.PageNumber)

	rec = a.do(t, http.MethodGet, "/profile/orders/"+order.TxRef, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]usecase.LineOutput](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].Quantity)

	//他人の注文は404
	other := a.user(t, "other@example.com", model.AccountTypeBuyer)
	rec = a.do(t, http.MethodGet, "/profile/orders/"+order.TxRef, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodPost, "/profile/orders/"+order.TxRef+"/cancel", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.PaymentStatusCancelled, decode[usecase.OrderSummary](t, rec).PaymentStatus)

	cur, _ = a.store.Product(p.ID)
	assert.Equal(t, int64(5), cur.InStock)

	rec = a.do(t, http.MethodPost, "/profile/orders/"+order.TxRef+"/cancel", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartErrors(t *testing.T) {
	a := newApp(t)
	token := a.user(t, "buyer@example.com", model.AccountTypeBuyer)
	a.product("saw", "5.00", 1)

	rec := a.do(t, http.MethodPost, "/cart", token, map[string]any{"slug": "saw", "quantity": 3})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "insufficient_stock", body.Code)
	assert.JSONEq(t, `{"available":1}`, string(body.Details))

	rec = a.do(t, http.MethodPost, "/cart", token, map[string]any{"slug": "missing", "quantity": 1})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodPost, "/cart", token, map[string]any{"slug": "saw"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/cart", token, map[string]any{"slug": "saw", "quantity": -1})
	assert.Equal(t, "validation_error", decode[errorBody](t, rec).Code)
}

func TestCheckoutErrors(t *testing.T) {
	a := newApp(t)
	token := a.user(t, "buyer@example.com", model.AccountTypeBuyer)

	rec := a.do(t, http.MethodPost, "/checkout", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "empty_cart", decode[errorBody](t, rec).Code)

	p := a.product("drill", "50.00", 2)
	rec = a.do(t, http.MethodPost, "/cart", token, map[string]any{"slug": "drill", "quantity": 2})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodPost, "/checkout", token, map[string]string{"shipping_id": "not-a-uuid"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/checkout", token, map[string]string{"shipping_id": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	//カート投入後に在庫が減った
	a.store.SoftDeleteProduct(p.ID)
	rec = a.do(t, http.MethodPost, "/checkout", token, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[errorBody](t, rec)
	assert.Equal(t, "insufficient_stock_batch", body.Code)

	var shortages []usecase.StockShortage
	require.NoError(t, json.Unmarshal(body.Details, &shortages))
	require.Len(t, shortages, 1)
	assert.Equal(t, "drill", shortages[0].Slug)
	assert.Equal(t, int64(0), shortages[0].Available)
	assert.Equal(t, 0, a.store.OrderCount())
}

func TestCheckoutWithShippingAddress(t *testing.T) {
	a := newApp(t)
	token := a.user(t, "buyer@example.com", model.AccountTypeBuyer)
	a.product("nails", "1.50", 100)

	rec := a.do(t, http.MethodPost, "/profile/shipping_addresses", token, map[string]string{
		"full_name": "Aru Sat", "email": "aru@example.com", "city": "Almaty", "zipcode": "050000",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	addr := decode[usecase.AddressDTO](t, rec)

	rec = a.do(t, http.MethodPost, "/cart", token, map[string]any{"slug": "nails", "quantity": 4})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = a.do(t, http.MethodPost, "/checkout", token, map[string]string{"shipping_id": addr.ID.String()})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	order := decode[usecase.OrderSummary](t, rec)
	require.NotNil(t, order.ShippingDetails.City)
	assert.Equal(t, "Almaty", *order.ShippingDetails.City)
	assert.Equal(t, "6.00", order.Total)

	//住所を消しても注文のスナップショットは残る
	rec = a.do(t, http.MethodDelete, "/profile/shipping_addresses/"+addr.ID.String(), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = a.do(t, http.MethodGet, "/profile/orders", token, nil)
	page := decode[usecase.Page[usecase.OrderSummary]](t, rec)
	require.Len(t, page.Result, 1)
	require.NotNil(t, page.Result[0].ShippingDetails.City)
	assert.Equal(t, "Almaty", *page.Result[0].ShippingDetails.City)
}

func TestShippingAddressRoutes(t *testing.T) {
	a := newApp(t)
	token := a.user(t, "buyer@example.com", model.AccountTypeBuyer)
	other := a.user(t, "other@example.com", model.AccountTypeBuyer)

	rec := a.do(t, http.MethodPost, "/profile/shipping_addresses", token, map[string]string{"full_name": "No Email"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/profile/shipping_addresses", token, map[string]string{
		"full_name": "Aru Sat", "email": "aru@example.com",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	addr := decode[usecase.AddressDTO](t, rec)
	path := "/profile/shipping_addresses/" + addr.ID.String()

	rec = a.do(t, http.MethodPatch, path, token, map[string]string{
		"full_name": "Aru Sat", "email": "aru@example.com", "city": "Astana",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Astana", decode[usecase.AddressDTO](t, rec).City)

	rec = a.do(t, http.MethodGet, path, other, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodGet, "/profile/shipping_addresses/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodGet, "/profile/shipping_addresses", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]usecase.AddressDTO](t, rec), 1)
}

func TestProductRoutes(t *testing.T) {
	a := newApp(t)
	a.product("alpha", "30.00", 3)
	a.product("beta", "10.00", 0)

	rec := a.do(t, http.MethodGet, "/products?ordering=price&page_size=1", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[usecase.Page[usecase.ProductOutput]](t, rec)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Result, 1)
	assert.Equal(t, "beta", page.Result[0].Slug)

	rec = a.do(t, http.MethodGet, "/products?in_stock=1", "", nil)
	page = decode[usecase.Page[usecase.ProductOutput]](t, rec)
	require.Len(t, page.Result, 1)
	assert.Equal(t, "alpha", page.Result[0].Slug)

	rec = a.do(t, http.MethodGet, "/products?min_price=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodGet, "/products/alpha", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "30.00", decode[usecase.ProductOutput](t, rec).PriceCurrent)

	rec = a.do(t, http.MethodGet, "/products/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]usecase.CategoryOutput](t, rec), 1)
}

func TestSellerProductUpdate(t *testing.T) {
	a := newApp(t)

	sellerUser := a.store.AddUser(model.User{Email: "seller@example.com", IsActive: true, AccountType: model.AccountTypeSeller})
	seller := a.store.AddSeller(model.Seller{UserID: sellerUser.ID, BusinessName: "Shop", Slug: "shop", IsApproved: true})
	sellerToken, _, err := usecase.IssueAccessToken(jwtSecret, &sellerUser, time.Now())
	require.NoError(t, err)

	p := a.store.AddProduct(model.Product{
		CategoryID:   a.category.ID,
		SellerID:     &seller.ID,
		Name:         "Lamp",
		Slug:         "lamp",
		PriceCurrent: decimal.RequireFromString("12.00"),
		InStock:      4,
	})

	buyer := a.user(t, "buyer@example.com", model.AccountTypeBuyer)
	rec := a.do(t, http.MethodPatch, "/seller/products/lamp", buyer, map[string]any{"price_current": "15.00"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPatch, "/seller/products/lamp", sellerToken, map[string]any{"price_current": "15.00", "in_stock": 10})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[usecase.ProductOutput](t, rec)
	assert.Equal(t, "15.00", out.PriceCurrent)
	require.NotNil(t, out.PriceOld)
	assert.Equal(t, "12.00", *out.PriceOld)

	cur, _ := a.store.Product(p.ID)
	assert.Equal(t, int64(10), cur.InStock)
}

func sellerApplication(name string) map[string]any {
	return map[string]any{
		"business_name":        name,
		"inn_number":           "770123456789",
		"website_url":          "https://acme.example.com",
		"phone_number":         "+7 700 000 0000",
		"business_description": "Hand tools",
		"business_address":     "1 Main St",
		"city":                 "Almaty",
		"postal_code":          "050000",
		"bank_name":            "Bank",
		"bic_bank_number":      "123456789",
		"bank_account_number":  "KZ000000000",
		"bank_routing_number":  "000111",
	}
}

func TestSellerOnboardingFlow(t *testing.T) {
	a := newApp(t)
	token := a.user(t, "buyer@example.com", model.AccountTypeBuyer)
	staff := a.login(t, model.User{Email: "staff@example.com", IsActive: true, IsStaff: true, AccountType: model.AccountTypeBuyer})

	rec := a.do(t, http.MethodGet, "/seller", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	//BUYERのままではSellerGuardで止まる
	rec = a.do(t, http.MethodGet, "/seller/products", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPost, "/seller", token, map[string]any{"business_name": "Acme"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPost, "/seller", token, sellerApplication("Acme Tools"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	applied := decode[usecase.SellerProfileOutput](t, rec)
	assert.Equal(t, "acme-tools", applied.Slug)
	assert.False(t, applied.IsApproved)

	//承認前は出品できない
	rec = a.do(t, http.MethodGet, "/seller/products", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Access is denied", decode[errorBody](t, rec).Error)

	rec = a.do(t, http.MethodPost, "/sellers/acme-tools/approve", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPost, "/sellers/acme-tools/approve", staff, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, decode[usecase.SellerProfileOutput](t, rec).IsApproved)

	rec = a.do(t, http.MethodPost, "/sellers/nobody/approve", staff, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	newProduct := map[string]any{
		"name": "Claw Hammer", "description": "Steel", "price_current": "12.50",
		"category_slug": "tools", "in_stock": 4,
	}
	rec = a.do(t, http.MethodPost, "/seller/products", token, newProduct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[usecase.ProductOutput](t, rec)
	assert.Equal(t, "claw-hammer", created.Slug)
	assert.Equal(t, "12.50", created.PriceCurrent)
	require.NotNil(t, created.Seller)
	assert.Equal(t, "acme-tools", created.Seller.Slug)

	//同じ名前は別slug
	rec = a.do(t, http.MethodPost, "/seller/products", token, newProduct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "claw-hammer-2", decode[usecase.ProductOutput](t, rec).Slug)

	newProduct["category_slug"] = "garden"
	rec = a.do(t, http.MethodPost, "/seller/products", token, newProduct)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Category does not exist!", decode[errorBody](t, rec).Error)

	rec = a.do(t, http.MethodGet, "/seller/products", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]usecase.ProductOutput](t, rec), 2)

	rec = a.do(t, http.MethodPatch, "/seller", token, map[string]any{"business_name": "Acme Hardware"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	patched := decode[usecase.SellerProfileOutput](t, rec)
	assert.Equal(t, "acme-hardware", patched.Slug)
	assert.Equal(t, "Almaty", patched.City)
	assert.True(t, patched.IsApproved)

	rec = a.do(t, http.MethodGet, "/seller", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Acme Hardware", decode[usecase.SellerProfileOutput](t, rec).BusinessName)

	rec = a.do(t, http.MethodDelete, "/seller/products/claw-hammer", token, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Product deleted successfully", decode[handler.MessageResponse](t, rec).Message)

	rec = a.do(t, http.MethodGet, "/products/claw-hammer", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = a.do(t, http.MethodDelete, "/seller/products/claw-hammer", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRegisteredBuyerBecomesSellerOnlyThroughOnboarding(t *testing.T) {
	a := newApp(t)

	rec := a.do(t, http.MethodPost, "/auth/register", "", map[string]string{
		"email": "maker@example.com", "password": "password123", "account_type": "SELLER",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email": "maker@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[usecase.AuthLoginResponse](t, rec).Token.AccessToken

	rec = a.do(t, http.MethodGet, "/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.AccountTypeBuyer, decode[usecase.ProfileOutput](t, rec).AccountType)

	rec = a.do(t, http.MethodPost, "/seller", token, sellerApplication("Maker"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = a.do(t, http.MethodGet, "/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.AccountTypeSeller, decode[usecase.ProfileOutput](t, rec).AccountType)
}

func TestCategoryCreate(t *testing.T) {
	a := newApp(t)
	buyer := a.user(t, "buyer@example.com", model.AccountTypeBuyer)
	staff := a.login(t, model.User{Email: "staff@example.com", IsActive: true, IsStaff: true, AccountType: model.AccountTypeBuyer})

	rec := a.do(t, http.MethodPost, "/categories", "", map[string]string{"name": "Garden"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodPost, "/categories", buyer, map[string]string{"name": "Garden"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = a.do(t, http.MethodPost, "/categories", staff, map[string]string{"name": "Garden & Patio"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, usecase.CategoryOutput{Name: "Garden & Patio", Slug: "garden-patio"}, decode[usecase.CategoryOutput](t, rec))

	rec = a.do(t, http.MethodPost, "/categories", staff, map[string]string{"name": "Garden & Patio"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = a.do(t, http.MethodPost, "/categories", staff, map[string]string{"name": "Lights", "slug": "Bad Slug"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodGet, "/categories", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]usecase.CategoryOutput](t, rec), 2)
}

func TestProfileRoutes(t *testing.T) {
	a := newApp(t)
	token := a.login(t, model.User{Email: "buyer@example.com", FirstName: "Aru", IsActive: true, AccountType: model.AccountTypeBuyer})

	rec := a.do(t, http.MethodGet, "/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = a.do(t, http.MethodGet, "/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, usecase.ProfileOutput{FirstName: "Aru", Email: "buyer@example.com", AccountType: model.AccountTypeBuyer}, decode[usecase.ProfileOutput](t, rec))

	rec = a.do(t, http.MethodPatch, "/profile", token, map[string]string{"last_name": "Sadykova"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[usecase.ProfileOutput](t, rec)
	assert.Equal(t, "Aru", out.FirstName)
	assert.Equal(t, "Sadykova", out.LastName)

	rec = a.do(t, http.MethodPut, "/profile", token, map[string]string{"first_name": "A"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = a.do(t, http.MethodPut, "/profile", token, map[string]string{"first_name": "A", "last_name": "B"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "B", decode[usecase.ProfileOutput](t, rec).LastName)

	rec = a.do(t, http.MethodDelete, "/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Account buyer@example.com deactivated", decode[handler.MessageResponse](t, rec).Message)

	//無効化でtokenも使えなくなる
	rec = a.do(t, http.MethodGet, "/profile", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
