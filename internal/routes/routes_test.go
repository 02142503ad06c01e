package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopease_back_end/internal/auth"
	"shopease_back_end/internal/cache"
	"shopease_back_end/internal/catalog"
	"shopease_back_end/internal/checkout"
	"shopease_back_end/internal/middleware"
	"shopease_back_end/internal/models"
	"shopease_back_end/internal/shop"
)

type nopMailer struct{}

func (nopMailer) SendOrderConfirmation(context.Context, models.Order) error { return nil }

type testServer struct {
	t      *testing.T
	router *gin.Engine
	shop   *shop.Shop
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cat, err := catalog.Default()
	require.NoError(t, err)
	store := cache.NewMemoryStore()
	s := shop.New(store,
		cat,
		auth.NewService(store, auth.Options{Secret: "test-secret"}),
		checkout.NewService(store, nopMailer{}, checkout.Options{}),
		shop.Options{},
	)

	r := gin.New()
	RegisterRoutes(r, s, store, []string{"*"})
	return &testServer{t: t, router: r, shop: s}
}

// do envoie la requête ; headers : paires clé, valeur
func (ts *testServer) do(method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	ts.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(ts.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
}

func session(id string) []string {
	return []string{middleware.SessionHeader, id}
}

func newSession() []string {
	return session(uuid.NewString())
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestProductEndpoints(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/products/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var p models.Product
	decode(t, w, &p)
	assert.Equal(t, "1", p.ID)

	w = ts.do(http.MethodGet, "/api/products/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)

	w = ts.do(http.MethodGet, "/api/products/search?q=WIRELESS", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var search struct {
		Products []models.Product `json:"products"`
		Count    int              `json:"count"`
	}
	decode(t, w, &search)
	assert.Equal(t, len(search.Products), search.Count)
	for _, p := range search.Products {
		text := strings.ToLower(p.Name + p.Description + p.Category)
		assert.Contains(t, text, "wireless")
	}

	w = ts.do(http.MethodGet, "/api/products/featured?limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var featured struct {
		Products []models.Product `json:"products"`
	}
	decode(t, w, &featured)
	assert.LessOrEqual(t, len(featured.Products), 2)

	w = ts.do(http.MethodGet, "/api/products/1/related", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(http.MethodGet, "/api/products/999/related", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodGet, "/api/products/filters", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"categories"`)
}

func TestProductQuery(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/products?sort=price-low-high&limit=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res catalog.Result
	decode(t, w, &res)
	require.Len(t, res.Products, 5)
	assert.Equal(t, 12, res.Pagination.Total)
	for i := 1; i < len(res.Products); i++ {
		assert.LessOrEqual(t, res.Products[i-1].Price, res.Products[i].Price)
	}

	w = ts.do(http.MethodGet, "/api/products?min_price=30&max_price=60", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &res)
	for _, p := range res.Products {
		assert.GreaterOrEqual(t, p.Price, 30.0)
		assert.LessOrEqual(t, p.Price, 60.0)
	}

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/products?sort=random", nil).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/products?min_price=abc", nil).Code)
}

func TestCartFlow(t *testing.T) {
	ts := newTestServer(t)
	sid := newSession()

	w := ts.do(http.MethodPost, "/api/cart/add", gin.H{"productId": "4", "quantity": 1}, sid...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = ts.do(http.MethodPost, "/api/cart/add", gin.H{"productId": "4"}, sid...)
	require.Equal(t, http.StatusOK, w.Code)

	var snap models.CartSnapshot
	decode(t, w, &snap)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, 2, snap.Items[0].Quantity)

	w = ts.do(http.MethodPut, "/api/cart/4", gin.H{"quantity": 3}, sid...)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &snap)
	assert.Equal(t, 3, snap.Count)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPut, "/api/cart/4", gin.H{"quantity": 0}, sid...).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPut, "/api/cart/5", gin.H{"quantity": 1}, sid...).Code)
	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodPost, "/api/cart/add", gin.H{"productId": "4", "quantity": -1}, sid...).Code)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, "/api/cart/add", gin.H{"productId": "999"}, sid...).Code)

	w = ts.do(http.MethodGet, "/api/cart?shipping=express", nil, sid...)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &snap)
	assert.Equal(t, 12.99, snap.Totals.Shipping)

	// une autre session a son propre panier
	w = ts.do(http.MethodGet, "/api/cart", nil, newSession()...)
	decode(t, w, &snap)
	assert.Empty(t, snap.Items)

	w = ts.do(http.MethodDelete, "/api/cart/4", nil, sid...)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &snap)
	assert.Empty(t, snap.Items)
}

func TestSessionIsGeneratedWhenMissing(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/cart/add", gin.H{"productId": "1"})
	require.Equal(t, http.StatusOK, w.Code)
	sid := w.Header().Get(middleware.SessionHeader)
	require.NotEmpty(t, sid)

	w = ts.do(http.MethodGet, "/api/cart", nil, session(sid)...)
	var snap models.CartSnapshot
	decode(t, w, &snap)
	assert.Equal(t, 1, snap.Count)
}

func TestCheckoutFlow(t *testing.T) {
	ts := newTestServer(t)
	sid := newSession()

	req := gin.H{
		"email":           "buyer@example.com",
		"shippingMethod":  "standard",
		"shippingAddress": gin.H{"firstName": "Ada", "street": "1 Main St", "city": "Springfield"},
	}

	w := ts.do(http.MethodPost, "/api/checkout", req, sid...)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	ts.do(http.MethodPost, "/api/cart/add", gin.H{"productId": "1", "quantity": 1}, sid...)

	w = ts.do(http.MethodPost, "/api/checkout", req, sid...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		Order models.Order `json:"order"`
	}
	decode(t, w, &out)
	assert.True(t, out.Order.Totals.FreeShipping)
	assert.Equal(t, 0.0, out.Order.Totals.Shipping)

	var snap models.CartSnapshot
	decode(t, ts.do(http.MethodGet, "/api/cart", nil, sid...), &snap)
	assert.Empty(t, snap.Items)

	w = ts.do(http.MethodGet, "/api/orders/"+out.Order.ID, nil, sid...)
	assert.Equal(t, http.StatusOK, w.Code)
	w = ts.do(http.MethodGet, "/api/orders/"+out.Order.ID, nil, newSession()...)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodGet, "/api/orders/"+out.Order.ID+"/qrcode?size=128", nil, sid...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestShippingOptions(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/shipping/options?subtotal=60", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var calc models.ShippingCalculation
	decode(t, w, &calc)
	assert.True(t, calc.IsFree)
	require.Len(t, calc.Options, 3)
	assert.Equal(t, 0.0, calc.Options[0].Price)

	w = ts.do(http.MethodGet, "/api/shipping/options?subtotal=50", nil)
	decode(t, w, &calc)
	assert.False(t, calc.IsFree)

	assert.Equal(t, http.StatusBadRequest, ts.do(http.MethodGet, "/api/shipping/options?subtotal=x", nil).Code)
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)

	register := gin.H{"name": "Jane Doe", "email": "jane@example.com", "password": "secret"}
	w := ts.do(http.MethodPost, "/api/auth/register", register)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(http.MethodPost, "/api/auth/register", register)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = ts.do(http.MethodPost, "/api/auth/login", gin.H{"email": "jane@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodPost, "/api/auth/login", gin.H{"email": "jane@example.com", "password": "secret"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	decode(t, w, &login)
	require.NotEmpty(t, login.Token)
	assert.NotContains(t, w.Body.String(), "passwordHash")
	bearer := []string{"Authorization", "Bearer " + login.Token}

	w = ts.do(http.MethodGet, "/api/auth/me", nil, bearer...)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	decode(t, w, &me)
	assert.Equal(t, "jane@example.com", me.Email)
	assert.Equal(t, "Jane", me.ShippingAddress.FirstName)

	w = ts.do(http.MethodPatch, "/api/auth/me", gin.H{"phone": "555-0100", "email": "evil@example.com"}, bearer...)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &me)
	assert.Equal(t, "555-0100", me.Phone)
	assert.Equal(t, "jane@example.com", me.Email)

	w = ts.do(http.MethodPost, "/api/auth/logout", nil, bearer...)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(http.MethodGet, "/api/auth/me", nil, bearer...)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLoginAdoptsSessionCart(t *testing.T) {
	ts := newTestServer(t)
	sid := newSession()

	ts.do(http.MethodPost, "/api/cart/add", gin.H{"productId": "2", "quantity": 2}, sid...)
	w := ts.do(http.MethodPost, "/api/auth/register", gin.H{"name": "Bob", "email": "bob@example.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = ts.do(http.MethodPost, "/api/auth/login", gin.H{"email": "bob@example.com", "password": "pw"}, sid...)
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
	}
	decode(t, w, &login)

	var snap models.CartSnapshot
	decode(t, ts.do(http.MethodGet, "/api/cart", nil, "Authorization", "Bearer "+login.Token), &snap)
	assert.Equal(t, 2, snap.Count)
}

func TestWishlistCompareAndRecentlyViewed(t *testing.T) {
	ts := newTestServer(t)
	sid := newSession()

	w := ts.do(http.MethodPost, "/api/wishlist/3/toggle", nil, sid...)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"inWishlist":true`)
	w = ts.do(http.MethodPost, "/api/wishlist/3/toggle", nil, sid...)
	assert.Contains(t, w.Body.String(), `"inWishlist":false`)
	assert.Equal(t, http.StatusNotFound, ts.do(http.MethodPost, "/api/wishlist/999", nil, sid...).Code)

	for _, id := range []string{"1", "2", "3", "4"} {
		require.Equal(t, http.StatusOK, ts.do(http.MethodPost, "/api/compare/"+id, nil, sid...).Code)
	}
	assert.Equal(t, http.StatusConflict, ts.do(http.MethodPost, "/api/compare/5", nil, sid...).Code)

	ts.do(http.MethodGet, "/api/products/7", nil, sid...)
	ts.do(http.MethodGet, "/api/products/8", nil, sid...)
	w = ts.do(http.MethodGet, "/api/recently-viewed?limit=1", nil, sid...)
	require.Equal(t, http.StatusOK, w.Code)
	var recent struct {
		Products []models.Product `json:"products"`
	}
	decode(t, w, &recent)
	require.Len(t, recent.Products, 1)
	assert.Equal(t, "8", recent.Products[0].ID)
}

func TestCartWebSocket(t *testing.T) {
	ts := newTestServer(t)
	srv := httptest.NewServer(ts.router)
	defer srv.Close()

	visitor := uuid.NewString()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/cart/ws?session_id=" + visitor
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// le premier message arrive après l'abonnement
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev shop.CartEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, shop.EventCartUpdated, ev.Type)
	assert.Equal(t, 0, ev.Count)

	w := ts.do(http.MethodPost, "/api/cart/add", gin.H{"productId": "1", "quantity": 2}, session(visitor)...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, 2, ev.Count)
	require.Len(t, ev.Items, 1)
}

func TestHugePageIsEmpty(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodGet, "/api/products?page=4611686018427387904", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var res catalog.Result
	decode(t, w, &res)
	assert.Empty(t, res.Products)
	assert.Equal(t, 12, res.Pagination.Total)
}

// un identifiant de compte passé comme session anonyme ne donne aucun accès au compte
func TestSessionCannotActAsUser(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/auth/register", gin.H{"name": "Alice", "email": "alice@example.com", "password": "pw"})
	require.Equal(t, http.StatusCreated, w.Code)
	w = ts.do(http.MethodPost, "/api/auth/login", gin.H{"email": "alice@example.com", "password": "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	decode(t, w, &login)
	bearer := []string{"Authorization", "Bearer " + login.Token}

	w = ts.do(http.MethodPost, "/api/cart/add", gin.H{"productId": "1", "quantity": 1}, bearer...)
	require.Equal(t, http.StatusOK, w.Code)
	w = ts.do(http.MethodPost, "/api/checkout", gin.H{
		"email":           "alice@example.com",
		"shippingAddress": gin.H{"firstName": "Alice", "street": "1 Main St", "city": "Springfield"},
	}, bearer...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out struct {
		Order models.Order `json:"order"`
	}
	decode(t, w, &out)

	impostor := session(login.User.ID)
	w = ts.do(http.MethodGet, "/api/orders/"+out.Order.ID, nil, impostor...)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPost, "/api/wishlist/1", nil, impostor...)
	require.Equal(t, http.StatusOK, w.Code)

	var list struct {
		Count int `json:"count"`
	}
	decode(t, ts.do(http.MethodGet, "/api/wishlist", nil, bearer...), &list)
	assert.Equal(t, 0, list.Count)

	w = ts.do(http.MethodGet, "/api/orders/"+out.Order.ID, nil, bearer...)
	assert.Equal(t, http.StatusOK, w.Code)
}
