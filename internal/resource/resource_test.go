package resource_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Dev-Ole007/Ipaps/internal/entities"
	"github.com/Dev-Ole007/Ipaps/internal/resource"
	"github.com/Dev-Ole007/Ipaps/internal/store"
	"github.com/Dev-Ole007/Ipaps/pkg/middleware"
)

func mount(r *gin.Engine, opts resource.Options, routes resource.Routes, guard ...gin.HandlerFunc) {
	opts.Collection = store.NewMemory()
	resource.NewHandler(opts).Register(r.Group("/api"), routes, guard...)
}

func storesOpts() resource.Options {
	return resource.Options{
		Name: "stores", Label: "Store",
		New:     func() resource.Entity { return &entities.Store{} },
		OrderBy: "createdAt", Descending: true,
	}
}

func productsOpts() resource.Options {
	return resource.Options{
		Name: "products", Label: "Product",
		New:     func() resource.Entity { return &entities.Product{} },
		OrderBy: "createdAt", Descending: true,
		FilterParam: "storeId",
	}
}

func tripsOpts() resource.Options {
	return resource.Options{
		Name: "trips", Label: "Trip",
		New:     func() resource.Entity { return &entities.Trip{} },
		OrderBy: "time",
	}
}

func newsOpts() resource.Options {
	return resource.Options{
		Name: "news", Label: "News",
		New:     func() resource.Entity { return &entities.News{} },
		OrderBy: "createdAt", Descending: true,
	}
}

func do(t *testing.T, g *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	g.ServeHTTP(w, req)
	return w
}

func TestStoreCreateThenGet(t *testing.T) {
	g := gin.New()
	mount(g, storesOpts(), resource.Routes{Get: true, Update: true})

	w := do(t, g, http.MethodPost, "/api/stores", `{"name":"A","category":"food","phone":"1","whatsapp":"1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var created entities.Store
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)
	require.Equal(t, 0.0, created.Rating)
	_, err := time.Parse("2006-01-02T15:04:05.999999Z07:00", created.CreatedAt)
	require.NoError(t, err, "createdAt must be a well-formed timestamp")

	w = do(t, g, http.MethodGet, "/api/stores/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got entities.Store
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, created.ID, got.ID)
	require.Equal(t, "A", *got.Name)
	require.Equal(t, "food", *got.Category)
	require.Equal(t, created.CreatedAt, got.CreatedAt)
	require.Nil(t, got.Logo)
}

func TestStoreGetMissing(t *testing.T) {
	g := gin.New()
	mount(g, storesOpts(), resource.Routes{Get: true})

	w := do(t, g, http.MethodGet, "/api/stores/no-such-id", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Body.String(), "Store not found")
}

func TestListEmptyCollection(t *testing.T) {
	g := gin.New()
	mount(g, storesOpts(), resource.Routes{})

	w := do(t, g, http.MethodGet, "/api/stores", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out []entities.Store
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Empty(t, out)
}

func TestStoreListNewestFirst(t *testing.T) {
	g := gin.New()
	mount(g, storesOpts(), resource.Routes{})

	for _, name := range []string{"first", "second", "third"} {
		body := fmt.Sprintf(`{"name":%q,"category":"c","phone":"1","whatsapp":"1"}`, name)
		w := do(t, g, http.MethodPost, "/api/stores", body)
		require.Equal(t, http.StatusOK, w.Code)
		time.Sleep(2 * time.Millisecond) // distinct createdAt stamps
	}

	w := do(t, g, http.MethodGet, "/api/stores", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out []entities.Store
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 3)
	require.Equal(t, "third", *out[0].Name)
	require.Equal(t, "second", *out[1].Name)
	require.Equal(t, "first", *out[2].Name)
	for i := 1; i < len(out); i++ {
		require.GreaterOrEqual(t, out[i-1].CreatedAt, out[i].CreatedAt)
	}
}

func TestStoreUpdateKeepsCreatedAt(t *testing.T) {
	g := gin.New()
	mount(g, storesOpts(), resource.Routes{Get: true, Update: true})

	w := do(t, g, http.MethodPost, "/api/stores", `{"name":"A","category":"food","phone":"1","whatsapp":"1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var created entities.Store
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(t, g, http.MethodPut, "/api/stores/"+created.ID, `{"name":"B","category":"services","phone":"2","whatsapp":"2","description":"new"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var updated entities.Store
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, created.ID, updated.ID)

	w = do(t, g, http.MethodGet, "/api/stores/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var got entities.Store
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Equal(t, "B", *got.Name)
	require.Equal(t, "services", *got.Category)
	require.Equal(t, "new", *got.Description)
	require.Equal(t, created.CreatedAt, got.CreatedAt, "update must not re-stamp createdAt")
}

func TestStoreUpdateMissing(t *testing.T) {
	g := gin.New()
	mount(g, storesOpts(), resource.Routes{Update: true})

	w := do(t, g, http.MethodPut, "/api/stores/no-such-id", `{"name":"B","category":"c","phone":"1","whatsapp":"1"}`)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStoreDeleteAlwaysAcks(t *testing.T) {
	g := gin.New()
	mount(g, storesOpts(), resource.Routes{})

	w := do(t, g, http.MethodPost, "/api/stores", `{"name":"A","category":"food","phone":"1","whatsapp":"1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var created entities.Store
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = do(t, g, http.MethodDelete, "/api/stores/"+created.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Store deleted successfully"}`, w.Body.String())

	// deleting an id that never existed gives the same acknowledgment
	w = do(t, g, http.MethodDelete, "/api/stores/never-existed", "")
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"message":"Store deleted successfully"}`, w.Body.String())
}

func TestProductStoreFilter(t *testing.T) {
	g := gin.New()
	mount(g, productsOpts(), resource.Routes{})

	for _, p := range []string{
		`{"storeId":"s1","name":"apple","price":1.5,"category":"c"}`,
		`{"storeId":"s1","name":"pear","price":2,"category":"c"}`,
		`{"storeId":"s2","name":"milk","price":3,"category":"c"}`,
	} {
		w := do(t, g, http.MethodPost, "/api/products", p)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(t, g, http.MethodGet, "/api/products?storeId=s1", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out []entities.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 2)
	for _, p := range out {
		require.Equal(t, "s1", *p.StoreID)
	}

	w = do(t, g, http.MethodGet, "/api/products?storeId=nobody", "")
	require.Equal(t, http.StatusOK, w.Code)
	out = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Empty(t, out)

	w = do(t, g, http.MethodGet, "/api/products", "")
	require.Equal(t, http.StatusOK, w.Code)
	out = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 3)
}

func TestProductUnknownStoreAccepted(t *testing.T) {
	g := gin.New()
	mount(g, productsOpts(), resource.Routes{})

	// storeId is an unvalidated reference
	w := do(t, g, http.MethodPost, "/api/products", `{"storeId":"missing-id","name":"X","price":1.5,"category":"c"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, g, http.MethodGet, "/api/products?storeId=missing-id", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out []entities.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 1)
	require.Equal(t, "X", *out[0].Name)
}

func TestTripsOrderedByDepartureTime(t *testing.T) {
	g := gin.New()
	mount(g, tripsOpts(), resource.Routes{})

	for _, tm := range []string{"12:00", "07:30", "09:15"} {
		body := fmt.Sprintf(`{"time":%q,"price":10,"route":"A-B","driverName":"N","driverPhone":"1"}`, tm)
		w := do(t, g, http.MethodPost, "/api/trips", body)
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(t, g, http.MethodGet, "/api/trips", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out []entities.Trip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Len(t, out, 3)
	require.Equal(t, "07:30", *out[0].Time)
	require.Equal(t, "09:15", *out[1].Time)
	require.Equal(t, "12:00", *out[2].Time)
}

func TestTripMissingPriceRejected(t *testing.T) {
	g := gin.New()
	mount(g, tripsOpts(), resource.Routes{})

	w := do(t, g, http.MethodPost, "/api/trips", `{"time":"07:30","route":"A-B","driverName":"N","driverPhone":"1"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "price")

	// nothing persisted
	w = do(t, g, http.MethodGet, "/api/trips", "")
	require.Equal(t, http.StatusOK, w.Code)
	var out []entities.Trip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.Empty(t, out)
}

func TestNonNumericPriceRejected(t *testing.T) {
	g := gin.New()
	mount(g, productsOpts(), resource.Routes{})

	w := do(t, g, http.MethodPost, "/api/products", `{"storeId":"s1","name":"X","price":"cheap","category":"c"}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEmptyStringsPassValidation(t *testing.T) {
	g := gin.New()
	mount(g, storesOpts(), resource.Routes{})

	w := do(t, g, http.MethodPost, "/api/stores", `{"name":"","category":"","phone":"","whatsapp":""}`)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUnknownFieldsIgnored(t *testing.T) {
	g := gin.New()
	mount(g, storesOpts(), resource.Routes{})

	w := do(t, g, http.MethodPost, "/api/stores", `{"name":"A","category":"c","phone":"1","whatsapp":"1","bogus":42}`)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestNewsStampsDateAndCreatedAt(t *testing.T) {
	g := gin.New()
	mount(g, newsOpts(), resource.Routes{})

	w := do(t, g, http.MethodPost, "/api/news", `{"title":"T","category":"c","content":"body","date":"client-supplied"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var n entities.News
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &n))
	require.NotEmpty(t, n.CreatedAt)
	require.NotNil(t, n.Date)
	require.Equal(t, n.CreatedAt, *n.Date, "date is server-stamped, never client-supplied")
}

type allowToken struct{}

func (allowToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = map[string]interface{}{"sub": "user1", "email": "user@example.com"}
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

type fakeVerifier struct{}

func (fakeVerifier) Verify(ctx context.Context, raw string) (middleware.Token, error) {
	if raw == "goodtoken" {
		return allowToken{}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func TestGuardedWrites(t *testing.T) {
	g := gin.New()
	mount(g, storesOpts(), resource.Routes{}, middleware.AuthMiddleware(fakeVerifier{}))

	// reads stay open
	w := do(t, g, http.MethodGet, "/api/stores", "")
	require.Equal(t, http.StatusOK, w.Code)

	// writes need a valid bearer token
	w = do(t, g, http.MethodPost, "/api/stores", `{"name":"A","category":"c","phone":"1","whatsapp":"1"}`)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/stores", strings.NewReader(`{"name":"A","category":"c","phone":"1","whatsapp":"1"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer goodtoken")
	rw := httptest.NewRecorder()
	g.ServeHTTP(rw, req)
	require.Equal(t, http.StatusOK, rw.Code)
}
