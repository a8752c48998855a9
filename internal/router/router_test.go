package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bizdir/internal/cache"
	"bizdir/internal/config"
	"bizdir/internal/logger"
	"bizdir/internal/middleware"
	"bizdir/internal/models"
	"bizdir/internal/testutil"
	"bizdir/internal/validator"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Init("test")
	validator.Register()
	config.Get().JWTSecret = "test-secret"
}

type apiClient struct {
	t      *testing.T
	engine *gin.Engine
}

func newAPI(t *testing.T, db *gorm.DB) *apiClient {
	t.Helper()
	return &apiClient{t: t, engine: New(Deps{
		DB:            db,
		Cache:         cache.NewVersioned(cache.NewMemoryClient(), time.Minute, nil),
		MetricsAPIKey: "metrics-key",
	})}
}

func (a *apiClient) do(method, path, token, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	a.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)

	var result map[string]interface{}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			a.t.Fatalf("failed to parse response: %v\nbody: %s", err, rec.Body.String())
		}
	}
	return rec, result
}

func tokenFor(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := middleware.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("expected %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}

func TestModerationFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	api := newAPI(t, db)

	owner := testutil.CreateTestUserWithRole(t, db, models.UserRoleBusinessOwner)
	admin := testutil.CreateTestAdmin(t, db)
	ownerToken, adminToken := tokenFor(t, owner), tokenFor(t, admin)

	rec, body := api.do("POST", "/api/v1/businesses", ownerToken,
		`{"name":"Kafe Sheshi","category":"Cafe","city":"Prishtinë","latitude":42.66,"longitude":21.16}`)
	expectStatus(t, rec, http.StatusCreated)
	id := body["business"].(map[string]interface{})["id"].(string)

	// Pending listings are invisible to the public.
	rec, _ = api.do("GET", "/api/v1/businesses/"+id, "", "")
	expectStatus(t, rec, http.StatusNotFound)

	rec, _ = api.do("POST", "/api/v1/admin/businesses/"+id+"/approve", ownerToken, "")
	expectStatus(t, rec, http.StatusForbidden)

	rec, _ = api.do("POST", "/api/v1/admin/businesses/"+id+"/approve", adminToken, "")
	expectStatus(t, rec, http.StatusOK)

	rec, body = api.do("GET", "/api/v1/businesses/search?locations=pristina&lat=42.66&lng=21.16&radius_km=5", "", "")
	expectStatus(t, rec, http.StatusOK)
	if body["total_items"] != float64(1) {
		t.Fatalf("expected the approved listing in search, got %v", body)
	}

	rec, body = api.do("GET", "/api/v1/cities", "", "")
	expectStatus(t, rec, http.StatusOK)
	if cities := body["cities"].([]interface{}); len(cities) != 1 || cities[0] != "Prishtinë" {
		t.Fatalf("expected [Prishtinë], got %v", cities)
	}

	rec, body = api.do("POST", "/api/v1/admin/businesses/"+id+"/suspend", adminToken, `{"reason":"  fake listing "}`)
	expectStatus(t, rec, http.StatusOK)
	if reason := body["business"].(map[string]interface{})["suspension_reason"]; reason != "fake listing" {
		t.Errorf("expected trimmed reason, got %v", reason)
	}

	rec, body = api.do("POST", "/api/v1/admin/businesses/"+id+"/suspend", adminToken, "")
	expectStatus(t, rec, http.StatusConflict)

	rec, body = api.do("GET", "/api/v1/businesses/search", "", "")
	expectStatus(t, rec, http.StatusOK)
	if body["total_items"] != float64(0) {
		t.Errorf("expected suspended listing hidden, got %v", body["total_items"])
	}

	rec, body = api.do("GET", "/api/v1/cities", "", "")
	expectStatus(t, rec, http.StatusOK)
	if cities := body["cities"].([]interface{}); len(cities) != 0 {
		t.Errorf("expected city list invalidated, got %v", cities)
	}

	rec, body = api.do("GET", "/api/v1/admin/audit-logs?action=BUSINESS_SUSPENDED&entity_id="+id, adminToken, "")
	expectStatus(t, rec, http.StatusOK)
	if body["total_items"] != float64(1) {
		t.Fatalf("expected one audit entry, got %v", body["total_items"])
	}
	entry := body["data"].([]interface{})[0].(map[string]interface{})
	if entry["actor_id"] != admin.ID || entry["target_user_id"] != owner.ID || entry["ip_address"] == "" {
		t.Errorf("unexpected audit entry %v", entry)
	}

	rec, _ = api.do("POST", "/api/v1/admin/businesses/"+id+"/approve", adminToken, "")
	expectStatus(t, rec, http.StatusOK)

	rec, _ = api.do("DELETE", "/api/v1/businesses/"+id, ownerToken, "")
	expectStatus(t, rec, http.StatusOK)

	rec, _ = api.do("GET", "/api/v1/businesses/"+id, "", "")
	expectStatus(t, rec, http.StatusNotFound)
}

func TestAuthFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	api := newAPI(t, db)

	rec, body := api.do("POST", "/api/v1/auth/register", "", `{"email":"Reader@Example.com","password":"password123"}`)
	expectStatus(t, rec, http.StatusCreated)
	refresh := body["refresh_token"].(string)
	access := body["access_token"].(string)

	rec, _ = api.do("GET", "/api/v1/profile", access, "")
	expectStatus(t, rec, http.StatusOK)

	rec, body = api.do("POST", "/api/v1/auth/refresh", "", `{"refresh_token":"`+refresh+`"}`)
	expectStatus(t, rec, http.StatusOK)
	rotated := body["refresh_token"].(string)

	if rotated != refresh {
		rec, _ = api.do("POST", "/api/v1/auth/refresh", "", `{"refresh_token":"`+refresh+`"}`)
		expectStatus(t, rec, http.StatusUnauthorized)
	}

	rec, _ = api.do("POST", "/api/v1/auth/login", "", `{"email":"reader@example.com","password":"password123"}`)
	expectStatus(t, rec, http.StatusOK)

	rec, _ = api.do("GET", "/api/v1/admin/users", access, "")
	expectStatus(t, rec, http.StatusForbidden)

	rec, _ = api.do("GET", "/api/v1/profile", "", "")
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestRecommendationsFallback(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	api := newAPI(t, db)

	owner := testutil.CreateTestUser(t, db)
	newcomer := testutil.CreateTestUser(t, db)
	testutil.CreateTestBusiness(t, db, owner.ID)
	testutil.CreateTestBusiness(t, db, owner.ID, testutil.WithStatus(models.BusinessStatusPending))

	rec, body := api.do("GET", "/api/v1/businesses/recommendations", tokenFor(t, newcomer), "")
	expectStatus(t, rec, http.StatusOK)
	if list := body["businesses"].([]interface{}); len(list) != 1 {
		t.Errorf("expected generic recommendations, got %d", len(list))
	}

	rec, _ = api.do("GET", "/api/v1/businesses/recommendations", "not-a-token", "")
	expectStatus(t, rec, http.StatusUnauthorized)
}

func TestPromotionFlow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	api := newAPI(t, db)

	owner := testutil.CreateTestUser(t, db)
	b := testutil.CreateTestBusiness(t, db, owner.ID)
	token := tokenFor(t, owner)

	starts := time.Now().Add(-time.Hour).UTC().Format(time.RFC3339)
	ends := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)

	rec, _ := api.do("POST", "/api/v1/businesses/"+b.ID+"/promotions", token,
		`{"title":"Lunch","original_price":10,"discounted_price":12,"starts_at":"`+starts+`","ends_at":"`+ends+`"}`)
	expectStatus(t, rec, http.StatusBadRequest)

	rec, body := api.do("POST", "/api/v1/businesses/"+b.ID+"/promotions", token,
		`{"title":"Lunch","original_price":8,"discounted_price":6,"starts_at":"`+starts+`","ends_at":"`+ends+`"}`)
	expectStatus(t, rec, http.StatusCreated)
	if pct := body["promotion"].(map[string]interface{})["discount_percent"]; pct != float64(25) {
		t.Errorf("expected 25, got %v", pct)
	}

	rec, body = api.do("GET", "/api/v1/promotions", "", "")
	expectStatus(t, rec, http.StatusOK)
	if list := body["promotions"].([]interface{}); len(list) != 1 {
		t.Errorf("expected 1 active promotion, got %d", len(list))
	}
}

func TestOperationalEndpoints(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	api := newAPI(t, db)

	rec, _ := api.do("GET", "/api/health", "", "")
	expectStatus(t, rec, http.StatusOK)

	rec, _ = api.do("GET", "/metrics", "", "")
	expectStatus(t, rec, http.StatusUnauthorized)

	req := httptest.NewRequest("GET", "/metrics", http.NoBody)
	req.Header.Set("X-API-Key", "metrics-key")
	rec = httptest.NewRecorder()
	api.engine.ServeHTTP(rec, req)
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), "bizdir_http_requests_total") {
		t.Error("expected HTTP metrics in exposition")
	}

	rec, _ = api.do("GET", "/swagger/doc.json", "", "")
	expectStatus(t, rec, http.StatusOK)
	if !strings.Contains(rec.Body.String(), `"/businesses/search"`) || !strings.Contains(rec.Body.String(), `"basePath": "/api/v1"`) {
		t.Error("expected the generated API description")
	}

	rec, _ = api.do("POST", "/api/v1/newsletter/subscribe", "", `{"email":"news@example.com"}`)
	expectStatus(t, rec, http.StatusOK)
}
