package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"bizdir/internal/config"
	apperrors "bizdir/internal/errors"
	"bizdir/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
	config.Get().JWTSecret = "test-secret"
}

func doRequest(r *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse response body: %v", err)
	}
	return result
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	errObj, ok := parseBody(t, rec)["error"].(map[string]interface{})
	if !ok {
		t.Fatal("expected error object in response")
	}
	code, _ := errObj["code"].(string)
	return code
}

func testUser(role models.UserRole) *models.User {
	u := &models.User{Email: "someone@test.com", Role: role}
	u.ID = "0190a6c8-0000-7000-8000-000000000001"
	return u
}

func bearer(t *testing.T, token string) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestMetricsAuthMiddleware(t *testing.T) {
	tests := []struct {
		name          string
		configuredKey string
		requestKey    string
		wantStatus    int
		wantErrorCode string
	}{
		{"valid_api_key", "secret-metrics-key", "secret-metrics-key", http.StatusOK, ""},
		{"invalid_api_key", "secret-metrics-key", "wrong-key", http.StatusUnauthorized, "INVALID_API_KEY"},
		{"missing_api_key", "secret-metrics-key", "", http.StatusUnauthorized, "INVALID_API_KEY"},
		{"empty_configured_key", "", "any-key", http.StatusServiceUnavailable, "METRICS_NOT_CONFIGURED"},
		{"partial_match_rejected", "secret-metrics-key", "secret-metrics", http.StatusUnauthorized, "INVALID_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/metrics", MetricsAuthMiddleware(tt.configuredKey), func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"status": "ok"})
			})

			headers := map[string]string{}
			if tt.requestKey != "" {
				headers["X-API-Key"] = tt.requestKey
			}
			rec := doRequest(r, http.MethodGet, "/metrics", headers)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantErrorCode != "" {
				if code := errorCode(t, rec); code != tt.wantErrorCode {
					t.Errorf("error code = %q, want %q", code, tt.wantErrorCode)
				}
			}
		})
	}
}

func TestAuthMiddleware(t *testing.T) {
	r := gin.New()
	r.GET("/me", AuthMiddleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id": c.GetString(ContextUserID),
			"role":    c.MustGet(ContextRole),
		})
	})

	access, err := GenerateAccessToken(testUser(models.UserRoleAdmin))
	if err != nil {
		t.Fatalf("failed to generate access token: %v", err)
	}
	refresh, err := GenerateRefreshToken(testUser(models.UserRoleAdmin))
	if err != nil {
		t.Fatalf("failed to generate refresh token: %v", err)
	}

	t.Run("valid_token", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/me", bearer(t, access))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		body := parseBody(t, rec)
		if body["role"] != "Admin" {
			t.Errorf("role = %v, want Admin", body["role"])
		}
	})

	t.Run("missing_header", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/me", nil)
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if code := errorCode(t, rec); code != "UNAUTHORIZED" {
			t.Errorf("code = %q", code)
		}
	})

	t.Run("bad_format", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/me", map[string]string{"Authorization": "Token " + access})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("refresh_token_rejected", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/me", bearer(t, refresh))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		if code := errorCode(t, rec); code != "INVALID_TOKEN" {
			t.Errorf("code = %q", code)
		}
	})

	t.Run("garbage_token", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/me", bearer(t, "not.a.jwt"))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestOptionalAuth(t *testing.T) {
	r := gin.New()
	r.GET("/feed", OptionalAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(ContextUserID)})
	})

	t.Run("anonymous", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/feed", nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if id := parseBody(t, rec)["user_id"]; id != "" {
			t.Errorf("expected anonymous request, got user %v", id)
		}
	})

	t.Run("identified", func(t *testing.T) {
		user := testUser(models.UserRoleUser)
		token, _ := GenerateAccessToken(user)
		rec := doRequest(r, http.MethodGet, "/feed", bearer(t, token))
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if id := parseBody(t, rec)["user_id"]; id != user.ID {
			t.Errorf("user_id = %v, want %s", id, user.ID)
		}
	})

	t.Run("invalid_token_rejected", func(t *testing.T) {
		rec := doRequest(r, http.MethodGet, "/feed", bearer(t, "expired"))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
	})
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AuthMiddleware(), RequireRole(models.UserRoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	tests := []struct {
		name       string
		role       models.UserRole
		wantStatus int
	}{
		{"admin", models.UserRoleAdmin, http.StatusNoContent},
		{"owner", models.UserRoleBusinessOwner, http.StatusForbidden},
		{"user", models.UserRoleUser, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateAccessToken(testUser(tt.role))
			if err != nil {
				t.Fatalf("failed to generate token: %v", err)
			}
			rec := doRequest(r, http.MethodGet, "/admin", bearer(t, token))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}

func TestValidateRefreshToken(t *testing.T) {
	user := testUser(models.UserRoleUser)
	refresh, _ := GenerateRefreshToken(user)
	access, _ := GenerateAccessToken(user)

	claims, err := ValidateRefreshToken(refresh)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("user_id = %s, want %s", claims.UserID, user.ID)
	}

	if _, err := ValidateRefreshToken(access); err == nil {
		t.Error("expected access token to be rejected as refresh token")
	}
}

func TestErrorHandler(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/app", func(c *gin.Context) {
		_ = c.Error(apperrors.ErrBusinessNotFound)
	})
	r.GET("/raw", func(c *gin.Context) {
		_ = c.Error(http.ErrBodyNotAllowed)
	})

	rec := doRequest(r, http.MethodGet, "/app", nil)
	if rec.Code != http.StatusNotFound || errorCode(t, rec) != "BUSINESS_NOT_FOUND" {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(r, http.MethodGet, "/raw", nil)
	if rec.Code != http.StatusInternalServerError || errorCode(t, rec) != "INTERNAL_ERROR" {
		t.Errorf("got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRequestLogging_RequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogging())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := doRequest(r, http.MethodGet, "/ping", nil)
	if rec.Header().Get(requestIDHeader) == "" {
		t.Error("expected generated request id")
	}

	rec = doRequest(r, http.MethodGet, "/ping", map[string]string{requestIDHeader: "abc-123"})
	if got := rec.Header().Get(requestIDHeader); got != "abc-123" {
		t.Errorf("request id = %q, want abc-123", got)
	}
}
