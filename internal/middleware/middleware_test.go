package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tradeyard/backend/internal/config"
	"github.com/tradeyard/backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testJWTConfig(secret string) *config.JWTConfig {
	return &config.JWTConfig{
		Secret:             secret,
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		Issuer:             "tradeyard",
	}
}

// Helper function to create a test JWT token
func createTestToken(secret, userID, userType, email, subject string, expiry time.Duration) string {
	now := time.Now()
	claims := &Claims{
		UserID:   userID,
		UserType: userType,
		Email:    email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    "tradeyard",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, _ := token.SignedString([]byte(secret))
	return tokenString
}

func TestJWTAuth_ValidToken(t *testing.T) {
	secret := "test-secret-key-for-jwt-testing"
	authenticator := NewJWTAuthenticator(testJWTConfig(secret))

	sellerID := uuid.New()
	token := createTestToken(secret, sellerID.String(), "seller", "test@example.com", "access", 15*time.Minute)

	router := gin.New()
	router.Use(authenticator.JWTAuth())
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":   GetUserIDFromContext(c),
			"user_type": GetUserTypeFromContext(c),
			"email":     GetEmailFromContext(c),
		})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestJWTAuth_MissingToken(t *testing.T) {
	authenticator := NewJWTAuthenticator(testJWTConfig("test-secret"))

	router := gin.New()
	router.Use(authenticator.JWTAuth())
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	authenticator := NewJWTAuthenticator(testJWTConfig("test-secret"))

	router := gin.New()
	router.Use(authenticator.JWTAuth())
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer invalid-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	secret := "test-secret"
	authenticator := NewJWTAuthenticator(testJWTConfig(secret))

	token := createTestToken(secret, uuid.New().String(), "seller", "test@example.com", "access", -1*time.Hour)

	router := gin.New()
	router.Use(authenticator.JWTAuth())
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestJWTAuth_RefreshTokenRejected(t *testing.T) {
	secret := "test-secret"
	authenticator := NewJWTAuthenticator(testJWTConfig(secret))

	// Refresh tokens must not pass the access-token gate
	token := createTestToken(secret, uuid.New().String(), "seller", "test@example.com", "refresh", 7*24*time.Hour)

	router := gin.New()
	router.Use(authenticator.JWTAuth())
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", w.Code)
	}
}

func TestRequireRole_AllowedRole(t *testing.T) {
	secret := "test-secret"
	authenticator := NewJWTAuthenticator(testJWTConfig(secret))
	token := createTestToken(secret, uuid.New().String(), "seller", "test@example.com", "access", 15*time.Minute)

	router := gin.New()
	router.Use(authenticator.JWTAuth())
	router.Use(RequireRole(models.UserTypeSeller))
	router.GET("/seller-only", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/seller-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestRequireRole_DeniedRole(t *testing.T) {
	secret := "test-secret"
	authenticator := NewJWTAuthenticator(testJWTConfig(secret))
	token := createTestToken(secret, uuid.New().String(), "buyer", "test@example.com", "access", 15*time.Minute)

	router := gin.New()
	router.Use(authenticator.JWTAuth())
	router.Use(RequireRole(models.UserTypeSeller))
	router.GET("/seller-only", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/seller-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	secret := "test-secret"
	authenticator := NewJWTAuthenticator(testJWTConfig(secret))

	adminToken := createTestToken(secret, uuid.New().String(), "admin", "admin@example.com", "access", 15*time.Minute)

	router := gin.New()
	router.Use(authenticator.JWTAuth())
	router.Use(RequireAdmin())
	router.GET("/admin-only", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/admin-only", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	sellerToken := createTestToken(secret, uuid.New().String(), "seller", "test@example.com", "access", 15*time.Minute)

	req2 := httptest.NewRequest("GET", "/admin-only", nil)
	req2.Header.Set("Authorization", "Bearer "+sellerToken)
	w2 := httptest.NewRecorder()

	router.ServeHTTP(w2, req2)

	if w2.Code != http.StatusForbidden {
		t.Errorf("Expected status 403, got %d", w2.Code)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name       string
		authHeader string
		wantToken  string
		wantErr    bool
	}{
		{
			name:       "valid bearer token",
			authHeader: "Bearer abc123",
			wantToken:  "abc123",
			wantErr:    false,
		},
		{
			name:       "missing bearer prefix",
			authHeader: "abc123",
			wantToken:  "",
			wantErr:    true,
		},
		{
			name:       "empty header",
			authHeader: "",
			wantToken:  "",
			wantErr:    true,
		},
		{
			name:       "only bearer prefix",
			authHeader: "Bearer ",
			wantToken:  "",
			wantErr:    false,
		},
		{
			name:       "wrong prefix",
			authHeader: "Basic abc123",
			wantToken:  "",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := extractBearerToken(tt.authHeader)
			if (err != nil) != tt.wantErr {
				t.Errorf("extractBearerToken() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if token != tt.wantToken {
				t.Errorf("extractBearerToken() = %v, want %v", token, tt.wantToken)
			}
		})
	}
}

func TestContextHelpers(t *testing.T) {
	secret := "test-secret"
	authenticator := NewJWTAuthenticator(testJWTConfig(secret))

	sellerID := uuid.New()
	token := createTestToken(secret, sellerID.String(), "seller", "seller@example.com", "access", 15*time.Minute)

	router := gin.New()
	router.Use(authenticator.JWTAuth())
	router.GET("/test", func(c *gin.Context) {
		if got := GetUserIDFromContext(c); got != sellerID {
			t.Errorf("Expected userID %s, got %s", sellerID, got)
		}
		if got := GetUserTypeFromContext(c); got != models.UserTypeSeller {
			t.Errorf("Expected userType 'seller', got '%s'", got)
		}
		if got := GetEmailFromContext(c); got != "seller@example.com" {
			t.Errorf("Expected email 'seller@example.com', got '%s'", got)
		}
		if GetClaimsFromContext(c) == nil {
			t.Error("Expected claims to be set")
		}

		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}
}

func TestGetUserIDFromContext_MalformedID(t *testing.T) {
	router := gin.New()
	router.GET("/test", func(c *gin.Context) {
		c.Set(ContextKeyUserID, "not-a-uuid")
		if got := GetUserIDFromContext(c); got != uuid.Nil {
			t.Errorf("Expected uuid.Nil for malformed id, got %s", got)
		}
		c.JSON(http.StatusOK, gin.H{})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
}

func TestRequestID_GeneratedWhenMissing(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": GetRequestIDFromContext(c)})
	})

	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	requestID := w.Header().Get("X-Request-ID")
	if requestID == "" {
		t.Fatal("Request ID should be generated when not provided")
	}
	if len(requestID) != 36 {
		t.Fatalf("Request ID should be UUID format, got length %d", len(requestID))
	}
}

func TestRequestID_PropagatedFromHeader(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"request_id": GetRequestIDFromContext(c)})
	})

	expectedRequestID := "test-request-id-12345"
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("X-Request-ID", expectedRequestID)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if got := w.Header().Get("X-Request-ID"); got != expectedRequestID {
		t.Fatalf("Request ID should be propagated, expected %s, got %s", expectedRequestID, got)
	}
}
