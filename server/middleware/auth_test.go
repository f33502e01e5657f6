package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/stackskills/platform/auth"
	"github.com/stackskills/platform/auth/authctx"
	"github.com/stackskills/platform/auth/token"
	"github.com/stackskills/platform/observability"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestTokens(t *testing.T) *token.Service {
	t.Helper()
	bl := token.NewMemoryBlacklist(time.Minute)
	t.Cleanup(bl.Close)

	svc, err := token.NewService(token.Config{Secret: testSecret}, bl)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func newTestRouter(tokens *token.Service, extra ...gin.HandlerFunc) *gin.Engine {
	return newTestRouterWithMetrics(tokens, nil, extra...)
}

func newTestRouterWithMetrics(tokens *token.Service, metrics *observability.AuthMetrics, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Authenticate(tokens, metrics)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		p, _ := authctx.GetGin(c)
		c.JSON(http.StatusOK, p)
	})
	r.GET("/protected", handlers...)
	return r
}

func errorCode(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		t.Fatalf("unmarshal error body %q: %v", body, err)
	}
	return resp.Error.Code
}

func TestAuthenticateMissingToken(t *testing.T) {
	r := newTestRouter(newTestTokens(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if code := errorCode(t, w.Body.Bytes()); code != "UNAUTHORIZED" {
		t.Errorf("code = %q, want UNAUTHORIZED", code)
	}
}

func TestAuthenticateInvalidToken(t *testing.T) {
	r := newTestRouter(newTestTokens(t))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if code := errorCode(t, w.Body.Bytes()); code != "INVALID_TOKEN" {
		t.Errorf("code = %q, want INVALID_TOKEN", code)
	}
}

func TestAuthenticateRevokedToken(t *testing.T) {
	tokens := newTestTokens(t)
	r := newTestRouter(tokens)

	signed, _ := tokens.Generate(auth.Principal{ID: "user-1", Role: auth.RoleUser})
	if err := tokens.Revoke(context.Background(), signed); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if code := errorCode(t, w.Body.Bytes()); code != "TOKEN_REVOKED" {
		t.Errorf("code = %q, want TOKEN_REVOKED", code)
	}
}

func TestAuthenticateValidBearerToken(t *testing.T) {
	tokens := newTestTokens(t)
	r := newTestRouter(tokens)

	signed, _ := tokens.Generate(auth.Principal{ID: "user-1", Role: auth.RoleUser})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	var p auth.Principal
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal principal: %v", err)
	}
	if p.ID != "user-1" || p.Role != auth.RoleUser {
		t.Errorf("principal = %+v, want user-1/USER", p)
	}
}

func TestAuthenticateCookieFallback(t *testing.T) {
	tokens := newTestTokens(t)
	r := newTestRouter(tokens)

	signed, _ := tokens.Generate(auth.Principal{ID: "user-2", Role: auth.RoleUser})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AuthCookie, Value: signed})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status with auth-token cookie = %d, want 200", w.Code)
	}

	// Admin cookie works the same way.
	adminSigned, _ := tokens.Generate(auth.Principal{ID: "admin-1", Role: auth.RoleAdmin})
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: AdminCookie, Value: adminSigned})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status with admin-token cookie = %d, want 200", w.Code)
	}
}

func TestAuthenticateMalformedHeaderIgnoresCookie(t *testing.T) {
	tokens := newTestTokens(t)
	r := newTestRouter(tokens)

	signed, _ := tokens.Generate(auth.Principal{ID: "user-1", Role: auth.RoleUser})

	// A present but malformed Authorization header fails outright; the
	// cookie is not consulted.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token "+signed)
	req.AddCookie(&http.Cookie{Name: AuthCookie, Value: signed})
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestRequireRole(t *testing.T) {
	tokens := newTestTokens(t)
	r := newTestRouter(tokens, RequireRole(auth.RoleAdmin))

	userToken, _ := tokens.Generate(auth.Principal{ID: "user-1", Role: auth.RoleUser})
	adminToken, _ := tokens.Generate(auth.Principal{ID: "admin-1", Role: auth.RoleAdmin})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusForbidden {
		t.Errorf("USER against admin route: status = %d, want 403", w.Code)
	}
	if code := errorCode(t, w.Body.Bytes()); code != "FORBIDDEN" {
		t.Errorf("code = %q, want FORBIDDEN", code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("ADMIN against admin route: status = %d, want 200", w.Code)
	}
}

func TestAuthenticateCountsVerificationOutcomes(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = provider.Shutdown(context.Background()) }()

	metrics, err := observability.NewAuthMetrics(provider.Meter("middleware-test"))
	if err != nil {
		t.Fatalf("NewAuthMetrics: %v", err)
	}

	tokens := newTestTokens(t)
	r := newTestRouterWithMetrics(tokens, metrics)

	signed, _ := tokens.Generate(auth.Principal{ID: "user-1", Role: auth.RoleUser})
	revoked, _ := tokens.Generate(auth.Principal{ID: "user-2", Role: auth.RoleUser})
	if err := tokens.Revoke(context.Background(), revoked); err != nil {
		t.Fatalf("Revoke: %v", err)
	}

	for _, bearer := range []string{signed, "garbage", revoked} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set("Authorization", "Bearer "+bearer)
		r.ServeHTTP(w, req)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("Collect: %v", err)
	}

	counts := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "auth.token.verify.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("auth.token.verify.total has data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				result, _ := dp.Attributes.Value(attribute.Key("result"))
				counts[result.AsString()] += dp.Value
			}
		}
	}

	want := map[string]int64{
		observability.TokenValid:   1,
		observability.TokenInvalid: 1,
		observability.TokenRevoked: 1,
	}
	for result, n := range want {
		if counts[result] != n {
			t.Errorf("%s verifications = %d, want %d (all: %v)", result, counts[result], n, counts)
		}
	}
}
