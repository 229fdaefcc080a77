package transport

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/amo-tech-ai/fashionos100-sub001/internal/config"
)

var testSecret = []byte("test-signing-secret")

func signHS256(t *testing.T, secret []byte, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("SignedString: %v", err)
	}
	return s
}

// echoSubject is a downstream handler that reports the authenticated
// subject claim.
func echoSubject() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFrom(r.Context())
		w.Write([]byte(claimString(claims, "sub")))
	})
}

func authRequest(t *testing.T, mw func(http.Handler) http.Handler, header string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("GET", "/wizard/abc", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	mw(echoSubject()).ServeHTTP(w, req)
	return w
}

func TestJWTAuthenticator_validToken(t *testing.T) {
	mw := JWTAuthenticator(config.IdentityConfig{}, testSecret)
	token := signHS256(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := authRequest(t, mw, "Bearer "+token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if w.Body.String() != "user-1" {
		t.Errorf("subject = %q, want user-1", w.Body.String())
	}
}

func TestJWTAuthenticator_missingHeader(t *testing.T) {
	mw := JWTAuthenticator(config.IdentityConfig{}, testSecret)

	w := authRequest(t, mw, "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestJWTAuthenticator_malformedHeader(t *testing.T) {
	mw := JWTAuthenticator(config.IdentityConfig{}, testSecret)

	w := authRequest(t, mw, "Token abc")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestJWTAuthenticator_expiredToken(t *testing.T) {
	mw := JWTAuthenticator(config.IdentityConfig{}, testSecret)
	token := signHS256(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	w := authRequest(t, mw, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestJWTAuthenticator_missingExpiry(t *testing.T) {
	mw := JWTAuthenticator(config.IdentityConfig{}, testSecret)
	token := signHS256(t, testSecret, jwt.MapClaims{"sub": "user-1"})

	w := authRequest(t, mw, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 when exp is absent", w.Code)
	}
}

func TestJWTAuthenticator_wrongSecret(t *testing.T) {
	mw := JWTAuthenticator(config.IdentityConfig{}, testSecret)
	token := signHS256(t, []byte("other-secret"), jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := authRequest(t, mw, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestJWTAuthenticator_missingSubject(t *testing.T) {
	mw := JWTAuthenticator(config.IdentityConfig{}, testSecret)
	token := signHS256(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	w := authRequest(t, mw, "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401 without sub", w.Code)
	}
}

func TestJWTAuthenticator_issuerAndAudience(t *testing.T) {
	cfg := config.IdentityConfig{Issuer: "https://id.fashionos.app", Audience: "wizard"}
	mw := JWTAuthenticator(cfg, testSecret)

	good := signHS256(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"iss": "https://id.fashionos.app",
		"aud": "wizard",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if w := authRequest(t, mw, "Bearer "+good); w.Code != http.StatusOK {
		t.Errorf("valid issuer/audience: status = %d, want 200", w.Code)
	}

	badIssuer := signHS256(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"iss": "https://evil.example.com",
		"aud": "wizard",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	if w := authRequest(t, mw, "Bearer "+badIssuer); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong issuer: status = %d, want 401", w.Code)
	}
}

func TestDevAuthenticator_trustsSubjectHeader(t *testing.T) {
	mw := JWTAuthenticator(config.IdentityConfig{}, nil)

	req := httptest.NewRequest("GET", "/wizard/abc", nil)
	req.Header.Set("X-Subject-Id", "dev-user")
	w := httptest.NewRecorder()
	mw(echoSubject()).ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.String() != "dev-user" {
		t.Errorf("subject = %q, want dev-user", w.Body.String())
	}
}

func TestDevAuthenticator_rejectsMissingHeader(t *testing.T) {
	mw := JWTAuthenticator(config.IdentityConfig{}, nil)

	req := httptest.NewRequest("GET", "/wizard/abc", nil)
	w := httptest.NewRecorder()
	mw(echoSubject()).ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
