package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func newVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier("0123456789abcdef")
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	return v
}

func TestVerifyRoundTrip(t *testing.T) {
	v := newVerifier(t)
	token, err := v.Sign("user-1", "", time.Hour)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	user, err := v.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if user.ID != "user-1" || user.Role != RoleUser || user.IsAdmin() {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestVerifyRejects(t *testing.T) {
	v := newVerifier(t)
	expired, _ := v.Sign("user-1", RoleUser, -time.Minute)

	other, _ := NewVerifier("fedcba9876543210")
	foreign, _ := other.Sign("user-1", RoleUser, time.Hour)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	unsigned, _ := none.SignedString(jwt.UnsafeAllowNoneSignatureType)

	noSubject, _ := v.Sign("", RoleUser, time.Hour)

	tests := map[string]string{
		"expired":    expired,
		"foreign":    foreign,
		"alg none":   unsigned,
		"no subject": noSubject,
		"garbage":    "not.a.token",
	}
	for name, token := range tests {
		token := token
		t.Run(name, func(t *testing.T) {
			if _, err := v.Verify(token); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestMiddleware(t *testing.T) {
	v := newVerifier(t)
	admin, _ := v.Sign("admin-1", RoleAdmin, time.Hour)
	member, _ := v.Sign("user-1", RoleUser, time.Hour)

	var seen CurrentUser
	handler := Middleware(v)(RequireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})))

	tests := []struct {
		name   string
		header string
		status int
	}{
		{name: "anonymous", status: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", status: http.StatusUnauthorized},
		{name: "member", header: "Bearer " + member, status: http.StatusForbidden},
		{name: "admin", header: "bearer " + admin, status: http.StatusNoContent},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, rec.Code)
			}
		})
	}
	if seen.ID != "admin-1" {
		t.Fatalf("expected admin principal, got %+v", seen)
	}
}
