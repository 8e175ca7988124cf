package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret-key-for-jwt-signing-0123456789"

func TestGenerateAndParseToken(t *testing.T) {
	token, err := GenerateToken("desk-1", RoleOperator, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.Subject != "desk-1" {
		t.Errorf("Subject = %q, want desk-1", claims.Subject)
	}
	if claims.Role != RoleOperator {
		t.Errorf("Role = %q, want operator", claims.Role)
	}
	if claims.ID == "" {
		t.Error("JTI should not be empty")
	}
	if !claims.Can(PermOSCDispatch) {
		t.Error("operator claims should allow dispatch")
	}

	diff := time.Until(claims.ExpiresAt.Time) - time.Hour
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("expiry off by %v", diff)
	}
}

func TestGenerateToken_DefaultTTL(t *testing.T) {
	token, err := GenerateToken("viewer-1", RoleViewer, testSecret, 0)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	claims, err := ParseToken(token, testSecret)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	diff := time.Until(claims.ExpiresAt.Time) - DefaultTTL
	if diff < -time.Minute || diff > time.Minute {
		t.Errorf("default TTL off by %v", diff)
	}
	if claims.Can(PermOSCDispatch) {
		t.Error("viewer claims should not allow dispatch")
	}
}

func TestGenerateToken_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		subject string
		role    Role
		secret  string
		wantErr error
	}{
		{"empty secret", "a", RoleViewer, "", ErrNoSecret},
		{"empty subject", "", RoleViewer, testSecret, ErrTokenInvalid},
		{"unknown role", "a", Role("admin"), testSecret, ErrUnknownRole},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GenerateToken(tt.subject, tt.role, tt.secret, time.Minute)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("GenerateToken() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// signRaw signs arbitrary claims so malformed tokens can be constructed.
func signRaw(t *testing.T, method jwt.SigningMethod, claims jwt.Claims, key any) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func TestParseToken_Invalid(t *testing.T) {
	now := time.Now()
	valid := func() jwt.RegisteredClaims {
		return jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "desk-1",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		}
	}

	expired := valid()
	expired.ExpiresAt = jwt.NewNumericDate(now.Add(-time.Minute))

	foreign := valid()
	foreign.Issuer = "someone-else"

	noExpiry := valid()
	noExpiry.ExpiresAt = nil

	noSubject := valid()
	noSubject.Subject = ""

	good, err := GenerateToken("desk-1", RoleOperator, testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-valid-jwt"},
		{"empty", ""},
		{"two segments", "abc.def"},
		{"wrong secret", signRaw(t, jwt.SigningMethodHS256, Claims{valid(), RoleOperator}, []byte("other-secret"))},
		{"expired", signRaw(t, jwt.SigningMethodHS256, Claims{expired, RoleOperator}, []byte(testSecret))},
		{"foreign issuer", signRaw(t, jwt.SigningMethodHS256, Claims{foreign, RoleOperator}, []byte(testSecret))},
		{"no expiry", signRaw(t, jwt.SigningMethodHS256, Claims{noExpiry, RoleOperator}, []byte(testSecret))},
		{"no subject", signRaw(t, jwt.SigningMethodHS256, Claims{noSubject, RoleOperator}, []byte(testSecret))},
		{"unknown role", signRaw(t, jwt.SigningMethodHS256, Claims{valid(), Role("admin")}, []byte(testSecret))},
		{"wrong algorithm", signRaw(t, jwt.SigningMethodHS512, Claims{valid(), RoleOperator}, []byte(testSecret))},
		{"alg none", signRaw(t, jwt.SigningMethodNone, Claims{valid(), RoleOperator}, jwt.UnsafeAllowNoneSignatureType)},
		{"truncated", good[:len(good)-10]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseToken(tt.token, testSecret)
			if !errors.Is(err, ErrTokenInvalid) {
				t.Errorf("ParseToken() error = %v, want ErrTokenInvalid", err)
			}
		})
	}
}

func TestParseToken_EmptySecret(t *testing.T) {
	if _, err := ParseToken("a.b.c", ""); !errors.Is(err, ErrNoSecret) {
		t.Errorf("ParseToken() error = %v, want ErrNoSecret", err)
	}
}

func TestClaimsCan_Nil(t *testing.T) {
	var c *Claims
	if c.Can(PermDiagnosticsRead) {
		t.Error("nil claims should grant nothing")
	}
}
