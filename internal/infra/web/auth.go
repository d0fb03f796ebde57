package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"sim-activation-portal/internal/config"
	"sim-activation-portal/internal/domain/model"
	"sim-activation-portal/internal/infra/logging"

	"github.com/golang-jwt/jwt/v5"
)

// ===== Session/JWT primitives =====

type AuthManager struct {
	secret       []byte
	cookieName   string
	cookieDomain string
	secure       bool
	ttl          time.Duration
}

func NewAuthManager(cfg config.SessionConfig) *AuthManager {
	name := cfg.CookieName
	if name == "" {
		name = "session"
	}
	return &AuthManager{
		secret:       []byte(cfg.Secret),
		cookieName:   name,
		cookieDomain: cfg.CookieDomain, // "" keeps the cookie host-only
		secure:       cfg.SecureCookie,
		ttl:          cfg.TTL,
	}
}

type SessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Session is the authenticated caller as read from a valid token.
type Session struct {
	UserID string
	Role   model.Role
}

func (s *Session) IsAdmin() bool { return s != nil && s.Role == model.RoleAdmin }

// Token signs an HS256 session token for userID.
func (a *AuthManager) Token(userID string, role model.Role) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Role: string(role),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			Subject:   userID,
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Mint signs a token and stores it in the session cookie.
func (a *AuthManager) Mint(w http.ResponseWriter, userID string, role model.Role) (string, error) {
	signed, err := a.Token(userID, role)
	if err != nil {
		return "", err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    signed,
		Path:     "/",
		Domain:   a.cookieDomain,
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return signed, nil
}

func (a *AuthManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     a.cookieName,
		Value:    "",
		Path:     "/",
		Domain:   a.cookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

var errMissingToken = errors.New("missing token")

// ParseFromRequest reads the bearer header first, then the session cookie.
func (a *AuthManager) ParseFromRequest(r *http.Request) (*Session, error) {
	if hdr := r.Header.Get("Authorization"); hdr != "" {
		if strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
			return a.parse(strings.TrimSpace(hdr[7:]))
		}
	}
	if c, err := r.Cookie(a.cookieName); err == nil && c.Value != "" {
		return a.parse(c.Value)
	}
	return nil, errMissingToken
}

func (a *AuthManager) parse(tok string) (*Session, error) {
	claims := &SessionClaims{}
	tkn, err := jwt.ParseWithClaims(tok, claims, func(t *jwt.Token) (any, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tkn.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return nil, errors.New("token without subject")
	}
	return &Session{UserID: claims.Subject, Role: model.ParseRole(claims.Role)}, nil
}

type sessionKey struct{}

func sessionFrom(ctx context.Context) *Session {
	s, _ := ctx.Value(sessionKey{}).(*Session)
	return s
}

// OptionalSession attaches the caller's session when a valid token is
// present. Anything else leaves the request anonymous.
func (a *AuthManager) OptionalSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, err := a.ParseFromRequest(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		ctx := context.WithValue(r.Context(), sessionKey{}, s)
		ctx = logging.WithUserID(ctx, s.UserID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin must run after OptionalSession.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !sessionFrom(r.Context()).IsAdmin() {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
