package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"betsafe-ai/internal/session"
)

type contextKey string

const SessionIDKey contextKey = "session_id"

const SessionCookieName = "betsafe_session"

// Sessions binds each browser to a server-side session through a signed
// cookie. The cookie carries only the session ID, never the credential.
type Sessions struct {
	Secret []byte
	store  *session.Store
	ttl    time.Duration
	secure bool
}

func NewSessions(store *session.Store, secret string, ttl time.Duration, secure bool) *Sessions {
	return &Sessions{
		Secret: []byte(secret),
		store:  store,
		ttl:    ttl,
		secure: secure,
	}
}

// GenerateToken creates a JWT for the session that expires with the idle TTL
func (s *Sessions) GenerateToken(id uuid.UUID) (string, error) {
	claims := jwt.MapClaims{
		"sid": id.String(),
		"exp": time.Now().Add(s.ttl).Unix(),
		"iat": time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.Secret)
}

// ParseToken verifies the signature and expiry and returns the session ID.
func (s *Sessions) ParseToken(tokenStr string) (uuid.UUID, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.Secret, nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	sid, ok := claims["sid"].(string)
	if !ok {
		return uuid.Nil, jwt.ErrTokenInvalidClaims
	}

	return uuid.Parse(sid)
}

// Middleware resolves the session from the cookie, creating a fresh one when
// the cookie is missing, tampered with, expired or unknown to this process.
func (s *Sessions) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.Nil
		if c, err := r.Cookie(SessionCookieName); err == nil {
			if parsed, err := s.ParseToken(c.Value); err == nil && s.store.Touch(parsed) {
				id = parsed
			}
		}
		if id == uuid.Nil {
			id = s.store.Create()
		}

		// Reissue on every request so the cookie slides with the idle TTL.
		token, err := s.GenerateToken(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to issue session", r)
			return
		}
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})

		ctx := context.WithValue(r.Context(), SessionIDKey, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetSessionID extracts the session ID from request context
func GetSessionID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(SessionIDKey).(uuid.UUID)
	return id
}
