package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/segyhp/library-engine/pkg/response"
)

type contextKey string

const userIDKey contextKey = "user_id"

var errMissingToken = errors.New("missing bearer token")

// WithUserID returns a context carrying the authenticated user id
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the authenticated user id, if any
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok && id > 0
}

// Authenticator resolves HS256 bearer tokens to user ids. Accounts live in
// an external identity provider; the token's sub claim is the user id.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// IssueToken signs a token for userID valid for ttl
func (a *Authenticator) IssueToken(userID int64, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(userID, 10),
		"exp": time.Now().Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// ParseToken validates an Authorization header value and returns the user id
func (a *Authenticator) ParseToken(header string) (int64, error) {
	raw := strings.TrimSpace(header)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = strings.TrimSpace(raw[7:])
	} else {
		return 0, errMissingToken
	}
	if raw == "" {
		return 0, errMissingToken
	}

	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("invalid claims")
	}

	return subjectID(claims["sub"])
}

// subjectID accepts the sub claim as a decimal string or a JSON number
func subjectID(sub interface{}) (int64, error) {
	var id int64
	switch v := sub.(type) {
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid sub claim: %w", err)
		}
		id = parsed
	case float64:
		id = int64(v)
	default:
		return 0, errors.New("sub missing in claims")
	}

	if id <= 0 {
		return 0, errors.New("sub must be a positive user id")
	}
	return id, nil
}

// Required rejects requests without a valid bearer token
func (a *Authenticator) Required(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := a.ParseToken(r.Header.Get("Authorization"))
		if err != nil {
			response.Unauthorized(w, "authentication required")
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
	})
}

// Optional attaches the user id when a valid token is present and lets
// anonymous requests through.
func (a *Authenticator) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, err := a.ParseToken(r.Header.Get("Authorization")); err == nil {
			r = r.WithContext(WithUserID(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

// RequireStaff lets through authenticated users whose profile is staff or admin
func RequireStaff(profiles ProfileService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "authentication required")
				return
			}

			staff, err := profiles.IsStaff(r.Context(), userID)
			if err != nil {
				writeError(w, r, err)
				return
			}
			if !staff {
				response.Forbidden(w, "staff only")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
