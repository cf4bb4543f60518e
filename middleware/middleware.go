package middleware

import (
	"context"
	"fmt"
	"net/http"

	"nonact/config"
	"nonact/rdx"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Email  string `json:"email"`
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

type ContextKey string

const (
	UserIDKey ContextKey = "userId"
	EmailKey  ContextKey = "email"
)

// SessionHash is the Redis hash holding the live token per user. A token
// absent from the hash is treated as signed out even if the JWT has not
// expired yet.
const SessionHash = "sessions"

// Gate guards handlers behind a live session. Checks run per request; there
// is no caching across requests.
type Gate struct {
	Cfg   *config.Config
	Cache *rdx.Cache
}

func (g *Gate) parseToken(r *http.Request) (*Claims, string, error) {
	tokenString := r.Header.Get("Authorization")
	if len(tokenString) < 8 || tokenString[:7] != "Bearer " {
		return nil, "", fmt.Errorf("invalid token format")
	}
	tokenString = tokenString[7:]

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		return g.Cfg.JwtSecret, nil
	})
	if err != nil || !token.Valid {
		return nil, "", fmt.Errorf("invalid token")
	}
	return claims, tokenString, nil
}

// live reports whether the token is still the stored session token for the
// user, i.e. no sign-out has happened since it was issued.
func (g *Gate) live(ctx context.Context, claims *Claims, token string) bool {
	if g.Cache == nil {
		return true
	}
	stored, err := g.Cache.HGet(ctx, SessionHash, claims.UserID)
	if err != nil {
		return false
	}
	return stored == token
}

func (g *Gate) Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		claims, token, err := g.parseToken(r)
		if err != nil {
			http.Error(w, "Missing or invalid token", http.StatusUnauthorized)
			return
		}
		if !g.live(r.Context(), claims, token) {
			http.Error(w, "Session expired", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
		ctx = context.WithValue(ctx, EmailKey, claims.Email)
		next(w, r.WithContext(ctx), ps)
	}
}

func (g *Gate) OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if claims, token, err := g.parseToken(r); err == nil && g.live(r.Context(), claims, token) {
			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			ctx = context.WithValue(ctx, EmailKey, claims.Email)
			r = r.WithContext(ctx)
		}
		next(w, r, ps)
	}
}

// AdminOnly additionally requires the session email to be on the static
// allow-list.
func (g *Gate) AdminOnly(next httprouter.Handle) httprouter.Handle {
	return g.Authenticate(func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		email, _ := r.Context().Value(EmailKey).(string)
		if !g.Cfg.IsAdmin(email) {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next(w, r, ps)
	})
}

// UserID pulls the authenticated user id out of the request context.
func UserID(r *http.Request) string {
	id, _ := r.Context().Value(UserIDKey).(string)
	return id
}

// Email pulls the authenticated email out of the request context.
func Email(r *http.Request) string {
	email, _ := r.Context().Value(EmailKey).(string)
	return email
}
