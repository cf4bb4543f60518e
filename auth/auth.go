// Package auth is the Auth Provider collaborator: account creation,
// password sign-in, session retrieval and sign-out. Sessions are HS256 JWTs
// in the Authorization header; the issued token is also stored in Redis so a
// sign-out invalidates it before its expiry.
package auth

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"nonact/config"
	"nonact/middleware"
	"nonact/models"
	"nonact/rdx"
	"nonact/store"
	"nonact/utils"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const sessionTTL = 12 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("an account with this email already exists")
)

type Provider struct {
	Store store.Store
	Cache *rdx.Cache
	Cfg   *config.Config
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		UserID:       "u" + utils.GenerateRandomString(10),
		Email:        email,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now(),
	}

	if err := p.Store.Insert(ctx, store.TableUsers, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return &user, nil
}

// SignInWithPassword verifies credentials and issues a session token.
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (string, *models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var user models.User
	err := p.Store.SelectOne(ctx, store.TableUsers, store.Filter{"email": email}, &user)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	tokenString, err := p.issueSession(ctx, &user)
	if err != nil {
		return "", nil, err
	}
	return tokenString, &user, nil
}

// issueSession mints the JWT for a verified user and records it as the
// user's live session token.
func (p *Provider) issueSession(ctx context.Context, user *models.User) (string, error) {
	claims := &middleware.Claims{
		Email:  user.Email,
		UserID: user.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(p.Cfg.JwtSecret)
	if err != nil {
		return "", err
	}

	if p.Cache != nil {
		if err := p.Cache.HSet(ctx, middleware.SessionHash, user.UserID, tokenString); err != nil {
			log.Printf("session token cache failed: %v", err)
		}
	}

	if _, err := p.Store.Update(ctx, store.TableUsers,
		store.Filter{"userid": user.UserID},
		store.Patch{"last_login": time.Now()},
	); err != nil {
		log.Printf("last_login update failed: %v", err)
	}

	return tokenString, nil
}

// SignOut removes the stored session token so every subsequent gate check
// for this user fails until the next sign-in.
func (p *Provider) SignOut(ctx context.Context, userID string) error {
	if p.Cache == nil {
		return nil
	}
	return p.Cache.HDel(ctx, middleware.SessionHash, userID)
}
