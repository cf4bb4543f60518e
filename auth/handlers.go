package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nonact/middleware"
	"nonact/utils"

	"github.com/julienschmidt/httprouter"
)

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (p *Provider) SignUpHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input credentials
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if input.Email == "" || len(input.Password) < 8 {
		utils.RespondWithError(w, http.StatusBadRequest, "Email and a password of at least 8 characters are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	user, err := p.SignUp(ctx, input.Email, input.Password)
	if err == ErrEmailTaken {
		utils.RespondWithError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	utils.SendResponse(w, http.StatusCreated, map[string]string{"userid": user.UserID}, "Account created", nil)
}

func (p *Provider) LoginHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var input credentials
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	token, user, err := p.SignInWithPassword(ctx, input.Email, input.Password)
	if err == ErrInvalidCredentials {
		utils.RespondWithError(w, http.StatusUnauthorized, err.Error())
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to sign in")
		return
	}

	utils.SendResponse(w, http.StatusOK, map[string]string{
		"token":  token,
		"userid": user.UserID,
	}, "Login successful", nil)
}

func (p *Provider) LogoutHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := p.SignOut(ctx, userID); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to log out")
		return
	}
	utils.SendResponse(w, http.StatusOK, nil, "Logged out", nil)
}

// SessionHandler returns the caller's session identity; the gate has
// already verified the token is valid and live.
func (p *Provider) SessionHandler(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	utils.SendResponse(w, http.StatusOK, map[string]string{
		"userid": middleware.UserID(r),
		"email":  middleware.Email(r),
	}, "Session active", nil)
}
