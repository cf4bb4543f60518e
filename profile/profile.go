// Package profile manages customer profiles and the rental-preferences
// flow. A profile row is created lazily on the first profile-completing
// action.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"nonact/middleware"
	"nonact/models"
	"nonact/store"
	"nonact/utils"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	Store    store.Store
	validate *validator.Validate
}

func NewHandler(s store.Store) *Handler {
	return &Handler{Store: s, validate: validator.New()}
}

// Get handles GET /api/profile: session identity plus the profile row, if
// one exists yet.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := utils.M{
		"userid": userID,
		"email":  middleware.Email(r),
	}

	var prof models.CustomerProfile
	err := h.Store.SelectOne(ctx, store.TableProfiles, store.Filter{"userid": userID}, &prof)
	switch {
	case err == nil:
		resp["profile"] = prof
	case errors.Is(err, store.ErrNotFound):
		resp["profile"] = nil
	default:
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch profile")
		return
	}

	var interests []models.UserInterest
	if err := h.Store.Select(ctx, store.TableInterests, store.Filter{"userid": userID}, nil, &interests); err == nil {
		names := make([]string, 0, len(interests))
		for _, in := range interests {
			names = append(names, in.Interest)
		}
		resp["interests"] = names
	}

	utils.RespondWithJSON(w, http.StatusOK, resp)
}

type preferencesPayload struct {
	DisplayName    string   `json:"nickname" validate:"required"`
	Birthdate      string   `json:"birthdate" validate:"required"`
	Gender         string   `json:"gender" validate:"required"`
	Location       string   `json:"location" validate:"required"`
	Interests      []string `json:"interests" validate:"min=1"`
	UsagePurposes  []string `json:"usagePurposes" validate:"min=1"`
	AdditionalInfo string   `json:"additionalInfo"`
}

// SavePreferences handles PUT /api/profile/preferences: upsert the profile
// row, then replace the interest and purpose rows wholesale, the same write
// pattern the rental flow has always used.
func (h *Handler) SavePreferences(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := middleware.UserID(r)

	var payload preferencesPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "全ての必須項目を入力してください")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	patch := store.Patch{
		"display_name": payload.DisplayName,
		"birthdate":    payload.Birthdate,
		"gender":       payload.Gender,
		"location":     payload.Location,
		"updated_at":   time.Now(),
	}
	matched, err := h.Store.Update(ctx, store.TableProfiles, store.Filter{"userid": userID}, patch)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save profile")
		return
	}
	if matched == 0 {
		prof := models.CustomerProfile{
			UserID:      userID,
			DisplayName: payload.DisplayName,
			Birthdate:   payload.Birthdate,
			Gender:      payload.Gender,
			Location:    payload.Location,
			UpdatedAt:   time.Now(),
		}
		if err := h.Store.Insert(ctx, store.TableProfiles, prof); err != nil {
			utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save profile")
			return
		}
	}

	if _, err := h.Store.Delete(ctx, store.TableInterests, store.Filter{"userid": userID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save interests")
		return
	}
	interests := make([]any, 0, len(payload.Interests))
	for _, in := range payload.Interests {
		interests = append(interests, models.UserInterest{UserID: userID, Interest: in})
	}
	if err := h.Store.Insert(ctx, store.TableInterests, interests...); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save interests")
		return
	}

	if _, err := h.Store.Delete(ctx, store.TablePurposes, store.Filter{"userid": userID}); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save purposes")
		return
	}
	purposes := make([]any, 0, len(payload.UsagePurposes))
	for _, p := range payload.UsagePurposes {
		purposes = append(purposes, models.UserPurpose{
			UserID:         userID,
			Purpose:        p,
			AdditionalInfo: payload.AdditionalInfo,
		})
	}
	if err := h.Store.Insert(ctx, store.TablePurposes, purposes...); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to save purposes")
		return
	}

	utils.SendResponse(w, http.StatusOK, nil, "プロフィールを保存しました", nil)
}
