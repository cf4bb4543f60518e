// Package admin exposes the staff moderation surface. Every route here is
// behind the admin gate; mutations invalidate the public listing cache and
// notify live listeners.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"nonact/live"
	"nonact/models"
	"nonact/rdx"
	"nonact/staff"
	"nonact/store"
	"nonact/utils"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	Store    store.Store
	Cache    *rdx.Cache
	Hub      *live.Hub
	validate *validator.Validate
}

func NewHandler(s store.Store, cache *rdx.Cache, hub *live.Hub) *Handler {
	return &Handler{Store: s, Cache: cache, Hub: hub, validate: validator.New()}
}

// ListStaff handles GET /api/admin/staff: every staff row regardless of
// availability, newest first.
func (h *Handler) ListStaff(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var all []models.Staff
	err := h.Store.Select(ctx, store.TableStaff, store.Filter{}, &store.Order{Field: "created_at", Desc: true}, &all)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if all == nil {
		all = []models.Staff{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"staff": all})
}

type availabilityPayload struct {
	IsAvailable bool `json:"isAvailable"`
}

// ToggleAvailability handles PATCH /api/admin/staff/:id/availability. Only
// the availability flag is written; a failed update leaves the row exactly
// as it was and reports the stored state back.
func (h *Handler) ToggleAvailability(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var payload availabilityPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	matched, err := h.Store.Update(ctx, store.TableStaff,
		store.Filter{"id": id},
		store.Patch{"is_available": payload.IsAvailable},
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "更新に失敗しました")
		return
	}
	if matched == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "staff not found")
		return
	}

	var updated models.Staff
	if err := h.Store.SelectOne(ctx, store.TableStaff, store.Filter{"id": id}, &updated); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	staff.InvalidateListing(ctx, h.Cache)
	if h.Hub != nil {
		h.Hub.BroadcastAvailability(updated.ID, updated.IsAvailable)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "staff": updated})
}

type staffPayload struct {
	Name        string   `json:"name" validate:"required"`
	Nickname    string   `json:"nickname" validate:"required"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Age         int      `json:"age" validate:"omitempty,gte=18,lte=99"`
	Height      int      `json:"height" validate:"omitempty,gte=100,lte=250"`
	Gender      string   `json:"gender"`
	Prefecture  string   `json:"prefecture"`
	Category    string   `json:"category" validate:"required,oneof=fresh regular special premium"`
	MainTitle   string   `json:"mainTitle"`
	Tags        []string `json:"tags"`
	TagsText    string   `json:"tagsText"`
	Bio         string   `json:"bio"`
	Hobby       string   `json:"hobby"`
	Specialty   string   `json:"specialty"`
	ImageURL    string   `json:"imageUrl"`
	HourlyRate  int      `json:"hourlyRate" validate:"gte=0"`
	IsAvailable bool     `json:"isAvailable"`
}

// tags returns the tag list, preferring the comma-separated form fed by the
// admin panel's free-text field.
func (p *staffPayload) tags() []string {
	if p.TagsText != "" {
		return utils.SplitTags(p.TagsText)
	}
	if p.Tags == nil {
		return []string{}
	}
	return p.Tags
}

// Save handles PUT /api/admin/staff/:id: full overwrite of the editable
// fields.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")

	var payload staffPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "入力内容に不備があります")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	matched, err := h.Store.Update(ctx, store.TableStaff, store.Filter{"id": id}, store.Patch{
		"name":         payload.Name,
		"nickname":     payload.Nickname,
		"email":        payload.Email,
		"age":          payload.Age,
		"height":       payload.Height,
		"gender":       payload.Gender,
		"prefecture":   payload.Prefecture,
		"category":     payload.Category,
		"mainTitle":    payload.MainTitle,
		"tags":         payload.tags(),
		"bio":          payload.Bio,
		"hobby":        payload.Hobby,
		"specialty":    payload.Specialty,
		"image_url":    payload.ImageURL,
		"hourly_rate":  payload.HourlyRate,
		"is_available": payload.IsAvailable,
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "保存に失敗しました")
		return
	}
	if matched == 0 {
		utils.RespondWithError(w, http.StatusNotFound, "staff not found")
		return
	}

	var updated models.Staff
	if err := h.Store.SelectOne(ctx, store.TableStaff, store.Filter{"id": id}, &updated); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	staff.InvalidateListing(ctx, h.Cache)
	if h.Hub != nil {
		h.Hub.BroadcastAvailability(updated.ID, updated.IsAvailable)
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"success": true, "staff": updated})
}

// Create handles POST /api/admin/staff. The response carries the stored
// row, re-read after insert, so the caller renders what the database
// actually holds.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload staffPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "入力内容に不備があります")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	s := models.Staff{
		ID:          "s" + utils.GenerateRandomDigitString(10),
		Name:        payload.Name,
		Nickname:    payload.Nickname,
		Email:       payload.Email,
		Age:         payload.Age,
		Height:      payload.Height,
		Gender:      payload.Gender,
		Prefecture:  payload.Prefecture,
		Category:    payload.Category,
		MainTitle:   payload.MainTitle,
		Tags:        payload.tags(),
		Bio:         payload.Bio,
		Hobby:       payload.Hobby,
		Specialty:   payload.Specialty,
		ImageURL:    payload.ImageURL,
		HourlyRate:  payload.HourlyRate,
		IsAvailable: payload.IsAvailable,
		CreatedAt:   time.Now(),
	}

	if err := h.Store.Insert(ctx, store.TableStaff, s); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "作成に失敗しました")
		return
	}

	var stored models.Staff
	if err := h.Store.SelectOne(ctx, store.TableStaff, store.Filter{"id": s.ID}, &stored); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	staff.InvalidateListing(ctx, h.Cache)
	if h.Hub != nil && stored.IsAvailable {
		h.Hub.BroadcastAvailability(stored.ID, true)
	}

	utils.RespondWithJSON(w, http.StatusCreated, utils.M{"success": true, "staff": stored})
}
