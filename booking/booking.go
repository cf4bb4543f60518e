// Package booking accepts rental booking requests. A booking is created
// with status "pending"; later transitions are operator-driven and outside
// this service.
package booking

import (
	"context"
	"encoding/json"
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

type bookingPayload struct {
	StaffID       string                 `json:"staffId" validate:"required"`
	AltStaffID    string                 `json:"altStaffId"`
	Slots         []models.SlotCandidate `json:"slots" validate:"min=1,max=3"`
	Duration      int                    `json:"duration" validate:"gte=1,lte=4"`
	LocationTier  string                 `json:"locationTier" validate:"required"`
	PaymentMethod string                 `json:"paymentMethod" validate:"required"`
	Request       string                 `json:"request"`
}

// Create handles POST /api/bookings. All validation happens before any
// store call.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := middleware.UserID(r)

	var payload bookingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "予約内容に不備があります")
		return
	}
	for _, slot := range payload.Slots {
		if slot.Date == "" || slot.Start == "" {
			utils.RespondWithError(w, http.StatusBadRequest, "希望日時を指定してください")
			return
		}
		if _, err := time.Parse("2006-01-02", slot.Date); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "日付の形式が正しくありません")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// The requested staff must exist and be bookable.
	var s models.Staff
	err := h.Store.SelectOne(ctx, store.TableStaff, store.Filter{"id": payload.StaffID, "is_available": true}, &s)
	if err == store.ErrNotFound {
		utils.RespondWithError(w, http.StatusBadRequest, "指定されたスタッフは予約できません")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}

	b := models.Booking{
		ID:            utils.GenerateRandomDigitString(12),
		UserID:        userID,
		StaffID:       payload.StaffID,
		AltStaffID:    payload.AltStaffID,
		Slots:         payload.Slots,
		Duration:      payload.Duration,
		LocationTier:  payload.LocationTier,
		PaymentMethod: payload.PaymentMethod,
		Request:       payload.Request,
		Status:        models.BookingPending,
		CreatedAt:     time.Now(),
	}

	if err := h.Store.Insert(ctx, store.TableBookings, b); err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "予約の処理中にエラーが発生しました。後でもう一度お試しください。")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{
		"success": true,
		"message": "予約が完了しました。確認メールをお送りしました。",
		"booking": b,
	})
}

// ListMine handles GET /api/bookings: the caller's bookings, newest first.
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := middleware.UserID(r)

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var bookings []models.Booking
	err := h.Store.Select(ctx, store.TableBookings,
		store.Filter{"userid": userID},
		&store.Order{Field: "created_at", Desc: true},
		&bookings,
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "db error")
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	utils.RespondWithJSON(w, http.StatusOK, utils.M{"bookings": bookings})
}
