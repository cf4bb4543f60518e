package register

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"nonact/utils"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"
)

type Handler struct {
	Coordinator *Coordinator
	validate    *validator.Validate
}

func NewHandler(c *Coordinator) *Handler {
	return &Handler{Coordinator: c, validate: validator.New()}
}

type registrationPayload struct {
	Name               string `json:"name" validate:"required"`
	Email              string `json:"email" validate:"required,email"`
	Age                int    `json:"age" validate:"omitempty,gte=18,lte=99"`
	Height             int    `json:"height" validate:"omitempty,gte=100,lte=250"`
	Hobbies            string `json:"hobbies"`
	Description        string `json:"description"`
	ProfileImageBase64 string `json:"profileImageBase64"`
}

// Submit handles POST /api/register.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var payload registrationPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "不正なリクエストです")
		return
	}
	if err := h.validate.Struct(payload); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "名前とメールアドレスは必須です")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	result, err := h.Coordinator.Submit(ctx, Input{
		Name:               payload.Name,
		Email:              payload.Email,
		Age:                payload.Age,
		Height:             payload.Height,
		Hobbies:            payload.Hobbies,
		Description:        payload.Description,
		ProfileImageBase64: payload.ProfileImageBase64,
	})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, result.Message)
		return
	}

	resp := utils.M{
		"success": true,
		"message": result.Message,
	}
	switch result.Status {
	case StatusResent:
		resp["resent"] = true
	case StatusSuccess:
		resp["data"] = map[string]string{"email": result.Email}
	}
	utils.RespondWithJSON(w, http.StatusOK, resp)
}

// Confirm handles GET /api/confirm?token=... and responds with a redirect,
// not a JSON body.
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	token := r.URL.Query().Get("token")
	if token == "" {
		redirectError(w, r, "無効なトークンです")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	switch h.Coordinator.Confirm(ctx, token) {
	case ConfirmSuccess:
		http.Redirect(w, r, "/register/complete", http.StatusFound)
	case ConfirmInvalid:
		redirectError(w, r, "無効なトークンまたは期限切れです")
	case ConfirmExpired:
		redirectError(w, r, "確認リンクの期限が切れています")
	default:
		redirectError(w, r, "登録処理中にエラーが発生しました")
	}
}

func redirectError(w http.ResponseWriter, r *http.Request, message string) {
	http.Redirect(w, r, "/register/error?message="+url.QueryEscape(message), http.StatusFound)
}
