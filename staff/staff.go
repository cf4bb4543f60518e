// Package staff serves the public listing and detail views. Only available
// staff are visible here; the admin panel sees everything.
package staff

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"nonact/models"
	"nonact/rdx"
	"nonact/store"
	"nonact/utils"

	"github.com/julienschmidt/httprouter"
)

const (
	listingCacheKey = "staff:listing"
	listingCacheTTL = 60 * time.Second
)

type Handler struct {
	Store store.Store
	Cache *rdx.Cache
}

// List handles GET /api/staff: available staff only, newest first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if h.Cache != nil {
		if cached, err := h.Cache.Get(ctx, listingCacheKey); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(cached))
			return
		} else if !rdx.IsMiss(err) {
			log.Printf("listing cache read failed: %v", err)
		}
	}

	var staff []models.Staff
	err := h.Store.Select(ctx, store.TableStaff,
		store.Filter{"is_available": true},
		&store.Order{Field: "created_at", Desc: true},
		&staff,
	)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch staff")
		return
	}
	if staff == nil {
		staff = []models.Staff{}
	}

	body, err := json.Marshal(utils.M{"staff": staff})
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to encode staff")
		return
	}

	if h.Cache != nil {
		if err := h.Cache.Set(ctx, listingCacheKey, string(body), listingCacheTTL); err != nil {
			log.Printf("listing cache write failed: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(body)
}

// Get handles GET /api/staff/:id. Unavailable staff are indistinguishable
// from absent ones.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("id")
	if id == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "missing id")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var s models.Staff
	err := h.Store.SelectOne(ctx, store.TableStaff, store.Filter{"id": id, "is_available": true}, &s)
	if err == store.ErrNotFound {
		utils.RespondWithError(w, http.StatusNotFound, "staff not found")
		return
	}
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Failed to fetch staff")
		return
	}

	utils.RespondWithJSON(w, http.StatusOK, utils.M{"staff": s})
}

// InvalidateListing drops the cached public listing. Called after any admin
// mutation.
func InvalidateListing(ctx context.Context, cache *rdx.Cache) {
	if cache == nil {
		return
	}
	if err := cache.Del(ctx, listingCacheKey); err != nil {
		log.Printf("listing cache invalidation failed: %v", err)
	}
}
