package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nonact/models"
	"nonact/store"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingStore refuses updates; everything else passes through.
type failingStore struct {
	*store.Memory
}

func (f *failingStore) Update(ctx context.Context, table string, filter store.Filter, patch store.Patch) (int64, error) {
	return 0, errors.New("db down")
}

func seedStaff(t *testing.T, mem *store.Memory, id string, available bool, created time.Time) models.Staff {
	t.Helper()
	s := models.Staff{
		ID:          id,
		Name:        "佐藤 花子",
		Nickname:    "佐藤",
		Category:    models.CategoryRegular,
		MainTitle:   "座っているだけの人",
		Tags:        []string{"静か"},
		HourlyRate:  3000,
		IsAvailable: available,
		CreatedAt:   created,
	}
	require.NoError(t, mem.Insert(context.Background(), store.TableStaff, s))
	return s
}

func patchAvailability(h *Handler, id string, isAvailable bool) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]any{"isAvailable": isAvailable})
	r := httptest.NewRequest(http.MethodPatch, "/api/admin/staff/"+id+"/availability", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ToggleAvailability(w, r, httprouter.Params{{Key: "id", Value: id}})
	return w
}

func TestToggleAvailabilityIsTargeted(t *testing.T) {
	mem := store.NewMemory()
	seedStaff(t, mem, "s1", false, time.Now())
	h := NewHandler(mem, nil, nil)

	w := patchAvailability(h, "s1", true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.Staff
	require.NoError(t, mem.SelectOne(context.Background(), store.TableStaff, store.Filter{"id": "s1"}, &stored))
	assert.True(t, stored.IsAvailable)
	// everything else untouched
	assert.Equal(t, "佐藤 花子", stored.Name)
	assert.Equal(t, "座っているだけの人", stored.MainTitle)
	assert.Equal(t, 3000, stored.HourlyRate)

	var resp struct {
		Staff models.Staff `json:"staff"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Staff.IsAvailable)
}

func TestToggleFailureLeavesRowUnchanged(t *testing.T) {
	mem := store.NewMemory()
	seedStaff(t, mem, "s1", false, time.Now())
	h := NewHandler(&failingStore{mem}, nil, nil)

	w := patchAvailability(h, "s1", true)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var stored models.Staff
	require.NoError(t, mem.SelectOne(context.Background(), store.TableStaff, store.Filter{"id": "s1"}, &stored))
	assert.False(t, stored.IsAvailable)
}

func TestToggleUnknownStaff(t *testing.T) {
	h := NewHandler(store.NewMemory(), nil, nil)
	w := patchAvailability(h, "missing", true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListStaffIncludesUnavailable(t *testing.T) {
	mem := store.NewMemory()
	base := time.Now()
	seedStaff(t, mem, "s1", true, base)
	seedStaff(t, mem, "s2", false, base.Add(time.Minute))
	h := NewHandler(mem, nil, nil)

	r := httptest.NewRequest(http.MethodGet, "/api/admin/staff", nil)
	w := httptest.NewRecorder()
	h.ListStaff(w, r, nil)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Staff []models.Staff `json:"staff"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Staff, 2)
	assert.Equal(t, "s2", resp.Staff[0].ID) // newest first
}

func TestCreateReturnsStoredRow(t *testing.T) {
	mem := store.NewMemory()
	h := NewHandler(mem, nil, nil)

	body, _ := json.Marshal(map[string]any{
		"name":       "山田 次郎",
		"nickname":   "山田",
		"category":   "fresh",
		"hourlyRate": 3000,
	})
	r := httptest.NewRequest(http.MethodPost, "/api/admin/staff", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, r, nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Staff models.Staff `json:"staff"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Staff.ID)
	assert.False(t, resp.Staff.IsAvailable)

	// the response matches what was stored
	var stored models.Staff
	require.NoError(t, mem.SelectOne(context.Background(), store.TableStaff, store.Filter{"id": resp.Staff.ID}, &stored))
	assert.Equal(t, stored.Name, resp.Staff.Name)
}

func TestCreateAcceptsCommaSeparatedTags(t *testing.T) {
	mem := store.NewMemory()
	h := NewHandler(mem, nil, nil)

	body, _ := json.Marshal(map[string]any{
		"name":     "山田 次郎",
		"nickname": "山田",
		"category": "fresh",
		"tagsText": "静か, 無口, 静か",
	})
	r := httptest.NewRequest(http.MethodPost, "/api/admin/staff", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, r, nil)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Staff models.Staff `json:"staff"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, []string{"静か", "無口"}, resp.Staff.Tags)
}

func TestCreateRejectsBadCategory(t *testing.T) {
	mem := store.NewMemory()
	h := NewHandler(mem, nil, nil)

	body, _ := json.Marshal(map[string]any{
		"name":     "山田 次郎",
		"nickname": "山田",
		"category": "vip",
	})
	r := httptest.NewRequest(http.MethodPost, "/api/admin/staff", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Create(w, r, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 0, mem.Count(store.TableStaff, store.Filter{}))
}

func TestSaveOverwritesEditableFields(t *testing.T) {
	mem := store.NewMemory()
	seedStaff(t, mem, "s1", false, time.Now())
	h := NewHandler(mem, nil, nil)

	body, _ := json.Marshal(map[string]any{
		"name":        "佐藤 花子",
		"nickname":    "はなこ",
		"category":    "premium",
		"hourlyRate":  5000,
		"isAvailable": true,
	})
	r := httptest.NewRequest(http.MethodPut, "/api/admin/staff/s1", bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.Save(w, r, httprouter.Params{{Key: "id", Value: "s1"}})

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var stored models.Staff
	require.NoError(t, mem.SelectOne(context.Background(), store.TableStaff, store.Filter{"id": "s1"}, &stored))
	assert.Equal(t, "はなこ", stored.Nickname)
	assert.Equal(t, models.CategoryPremium, stored.Category)
	assert.Equal(t, 5000, stored.HourlyRate)
	assert.True(t, stored.IsAvailable)
}
