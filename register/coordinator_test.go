package register

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"nonact/models"
	"nonact/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBlob struct {
	fail    bool
	uploads int
}

func (f *fakeBlob) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) error {
	if f.fail {
		return errors.New("storage down")
	}
	f.uploads++
	return nil
}

func (f *fakeBlob) PublicURL(bucket, path string) string {
	return "http://cdn.local/" + bucket + "/" + path
}

type recordingMailer struct {
	fail   bool
	sent   []string // recipient addresses
	bodies []string
}

func (m *recordingMailer) Send(toAddress, subject, htmlBody string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.sent = append(m.sent, toAddress)
	m.bodies = append(m.bodies, htmlBody)
	return nil
}

func newCoordinator(mem *store.Memory, fb *fakeBlob, rm *recordingMailer) *Coordinator {
	return &Coordinator{
		Store:    mem,
		Blob:     fb,
		Mail:     rm,
		AppURL:   "http://localhost:8080",
		TTL:      24 * time.Hour,
		NewToken: func() string { return "tok-1" },
	}
}

func validInput() Input {
	return Input{
		Name:        "田中 太郎",
		Email:       "taro@example.com",
		Age:         30,
		Height:      170,
		Hobbies:     "散歩",
		Description: "よろしくお願いします",
	}
}

func TestSubmitCreatesPendingAndMails(t *testing.T) {
	mem := store.NewMemory()
	fb := &fakeBlob{}
	rm := &recordingMailer{}
	c := newCoordinator(mem, fb, rm)

	res, err := c.Submit(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, "taro@example.com", res.Email)

	assert.Equal(t, 1, mem.Count(store.TablePending, store.Filter{"email": "taro@example.com"}))
	require.Len(t, rm.sent, 1)
	assert.Equal(t, "taro@example.com", rm.sent[0])
	assert.Contains(t, rm.bodies[0], "/api/confirm?token=tok-1")
}

func TestConfirmationMailStatesValidityWindow(t *testing.T) {
	mem := store.NewMemory()
	rm := &recordingMailer{}
	c := newCoordinator(mem, &fakeBlob{}, rm)

	_, err := c.Submit(context.Background(), validInput())
	require.NoError(t, err)
	require.Len(t, rm.bodies, 1)
	assert.Contains(t, rm.bodies[0], "24時間有効")

	// a non-default window must be reflected in the mail
	c.TTL = 48 * time.Hour
	in := validInput()
	in.Email = "hanako@example.com"
	_, err = c.Submit(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, rm.bodies, 2)
	assert.Contains(t, rm.bodies[1], "48時間有効")
}

func TestSubmitExistingEmailResendsNotDuplicates(t *testing.T) {
	mem := store.NewMemory()
	rm := &recordingMailer{}
	c := newCoordinator(mem, &fakeBlob{}, rm)

	_, err := c.Submit(context.Background(), validInput())
	require.NoError(t, err)

	c.NewToken = func() string { return "tok-2" }
	res, err := c.Submit(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, StatusResent, res.Status)

	assert.Equal(t, 1, mem.Count(store.TablePending, store.Filter{"email": "taro@example.com"}))

	var pending models.PendingStaff
	require.NoError(t, mem.SelectOne(context.Background(), store.TablePending, store.Filter{"email": "taro@example.com"}, &pending))
	assert.Equal(t, "tok-2", pending.ConfirmationToken)
	assert.Len(t, rm.sent, 2)
}

func TestSubmitUploadFailureLeavesNothingBehind(t *testing.T) {
	mem := store.NewMemory()
	rm := &recordingMailer{}
	c := newCoordinator(mem, &fakeBlob{fail: true}, rm)

	in := validInput()
	in.ProfileImageBase64 = base64.StdEncoding.EncodeToString([]byte("jpegdata"))

	res, err := c.Submit(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, StatusFailure, res.Status)

	assert.Equal(t, 0, mem.Count(store.TablePending, store.Filter{}))
	assert.Empty(t, rm.sent)
}

func TestSubmitMailFailureStillSucceeds(t *testing.T) {
	mem := store.NewMemory()
	c := newCoordinator(mem, &fakeBlob{}, &recordingMailer{fail: true})

	res, err := c.Submit(context.Background(), validInput())
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 1, mem.Count(store.TablePending, store.Filter{}))
}

func TestSubmitStripsDataURLPrefix(t *testing.T) {
	mem := store.NewMemory()
	fb := &fakeBlob{}
	c := newCoordinator(mem, fb, &recordingMailer{})

	in := validInput()
	in.ProfileImageBase64 = "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpegdata"))

	_, err := c.Submit(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1, fb.uploads)

	var pending models.PendingStaff
	require.NoError(t, mem.SelectOne(context.Background(), store.TablePending, store.Filter{"email": "taro@example.com"}, &pending))
	assert.True(t, strings.HasPrefix(pending.ImageURL, "http://cdn.local/profile/staff/"))
}

func TestConfirmPromotesWithDefaults(t *testing.T) {
	mem := store.NewMemory()
	c := newCoordinator(mem, &fakeBlob{}, &recordingMailer{})

	_, err := c.Submit(context.Background(), validInput())
	require.NoError(t, err)

	status := c.Confirm(context.Background(), "tok-1")
	assert.Equal(t, ConfirmSuccess, status)

	var s models.Staff
	require.NoError(t, mem.SelectOne(context.Background(), store.TableStaff, store.Filter{"email": "taro@example.com"}, &s))
	assert.Equal(t, "田中 太郎", s.Name)
	assert.Equal(t, "田中", s.Nickname)
	assert.Equal(t, "未設定", s.Gender)
	assert.Equal(t, "未設定", s.Prefecture)
	assert.Equal(t, "何もしないこと", s.Specialty)
	assert.Equal(t, models.CategoryFresh, s.Category)
	assert.Equal(t, 3000, s.HourlyRate)
	assert.False(t, s.IsAvailable)

	// pending row consumed
	assert.Equal(t, 0, mem.Count(store.TablePending, store.Filter{}))
}

func TestConfirmTokenIsSingleUse(t *testing.T) {
	mem := store.NewMemory()
	c := newCoordinator(mem, &fakeBlob{}, &recordingMailer{})

	_, err := c.Submit(context.Background(), validInput())
	require.NoError(t, err)

	require.Equal(t, ConfirmSuccess, c.Confirm(context.Background(), "tok-1"))
	assert.Equal(t, ConfirmInvalid, c.Confirm(context.Background(), "tok-1"))
	assert.Equal(t, 1, mem.Count(store.TableStaff, store.Filter{}))
}

func TestConfirmExpiredLeavesRowUntouched(t *testing.T) {
	mem := store.NewMemory()
	c := newCoordinator(mem, &fakeBlob{}, &recordingMailer{})

	_, err := c.Submit(context.Background(), validInput())
	require.NoError(t, err)

	c.Now = func() time.Time { return time.Now().Add(25 * time.Hour) }
	assert.Equal(t, ConfirmExpired, c.Confirm(context.Background(), "tok-1"))

	assert.Equal(t, 0, mem.Count(store.TableStaff, store.Filter{}))
	assert.Equal(t, 1, mem.Count(store.TablePending, store.Filter{}))
}

// insertFailStore refuses inserts into one table; everything else passes
// through.
type insertFailStore struct {
	*store.Memory
	failTable string
}

func (s *insertFailStore) Insert(ctx context.Context, table string, docs ...any) error {
	if table == s.failTable {
		return errors.New("db down")
	}
	return s.Memory.Insert(ctx, table, docs...)
}

func TestConfirmFailedPromotionKeepsPendingRow(t *testing.T) {
	mem := store.NewMemory()
	c := newCoordinator(mem, &fakeBlob{}, &recordingMailer{})

	_, err := c.Submit(context.Background(), validInput())
	require.NoError(t, err)

	// staff insert fails: the pending row and its token must survive so
	// the link can be retried
	c.Store = &insertFailStore{Memory: mem, failTable: store.TableStaff}
	assert.Equal(t, ConfirmFailure, c.Confirm(context.Background(), "tok-1"))

	assert.Equal(t, 0, mem.Count(store.TableStaff, store.Filter{}))
	assert.Equal(t, 1, mem.Count(store.TablePending, store.Filter{"confirmation_token": "tok-1"}))

	// and the untouched token still promotes once the store recovers
	c.Store = mem
	assert.Equal(t, ConfirmSuccess, c.Confirm(context.Background(), "tok-1"))
	assert.Equal(t, 1, mem.Count(store.TableStaff, store.Filter{}))
}

func TestConfirmUnknownToken(t *testing.T) {
	mem := store.NewMemory()
	c := newCoordinator(mem, &fakeBlob{}, &recordingMailer{})

	assert.Equal(t, ConfirmInvalid, c.Confirm(context.Background(), "no-such-token"))
}

func TestNicknameFrom(t *testing.T) {
	cases := map[string]string{
		"田中 太郎":  "田中",
		"田中　太郎":  "田中",
		"Mononym": "Mononym",
	}
	for name, want := range cases {
		if got := nicknameFrom(name); got != want {
			t.Errorf("nicknameFrom(%q) = %q, want %q", name, got, want)
		}
	}
}
