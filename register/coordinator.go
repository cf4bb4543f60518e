// Package register implements staff registration: a pending row with a
// single-use confirmation token, email delivery of the confirmation link,
// and promotion to a permanent staff record when the link is followed in
// time.
package register

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"nonact/blob"
	"nonact/mailer"
	"nonact/models"
	"nonact/store"
	"nonact/utils"

	"github.com/google/uuid"
)

// Submission outcomes.
type Status string

const (
	StatusSuccess Status = "success"
	StatusResent  Status = "resent"
	StatusFailure Status = "failure"
)

// Confirmation outcomes.
type ConfirmStatus string

const (
	ConfirmSuccess ConfirmStatus = "success"
	ConfirmExpired ConfirmStatus = "expired"
	ConfirmInvalid ConfirmStatus = "invalid"
	ConfirmFailure ConfirmStatus = "failure"
)

const imageBucket = "profile"

type Input struct {
	Name               string
	Email              string
	Age                int
	Height             int
	Hobbies            string
	Description        string
	ProfileImageBase64 string
}

type Result struct {
	Status  Status
	Message string
	Email   string
}

// Coordinator turns a validated registration into durable effects, exactly
// once per logical submission. Now and NewToken are swappable for tests.
type Coordinator struct {
	Store store.Store
	Blob  blob.Store
	Mail  mailer.Mailer

	// AppURL is the base for confirmation links.
	AppURL string
	// TTL is the confirmation token validity window.
	TTL time.Duration

	Now      func() time.Time
	NewToken func() string
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Coordinator) newToken() string {
	if c.NewToken != nil {
		return c.NewToken()
	}
	return uuid.NewString()
}

// Submit registers in.Email as pending staff. If a pending row already
// exists for the email, it is refreshed with a new token and the mail is
// re-sent; a duplicate pending row is never created.
func (c *Coordinator) Submit(ctx context.Context, in Input) (Result, error) {
	token := c.newToken()
	expiresAt := c.now().Add(c.TTL)

	var existing models.PendingStaff
	err := c.Store.SelectOne(ctx, store.TablePending, store.Filter{"email": in.Email}, &existing)
	if err == nil {
		return c.resend(ctx, existing, token, expiresAt)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return Result{Status: StatusFailure, Message: "データベースエラーが発生しました"}, err
	}

	// The upload happens before the insert so a failed upload never leaves
	// a pending row pointing at a missing image.
	imageURL, err := c.uploadImage(ctx, in.ProfileImageBase64)
	if err != nil {
		return Result{Status: StatusFailure, Message: "画像のアップロードに失敗しました"}, err
	}

	pending := models.PendingStaff{
		ID:                "p" + utils.GenerateRandomString(10),
		Name:              in.Name,
		Email:             in.Email,
		Age:               in.Age,
		Height:            in.Height,
		Hobbies:           in.Hobbies,
		Bio:               in.Description,
		ImageURL:          imageURL,
		ConfirmationToken: token,
		ExpiresAt:         expiresAt,
		CreatedAt:         c.now(),
	}

	if err := c.Store.Insert(ctx, store.TablePending, pending); err != nil {
		if errors.Is(err, store.ErrConflict) {
			// A concurrent submission for the same email won the insert
			// race; fall through to the resend path against its row.
			err = c.Store.SelectOne(ctx, store.TablePending, store.Filter{"email": in.Email}, &existing)
			if err == nil {
				return c.resend(ctx, existing, token, expiresAt)
			}
		}
		return Result{Status: StatusFailure, Message: "データベースエラーが発生しました"}, err
	}

	c.sendConfirmation(in.Email, token)

	return Result{
		Status:  StatusSuccess,
		Message: "仮登録が完了しました。確認メールを送信しましたので、メール内のリンクをクリックして登録を完了してください。",
		Email:   in.Email,
	}, nil
}

func (c *Coordinator) resend(ctx context.Context, existing models.PendingStaff, token string, expiresAt time.Time) (Result, error) {
	_, err := c.Store.Update(ctx, store.TablePending,
		store.Filter{"id": existing.ID},
		store.Patch{"confirmation_token": token, "expires_at": expiresAt},
	)
	if err != nil {
		return Result{Status: StatusFailure, Message: "データベースエラーが発生しました"}, err
	}

	c.sendConfirmation(existing.Email, token)

	return Result{
		Status:  StatusResent,
		Message: "確認メールを再送しました。メールをご確認ください。",
		Email:   existing.Email,
	}, nil
}

// Confirm promotes the pending row carrying token into a staff record. The
// staff insert happens before the pending delete: a failed insert leaves
// the pending row (and its token) intact.
func (c *Coordinator) Confirm(ctx context.Context, token string) ConfirmStatus {
	var pending models.PendingStaff
	err := c.Store.SelectOne(ctx, store.TablePending, store.Filter{"confirmation_token": token}, &pending)
	if errors.Is(err, store.ErrNotFound) {
		return ConfirmInvalid
	}
	if err != nil {
		log.Printf("confirm lookup failed: %v", err)
		return ConfirmFailure
	}

	if !c.now().Before(pending.ExpiresAt) {
		return ConfirmExpired
	}

	staff := models.Staff{
		ID:          "s" + utils.GenerateRandomString(10),
		Name:        pending.Name,
		Nickname:    nicknameFrom(pending.Name),
		Email:       pending.Email,
		Age:         pending.Age,
		Height:      pending.Height,
		Gender:      "未設定",
		Prefecture:  "未設定",
		Category:    models.CategoryFresh,
		Tags:        []string{},
		Bio:         pending.Bio,
		Hobby:       pending.Hobbies,
		Specialty:   "何もしないこと",
		ImageURL:    pending.ImageURL,
		HourlyRate:  3000,
		IsAvailable: false, // enabled by admin review
		CreatedAt:   c.now(),
	}

	if err := c.Store.Insert(ctx, store.TableStaff, staff); err != nil {
		log.Printf("staff promotion insert failed: %v", err)
		return ConfirmFailure
	}

	if _, err := c.Store.Delete(ctx, store.TablePending, store.Filter{"confirmation_token": token}); err != nil {
		// The staff row exists; the leftover pending row is harmless and
		// its token now promotes nothing new.
		log.Printf("pending cleanup failed: %v", err)
	}

	return ConfirmSuccess
}

// sendConfirmation is best-effort: the pending row exists either way and
// the user can request a resend.
func (c *Coordinator) sendConfirmation(email, token string) {
	url := fmt.Sprintf("%s/api/confirm?token=%s", strings.TrimRight(c.AppURL, "/"), token)
	body := confirmationBody(url, c.TTL)
	if err := c.Mail.Send(email, "何もしない人 - 登録確認", body); err != nil {
		log.Printf("confirmation mail to %s failed: %v", email, err)
	}
}

func confirmationBody(url string, ttl time.Duration) string {
	validity := fmt.Sprintf("%d時間", int(ttl.Hours()))
	if ttl < time.Hour {
		validity = fmt.Sprintf("%d分", int(ttl.Minutes()))
	}
	return `<div style="font-family: sans-serif; max-width: 600px; margin: 0 auto;">
  <h2>登録確認</h2>
  <p>何もしない人への登録ありがとうございます。</p>
  <p>登録を完了するには、以下のリンクをクリックしてください。</p>
  <p><a href="` + url + `">登録を完了する</a></p>
  <p>このリンクは` + validity + `有効です。</p>
  <p style="color: #6b7280; font-size: 14px;">このメールは自動送信されています。返信はできません。</p>
</div>`
}

func nicknameFrom(name string) string {
	for _, sep := range []string{" ", "　"} {
		if i := strings.Index(name, sep); i > 0 {
			return name[:i]
		}
	}
	return name
}

func (c *Coordinator) uploadImage(ctx context.Context, b64 string) (string, error) {
	if b64 == "" {
		return "", nil
	}
	// Data-URL prefix ("data:image/jpeg;base64,...") is optional.
	if i := strings.Index(b64, ","); i >= 0 {
		b64 = b64[i+1:]
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return "", fmt.Errorf("decode profile image: %w", err)
	}

	path := fmt.Sprintf("staff/%s.jpg", uuid.NewString())
	if err := c.Blob.Upload(ctx, imageBucket, path, data, "image/jpeg"); err != nil {
		return "", fmt.Errorf("upload profile image: %w", err)
	}
	return c.Blob.PublicURL(imageBucket, path), nil
}
