package models

import "time"

// Staff category tiers, lowest to highest.
const (
	CategoryFresh   = "fresh"
	CategoryRegular = "regular"
	CategorySpecial = "special"
	CategoryPremium = "premium"
)

var Categories = []string{CategoryFresh, CategoryRegular, CategorySpecial, CategoryPremium}

// Booking statuses. Transitions past "pending" are driven by operators, not
// by this service.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
)

// Staff is an approved, publicly listable person. Never hard-deleted in the
// normal flow; IsAvailable gates listing visibility instead.
type Staff struct {
	ID          string    `json:"id" bson:"id"`
	Name        string    `json:"name" bson:"name"`
	Nickname    string    `json:"nickname" bson:"nickname"`
	Email       string    `json:"email,omitempty" bson:"email"`
	Age         int       `json:"age,omitempty" bson:"age,omitempty"`
	Height      int       `json:"height,omitempty" bson:"height,omitempty"`
	Gender      string    `json:"gender,omitempty" bson:"gender,omitempty"`
	Prefecture  string    `json:"prefecture,omitempty" bson:"prefecture,omitempty"`
	Category    string    `json:"category" bson:"category"`
	MainTitle   string    `json:"mainTitle" bson:"mainTitle"`
	Tags        []string  `json:"tags" bson:"tags"`
	Bio         string    `json:"bio,omitempty" bson:"bio,omitempty"`
	Hobby       string    `json:"hobby,omitempty" bson:"hobby,omitempty"`
	Specialty   string    `json:"specialty,omitempty" bson:"specialty,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty" bson:"image_url,omitempty"`
	HourlyRate  int       `json:"hourlyRate" bson:"hourly_rate"`
	IsAvailable bool      `json:"isAvailable" bson:"is_available"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
}

// PendingStaff is an unconfirmed registration awaiting email verification.
// Consumed exactly once on confirmation; unusable after ExpiresAt.
type PendingStaff struct {
	ID                string    `json:"id" bson:"id"`
	Name              string    `json:"name" bson:"name"`
	Email             string    `json:"email" bson:"email"`
	Age               int       `json:"age" bson:"age"`
	Height            int       `json:"height" bson:"height"`
	Hobbies           string    `json:"hobbies" bson:"hobbies"`
	Bio               string    `json:"bio" bson:"bio"`
	ImageURL          string    `json:"imageUrl,omitempty" bson:"image_url,omitempty"`
	ConfirmationToken string    `json:"-" bson:"confirmation_token"`
	ExpiresAt         time.Time `json:"expiresAt" bson:"expires_at"`
	CreatedAt         time.Time `json:"createdAt" bson:"created_at"`
}

type User struct {
	UserID       string `json:"userid" bson:"userid"`
	Email        string `json:"email" bson:"email"`
	PasswordHash string `json:"-" bson:"password_hash"`
	// AuthProvider is empty for password accounts, otherwise the OAuth
	// provider (google, twitter, facebook) the account came from.
	AuthProvider string    `json:"authProvider,omitempty" bson:"auth_provider,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	LastLogin    time.Time `json:"last_login" bson:"last_login"`
}

// CustomerProfile is created lazily the first time a signed-in customer
// completes a profile-bearing action.
type CustomerProfile struct {
	UserID      string    `json:"userid" bson:"userid"`
	DisplayName string    `json:"displayName" bson:"display_name"`
	Birthdate   string    `json:"birthdate,omitempty" bson:"birthdate,omitempty"`
	Gender      string    `json:"gender,omitempty" bson:"gender,omitempty"`
	Location    string    `json:"location,omitempty" bson:"location,omitempty"`
	PhoneNumber string    `json:"phoneNumber,omitempty" bson:"phone_number,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

type UserInterest struct {
	UserID   string `bson:"userid"`
	Interest string `bson:"interest"`
}

type UserPurpose struct {
	UserID         string `bson:"userid"`
	Purpose        string `bson:"purpose"`
	AdditionalInfo string `bson:"additional_info,omitempty"`
}

// SlotCandidate is one desired date/time pair on a booking request.
type SlotCandidate struct {
	Date  string `json:"date" bson:"date"`   // YYYY-MM-DD
	Start string `json:"start" bson:"start"` // HH:MM
}

type Booking struct {
	ID            string          `json:"id" bson:"id"`
	UserID        string          `json:"userId" bson:"userid"`
	StaffID       string          `json:"staffId" bson:"staff_id"`
	AltStaffID    string          `json:"altStaffId,omitempty" bson:"alt_staff_id,omitempty"`
	Slots         []SlotCandidate `json:"slots" bson:"slots"`
	Duration      int             `json:"duration" bson:"duration"` // hours
	LocationTier  string          `json:"locationTier" bson:"location_tier"`
	PaymentMethod string          `json:"paymentMethod" bson:"payment_method"`
	Request       string          `json:"request,omitempty" bson:"request,omitempty"`
	Status        string          `json:"status" bson:"status"`
	CreatedAt     time.Time       `json:"createdAt" bson:"created_at"`
}
