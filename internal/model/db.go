package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// MediaRef points at an asset stored on the media host.
type MediaRef struct {
	PublicID string `gorm:"size:255" json:"public_id"`
	URL      string `gorm:"size:1024" json:"url"`
}

type Course struct {
	ID          string    `gorm:"primaryKey;size:64;not null" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Price       int64     `gorm:"not null" json:"price"` // minor currency units
	Image       MediaRef  `gorm:"embedded;embeddedPrefix:image_" json:"image"`
	CreatorID   string    `gorm:"size:64;index;not null" json:"creatorId"` // owning admin
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Purchase is an entitlement: the fact that a user owns a course.
type Purchase struct {
	ID        string    `gorm:"primaryKey;size:64;not null" json:"id"`
	UserID    string    `gorm:"size:64;not null;uniqueIndex:idx_purchase_user_course,priority:1" json:"userId"`
	CourseID  string    `gorm:"size:64;not null;uniqueIndex:idx_purchase_user_course,priority:2;index" json:"courseId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Order is the client-supplied record of a checkout. Payload keeps the raw body.
type Order struct {
	ID        string          `gorm:"primaryKey;size:64;not null" json:"id"`
	UserID    string          `gorm:"size:64;index" json:"userId,omitempty"`
	CourseID  string          `gorm:"size:64;index" json:"courseId,omitempty"`
	Email     string          `gorm:"size:255" json:"email,omitempty"`
	PaymentID string          `gorm:"size:255" json:"paymentId,omitempty"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,4)" json:"amount"` // as reported by the client
	Status    string          `gorm:"size:32" json:"status,omitempty"`
	Payload   datatypes.JSON  `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
}

// HasEntitlementPair reports whether the order names both a user and a course.
func (o *Order) HasEntitlementPair() bool {
	return o.UserID != "" && o.CourseID != ""
}

type CheckoutState string

// Requested, Validated and Rejected only exist for the lifetime of a request;
// Authorized, Confirmed and Expired are persisted.
const (
	CheckoutRequested  CheckoutState = "REQUESTED"
	CheckoutValidated  CheckoutState = "VALIDATED"
	CheckoutRejected   CheckoutState = "REJECTED"
	CheckoutAuthorized CheckoutState = "AUTHORIZED"
	CheckoutConfirmed  CheckoutState = "CONFIRMED"
	CheckoutExpired    CheckoutState = "EXPIRED"
)

// Checkout tracks one purchase attempt between authorization and confirmation.
// ActiveKey is set only while the attempt is AUTHORIZED; its unique index allows
// at most one open attempt per (user, course).
type Checkout struct {
	ID              string        `gorm:"primaryKey;size:64;not null" json:"id"`
	UserID          string        `gorm:"size:64;index:idx_checkout_user_course;not null" json:"userId"`
	CourseID        string        `gorm:"size:64;index:idx_checkout_user_course;not null" json:"courseId"`
	State           CheckoutState `gorm:"size:32;index;not null" json:"state"`
	ActiveKey       *string       `gorm:"size:160;uniqueIndex" json:"-"`
	Provider        string        `gorm:"size:32;not null" json:"provider"`
	AuthorizationID string        `gorm:"size:255;index" json:"authorizationId"`
	Amount          int64         `gorm:"not null" json:"amount"`
	Currency        string        `gorm:"size:8;not null" json:"currency"`
	ConfirmedAt     *time.Time    `json:"confirmedAt,omitempty"`
	ExpiredAt       *time.Time    `json:"expiredAt,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// CheckoutKey is the ActiveKey value for an open checkout of (userID, courseID).
func CheckoutKey(userID, courseID string) string {
	return fmt.Sprintf("%s:%s", userID, courseID)
}

// Account holds the identity fields shared by users and admins.
type Account struct {
	ID           string    `gorm:"primaryKey;size:64;not null" json:"id"`
	FirstName    string    `gorm:"size:128;not null" json:"firstName"`
	LastName     string    `gorm:"size:128;not null" json:"lastName"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// User and Admin live in separate tables with the same shape.
type User struct {
	Account
}

type Admin struct {
	Account
}

// TableFor returns the table holding accounts of the given role.
func TableFor(role Role) string {
	if role == RoleAdmin {
		return "admins"
	}
	return "users"
}
