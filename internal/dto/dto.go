package dto

import (
	"course-marketplace/internal/model"

	"github.com/shopspring/decimal"
)

type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required,min=3"`
	LastName  string `json:"lastName" validate:"required,min=3"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// OrderRequest holds the fields of an order the server acts on. The full body
// is stored alongside it. Amount accepts a JSON number or a numeric string.
type OrderRequest struct {
	UserID    string          `json:"userId"`
	CourseID  string          `json:"courseId"`
	Email     string          `json:"email"`
	PaymentID string          `json:"paymentId"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Errors interface{} `json:"errors"`
}

type SignupResponse struct {
	Message string         `json:"message"`
	User    *model.Account `json:"user,omitempty"`
	Admin   *model.Account `json:"admin,omitempty"`
}

type LoginResponse struct {
	Message string         `json:"message"`
	User    *model.Account `json:"user,omitempty"`
	Admin   *model.Account `json:"admin,omitempty"`
	Token   string         `json:"token"`
}

type CourseResponse struct {
	Message string        `json:"message,omitempty"`
	Course  *model.Course `json:"course"`
}

type CoursesResponse struct {
	Courses []*model.Course `json:"courses"`
}

type BuyResponse struct {
	Message      string        `json:"message"`
	Course       *model.Course `json:"course"`
	ClientSecret string        `json:"clientSecret"`
}

type PurchasesResponse struct {
	Purchased  []*model.Purchase `json:"purchased"`
	CourseData []*model.Course   `json:"courseData"`
}

type OrderResponse struct {
	Message   string       `json:"message"`
	OrderInfo *model.Order `json:"orderInfo"`
}
