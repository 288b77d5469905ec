package handler

import (
	"net/http"
	"time"

	"course-marketplace/internal/dto"
	"course-marketplace/internal/model"
	"course-marketplace/internal/service"

	"github.com/labstack/echo/v4"
)

const tokenCookie = "jwt"

// AccountHandler serves signup, login and logout for one role.
type AccountHandler struct {
	accounts     service.AccountService
	tokenTTL     time.Duration
	secureCookie bool
}

func NewAccountHandler(accounts service.AccountService, tokenTTL time.Duration, secureCookie bool) *AccountHandler {
	return &AccountHandler{
		accounts:     accounts,
		tokenTTL:     tokenTTL,
		secureCookie: secureCookie,
	}
}

func (h *AccountHandler) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SignupRequest
	if err := c.Bind(&req); err != nil {
		return model.NewValidationError("Invalid request body.")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.accounts.Signup(ctx, service.SignupInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}

	resp := dto.SignupResponse{Message: "Signup succeeded."}
	h.setAccount(&resp.User, &resp.Admin, account)
	return c.JSON(http.StatusCreated, resp)
}

func (h *AccountHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return model.NewValidationError("Invalid request body.")
	}
	if err := c.Validate(&req); err != nil {
		return model.NewInvalidCredentialsError()
	}

	result, err := h.accounts.Login(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	c.SetCookie(&http.Cookie{
		Name:     tokenCookie,
		Value:    result.Token,
		Path:     "/",
		Expires:  time.Now().Add(h.tokenTTL),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})

	resp := dto.LoginResponse{
		Message: "Login successful.",
		Token:   result.Token,
	}
	h.setAccount(&resp.User, &resp.Admin, result.Account)
	return c.JSON(http.StatusCreated, resp)
}

func (h *AccountHandler) Logout(c echo.Context) error {
	c.SetCookie(&http.Cookie{
		Name:     tokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})

	return c.JSON(http.StatusOK, dto.MessageResponse{Message: "Logged out successfully."})
}

func (h *AccountHandler) setAccount(user, admin **model.Account, account *model.Account) {
	if h.accounts.Role() == model.RoleAdmin {
		*admin = account
		return
	}
	*user = account
}
