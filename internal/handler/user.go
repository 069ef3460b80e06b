package handler

import (
	"food-ordering-api/internal/dto"
	"food-ordering-api/internal/service"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type UserHandler struct {
	userService  service.UserService
	cookieTTL    time.Duration
	secureCookie bool
}

func NewUserHandler(userService service.UserService, cookieTTL time.Duration, secureCookie bool) *UserHandler {
	return &UserHandler{
		userService:  userService,
		cookieTTL:    cookieTTL,
		secureCookie: secureCookie,
	}
}

func (h *UserHandler) Register(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.userService.Register(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *UserHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.userService.Login(ctx, &req)
	if err != nil {
		return err
	}

	h.setTokenCookie(c, resp.Token)
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) VerifyEmail(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PinRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.userService.VerifyEmail(ctx, &req)
	if err != nil {
		return err
	}

	h.setTokenCookie(c, resp.Token)
	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) ResendVerification(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.EmailRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.userService.ResendVerification(ctx, req.Email)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.EmailRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.userService.ForgotPassword(ctx, req.Email)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) VerifyResetPin(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.PinRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.userService.VerifyResetPin(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.userService.ResetPassword(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *UserHandler) setTokenCookie(c echo.Context, token string) {
	c.SetCookie(&http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cookieTTL),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}
