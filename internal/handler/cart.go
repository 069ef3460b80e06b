package handler

import (
	"food-ordering-api/internal/dto"
	"food-ordering-api/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type CartHandler struct {
	cartService service.CartService
}

func NewCartHandler(cartService service.CartService) *CartHandler {
	return &CartHandler{
		cartService: cartService,
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := callerID(c)
	if err != nil {
		return err
	}

	cart, err := h.cartService.GetCart(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) AddItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := callerID(c)
	if err != nil {
		return err
	}

	var req dto.CartItemRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	cart, err := h.cartService.AddItem(ctx, userID, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) UpdateItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := callerID(c)
	if err != nil {
		return err
	}

	var req dto.CartQuantityRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	cart, err := h.cartService.UpdateItem(ctx, userID, c.Param("id"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) RemoveItem(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := callerID(c)
	if err != nil {
		return err
	}

	cart, err := h.cartService.RemoveItem(ctx, userID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}

func (h *CartHandler) Clear(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := callerID(c)
	if err != nil {
		return err
	}

	cart, err := h.cartService.Clear(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, cart)
}
