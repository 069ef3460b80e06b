package handler

import (
	"food-ordering-api/internal/dto"
	"food-ordering-api/internal/middleware"
	"food-ordering-api/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type OrderHandler struct {
	orderService service.OrderService
}

func NewOrderHandler(orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
	}
}

func callerID(c echo.Context) (string, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "Not authorized, token missing")
	}
	return identity.ID, nil
}

func (h *OrderHandler) CreateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := callerID(c)
	if err != nil {
		return err
	}

	var req dto.CreateOrderRequest
	if err := c.Bind(&req); err != nil {
		return err
	}

	resp, err := h.orderService.CreateOrder(ctx, userID, c.Request().Header.Get("Idempotency-Key"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, resp)
}

// ConfirmPayment accepts Stripe's session_id or PayPal's token on the return URL.
func (h *OrderHandler) ConfirmPayment(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID := c.QueryParam("session_id")
	if sessionID == "" {
		sessionID = c.QueryParam("token")
	}

	order, err := h.orderService.ConfirmPayment(ctx, sessionID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ListOrders(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := callerID(c)
	if err != nil {
		return err
	}

	orders, err := h.orderService.ListCustomerOrders(ctx, userID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) ListAllOrders(c echo.Context) error {
	ctx := c.Request().Context()

	orders, err := h.orderService.ListAllOrders(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := callerID(c)
	if err != nil {
		return err
	}

	order, err := h.orderService.GetOrder(ctx, userID, c.Param("id"), c.QueryParam("email"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := callerID(c)
	if err != nil {
		return err
	}

	var patch dto.CustomerOrderPatch
	if err := c.Bind(&patch); err != nil {
		return err
	}

	order, err := h.orderService.UpdateOrderAsCustomer(ctx, userID, c.Param("id"), &patch)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateAnyOrder(c echo.Context) error {
	ctx := c.Request().Context()

	var patch dto.AdminOrderPatch
	if err := c.Bind(&patch); err != nil {
		return err
	}

	resp, err := h.orderService.UpdateOrderAsAdmin(ctx, c.Param("id"), &patch)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) DeleteOrder(c echo.Context) error {
	ctx := c.Request().Context()

	userID, err := callerID(c)
	if err != nil {
		return err
	}

	resp, err := h.orderService.DeleteOrderAsCustomer(ctx, userID, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) DeleteAnyOrder(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.orderService.DeleteOrderAsAdmin(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}
