package handler

import (
	"food-ordering-api/internal/dto"
	"food-ordering-api/internal/service"
	"net/http"

	"github.com/labstack/echo/v4"
)

type ContactHandler struct {
	contactService service.ContactService
}

func NewContactHandler(contactService service.ContactService) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
	}
}

func (h *ContactHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ContactQueryRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.contactService.Submit(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, resp)
}

func (h *ContactHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	resp, err := h.contactService.List(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *ContactHandler) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ContactStatusRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	resp, err := h.contactService.UpdateStatus(ctx, c.Param("id"), &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *ContactHandler) Delete(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.contactService.Delete(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Query deleted"})
}
