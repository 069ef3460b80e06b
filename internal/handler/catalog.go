package handler

import (
	"fmt"
	"food-ordering-api/internal/dto"
	"food-ordering-api/internal/service"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

var allowedImageExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
	".gif":  true,
}

type CatalogHandler struct {
	catalogService service.CatalogService
	uploadsDir     string
}

func NewCatalogHandler(catalogService service.CatalogService, uploadsDir string) *CatalogHandler {
	return &CatalogHandler{
		catalogService: catalogService,
		uploadsDir:     uploadsDir,
	}
}

func (h *CatalogHandler) ListItems(c echo.Context) error {
	ctx := c.Request().Context()

	items, err := h.catalogService.ListItems(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHandler) CreateItem(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ItemRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	imageURL, err := h.saveImage(c)
	if err != nil {
		return err
	}
	if imageURL != "" {
		req.ImageURL = imageURL
	}

	item, err := h.catalogService.CreateItem(ctx, &req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, item)
}

func (h *CatalogHandler) DeleteItem(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.catalogService.DeleteItem(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Item deleted"})
}

func (h *CatalogHandler) ListActiveOffers(c echo.Context) error {
	ctx := c.Request().Context()

	offers, err := h.catalogService.ListActiveOffers(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, offers)
}

func (h *CatalogHandler) ListAllOffers(c echo.Context) error {
	ctx := c.Request().Context()

	offers, err := h.catalogService.ListAllOffers(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, offers)
}

func (h *CatalogHandler) CreateOffer(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := h.bindOffer(c)
	if err != nil {
		return err
	}

	offer, err := h.catalogService.CreateOffer(ctx, req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, offer)
}

func (h *CatalogHandler) UpdateOffer(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := h.bindOffer(c)
	if err != nil {
		return err
	}

	offer, err := h.catalogService.UpdateOffer(ctx, c.Param("id"), req)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, offer)
}

func (h *CatalogHandler) ToggleOffer(c echo.Context) error {
	ctx := c.Request().Context()

	offer, err := h.catalogService.ToggleOffer(ctx, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, offer)
}

func (h *CatalogHandler) DeleteOffer(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.catalogService.DeleteOffer(ctx, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, dto.MessageResponse{Success: true, Message: "Special offer deleted"})
}

func (h *CatalogHandler) bindOffer(c echo.Context) (*dto.SpecialOfferRequest, error) {
	var req dto.SpecialOfferRequest
	if err := c.Bind(&req); err != nil {
		return nil, err
	}
	if err := c.Validate(&req); err != nil {
		return nil, err
	}

	imageURL, err := h.saveImage(c)
	if err != nil {
		return nil, err
	}
	if imageURL != "" {
		req.ImageURL = imageURL
	}
	return &req, nil
}

// saveImage stores the optional "image" upload and returns its public path.
func (h *CatalogHandler) saveImage(c echo.Context) (string, error) {
	if !strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return "", nil
	}

	file, err := c.FormFile("image")
	if err == http.ErrMissingFile {
		return "", nil
	}
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid image upload").SetInternal(err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImageExts[ext] {
		return "", echo.NewHTTPError(http.StatusBadRequest, "unsupported image type")
	}

	name := uuid.NewString() + ext
	if err := storeUpload(file, filepath.Join(h.uploadsDir, name)); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}

func storeUpload(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("create uploads dir: %w", err)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		return fmt.Errorf("write upload file: %w", err)
	}
	return nil
}
