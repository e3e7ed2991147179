package handler

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"fleamart/internal/model"
	"fleamart/internal/service"
)

// ItemHandler handles listing endpoints.
type ItemHandler struct {
	itemService service.ItemService
}

// NewItemHandler creates a new item handler.
func NewItemHandler(itemService service.ItemService) *ItemHandler {
	return &ItemHandler{itemService: itemService}
}

// SellRequest is the JSON body for creating a listing with an image URL.
type SellRequest struct {
	Name   string `json:"name"`
	Detail string `json:"detail"`
	Image  string `json:"image"`
	Status *int   `json:"status"`
	Seller string `json:"seller"`
	Date   string `json:"date"`
}

// UpdateItemRequest is the body for patching a listing. Omitted fields keep
// their stored values.
type UpdateItemRequest struct {
	ItemID *uint   `json:"item_id"`
	Seller string  `json:"seller"`
	Date   string  `json:"date"`
	Name   *string `json:"name"`
	Detail *string `json:"detail"`
	Image  *string `json:"image"`
	Status *int    `json:"status"`
}

// ItemRefRequest references a listing by id on behalf of an account.
type ItemRefRequest struct {
	UUID   string `json:"uuid"`
	ItemID *uint  `json:"item_id"`
}

// ListItems godoc
// @Summary List all items (legacy shape, raw uids)
// @Tags items
// @Produce json
// @Success 200 {array} model.Item
// @Failure 500 {object} errors.ErrorResponse
// @Router / [get]
func (h *ItemHandler) ListItems(c echo.Context) error {
	items, err := h.itemService.ListItems(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// ListItemsWithNames godoc
// @Summary List all items with seller and customer display names
// @Tags items
// @Produce json
// @Success 200 {array} model.ItemWithNames
// @Failure 500 {object} errors.ErrorResponse
// @Router /items [get]
func (h *ItemHandler) ListItemsWithNames(c echo.Context) error {
	items, err := h.itemService.ListItemsWithNames(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, items)
}

// Sell godoc
// @Summary Create a listing
// @Description Accepts multipart/form-data with an image file, or JSON with an image URL.
// @Tags items
// @Accept json
// @Accept mpfd
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /sell [post]
func (h *ItemHandler) Sell(c echo.Context) error {
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		return h.sellMultipart(c)
	}
	return h.sellJSON(c)
}

func (h *ItemHandler) sellJSON(c echo.Context) error {
	var req SellRequest
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" || req.Detail == "" || req.Seller == "" || req.Date == "" {
		return failJSON(c, http.StatusBadRequest, "Name, detail, seller and date are required")
	}

	seller, ok := requireSeller(c, req.Seller)
	if !ok {
		return sellerMismatch(c)
	}

	createdAt, err := parseDate(req.Date)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "Invalid date format")
	}

	status := model.StatusAvailable
	if req.Status != nil {
		if !model.ValidStatus(*req.Status) {
			return failJSON(c, http.StatusBadRequest, "Invalid status value")
		}
		status = *req.Status
	}

	item, err := h.itemService.CreateItem(c.Request().Context(), service.CreateItemInput{
		Seller:    seller,
		Name:      req.Name,
		Detail:    req.Detail,
		Status:    status,
		ImageURL:  req.Image,
		CreatedAt: &createdAt,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"status": "success",
		"msg":    "Item created",
		"id":     item.ID,
	})
}

func (h *ItemHandler) sellMultipart(c echo.Context) error {
	name := c.FormValue("name")
	detail := c.FormValue("detail")
	sellerRaw := c.FormValue("userId")
	if sellerRaw == "" {
		sellerRaw = c.FormValue("seller")
	}
	if name == "" || detail == "" || sellerRaw == "" {
		return failJSON(c, http.StatusBadRequest, "Name, detail and userId are required")
	}

	seller, ok := requireSeller(c, sellerRaw)
	if !ok {
		return sellerMismatch(c)
	}

	status := model.StatusAvailable
	if raw := c.FormValue("status"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || !model.ValidStatus(parsed) {
			return failJSON(c, http.StatusBadRequest, "Invalid status value")
		}
		status = parsed
	}

	var createdAt *time.Time
	if raw := c.FormValue("date"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			return failJSON(c, http.StatusBadRequest, "Invalid date format")
		}
		createdAt = &parsed
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "Image file is required")
	}
	file, err := fileHeader.Open()
	if err != nil {
		return respondError(c, err)
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return respondError(c, err)
	}
	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	item, err := h.itemService.CreateItem(c.Request().Context(), service.CreateItemInput{
		Seller:           seller,
		Name:             name,
		Detail:           detail,
		Status:           status,
		ImageData:        data,
		ImageContentType: contentType,
		CreatedAt:        createdAt,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"status":   "success",
		"msg":      "Item created",
		"id":       item.ID,
		"imageUrl": item.Image,
	})
}

// Update godoc
// @Summary Update a listing (owner only)
// @Tags items
// @Accept json
// @Produce json
// @Param request body UpdateItemRequest true "Fields to update"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /sell [patch]
func (h *ItemHandler) Update(c echo.Context) error {
	var req UpdateItemRequest
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if req.ItemID == nil || req.Seller == "" || req.Date == "" {
		return failJSON(c, http.StatusBadRequest, "item_id, seller and date are required")
	}

	seller, ok := requireSeller(c, req.Seller)
	if !ok {
		return sellerMismatch(c)
	}

	updatedAt, err := parseDate(req.Date)
	if err != nil {
		return failJSON(c, http.StatusBadRequest, "Invalid date format")
	}

	if req.Status != nil && !model.ValidStatus(*req.Status) {
		return failJSON(c, http.StatusBadRequest, "Invalid status value")
	}

	item, err := h.itemService.UpdateItem(c.Request().Context(), *req.ItemID, seller, service.UpdateItemInput{
		Name:      req.Name,
		Detail:    req.Detail,
		Image:     req.Image,
		Status:    req.Status,
		UpdatedAt: updatedAt,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"msg":    "Item updated",
		"data":   item,
	})
}

// Delete godoc
// @Summary Delete a listing (owner only)
// @Tags items
// @Accept json
// @Produce json
// @Param request body ItemRefRequest true "uuid and item_id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /sell [delete]
func (h *ItemHandler) Delete(c echo.Context) error {
	var req ItemRefRequest
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if req.UUID == "" || req.ItemID == nil {
		return failJSON(c, http.StatusBadRequest, "uuid and item_id are required")
	}

	seller, ok := requireSeller(c, req.UUID)
	if !ok {
		return sellerMismatch(c)
	}

	if err := h.itemService.DeleteItem(c.Request().Context(), *req.ItemID, seller); err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"msg":    "Item deleted",
		"id":     *req.ItemID,
	})
}

// Buy godoc
// @Summary Purchase a listing
// @Tags items
// @Accept json
// @Produce json
// @Param request body ItemRefRequest true "uuid and item_id"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Security BearerAuth
// @Router /buy [patch]
func (h *ItemHandler) Buy(c echo.Context) error {
	var req ItemRefRequest
	if err := c.Bind(&req); err != nil {
		return failJSON(c, http.StatusBadRequest, "invalid request body")
	}
	if req.UUID == "" || req.ItemID == nil {
		return failJSON(c, http.StatusBadRequest, "User UUID and item_id are required")
	}

	buyer, ok := requireSeller(c, req.UUID)
	if !ok {
		return sellerMismatch(c)
	}

	item, err := h.itemService.Purchase(c.Request().Context(), *req.ItemID, buyer)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"status": "success",
		"msg":    "Item purchased",
		"data":   item,
	})
}

// requireSeller parses the body-supplied account uid and checks it against
// the JWT subject. Clients still echo the uid for backwards compatibility;
// the token is what actually authorizes the request.
func requireSeller(c echo.Context, raw string) (uuid.UUID, bool) {
	supplied, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	authenticated, ok := authUID(c)
	if !ok || authenticated != supplied {
		return uuid.Nil, false
	}
	return supplied, true
}

func sellerMismatch(c echo.Context) error {
	return failJSON(c, http.StatusForbidden, "account does not match authenticated user")
}

// parseDate accepts the ISO-8601 shapes the browser client sends.
func parseDate(raw string) (time.Time, error) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
