package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"foodshare/internal/auth"
	"foodshare/internal/errors"
	"foodshare/internal/service"
)

// AdvertHandler handles advert lifecycle endpoints.
type AdvertHandler struct {
	advertService service.AdvertService
}

// NewAdvertHandler creates a new advert handler.
func NewAdvertHandler(advertService service.AdvertService) *AdvertHandler {
	return &AdvertHandler{advertService: advertService}
}

// CreateAdvertRequest represents a create-advert request.
type CreateAdvertRequest struct {
	Title     string `json:"title" validate:"required,max=100"`
	Contents  string `json:"contents" validate:"required"`
	Address   string `json:"address" validate:"required"`
	Latitude  string `json:"latitude,omitempty"`
	Longitude string `json:"longitude,omitempty"`
	Expiry    string `json:"expiry" validate:"required"`
}

// CollectResponse represents a successful collection.
type CollectResponse struct {
	OrderID  uint   `json:"order_id"`
	AdvertID uint   `json:"advert_id"`
	SellerID uint   `json:"seller_id"`
	BuyerID  uint   `json:"buyer_id"`
	Date     string `json:"date"`
}

func parseAdvertID(c echo.Context) (uint, *echo.HTTPError) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid advert id",
			Code:  "INVALID_ID",
		})
	}
	return uint(id), nil
}

func parseCoordinate(value, field string) (*decimal.Decimal, *echo.HTTPError) {
	if value == "" {
		return nil, nil
	}
	coord, err := decimal.NewFromString(value)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid " + field,
			Code:  "INVALID_COORDINATE",
		})
	}
	return &coord, nil
}

// Create godoc
// @Summary Post a new food advert
// @Tags adverts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateAdvertRequest true "Advert data"
// @Success 201 {object} model.Advert
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /adverts [post]
func (h *AdvertHandler) Create(c echo.Context) error {
	identity, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}

	var req CreateAdvertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid request body",
			Code:  "INVALID_REQUEST",
		})
	}

	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "VALIDATION_ERROR",
		})
	}

	expiry, err := time.Parse(time.RFC3339, req.Expiry)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid expiry, expected RFC 3339 timestamp",
			Code:  "INVALID_DATE",
		})
	}

	latitude, httpErr := parseCoordinate(req.Latitude, "latitude")
	if httpErr != nil {
		return httpErr
	}
	longitude, httpErr := parseCoordinate(req.Longitude, "longitude")
	if httpErr != nil {
		return httpErr
	}

	advert, err := h.advertService.Create(c.Request().Context(), service.CreateAdvertInput{
		Title:     req.Title,
		Contents:  req.Contents,
		Address:   req.Address,
		Latitude:  latitude,
		Longitude: longitude,
		OwnerID:   identity.UserID,
		Expiry:    expiry,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusCreated, advert)
}

// List godoc
// @Summary List all available adverts
// @Tags adverts
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Advert
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /adverts [get]
func (h *AdvertHandler) List(c echo.Context) error {
	adverts, err := h.advertService.ListAvailable(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, adverts)
}

// Details godoc
// @Summary Get one advert
// @Tags adverts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Advert ID"
// @Success 200 {object} model.Advert
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /adverts/{id} [get]
func (h *AdvertHandler) Details(c echo.Context) error {
	advertID, httpErr := parseAdvertID(c)
	if httpErr != nil {
		return httpErr
	}

	advert, err := h.advertService.Get(c.Request().Context(), advertID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, advert)
}

// Collect godoc
// @Summary Collect an advert
// @Tags adverts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Advert ID"
// @Success 200 {object} CollectResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /adverts/{id}/collect [post]
func (h *AdvertHandler) Collect(c echo.Context) error {
	identity, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}

	advertID, httpErr := parseAdvertID(c)
	if httpErr != nil {
		return httpErr
	}

	collection, err := h.advertService.Collect(c.Request().Context(), advertID, identity.UserID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, CollectResponse{
		OrderID:  collection.ID,
		AdvertID: collection.AdvertID,
		SellerID: collection.SellerID,
		BuyerID:  collection.BuyerID,
		Date:     collection.Date.UTC().Format(time.RFC3339),
	})
}

// Delete godoc
// @Summary Delete an advert
// @Tags adverts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Advert ID"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /adverts/{id} [delete]
func (h *AdvertHandler) Delete(c echo.Context) error {
	identity, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}

	advertID, httpErr := parseAdvertID(c)
	if httpErr != nil {
		return httpErr
	}

	if err := h.advertService.Delete(c.Request().Context(), advertID, identity.UserID, identity.Role); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "advert deleted",
	})
}
