package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"foodshare/internal/auth"
	"foodshare/internal/errors"
	"foodshare/internal/model"
	"foodshare/internal/service"
)

// UserHandler handles self-service account endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateDetailsRequest represents a change-details request.
type UpdateDetailsRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"required"`
	Surname   string `json:"surname" validate:"required"`
	DOB       string `json:"dob" validate:"required"`
	Address   string `json:"address" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Role      string `json:"role,omitempty"`
}

// NewsletterRequest represents a newsletter subscription change.
type NewsletterRequest struct {
	Subscribed *bool `json:"subscribed" validate:"required"`
}

// Account godoc
// @Summary Get the caller's account overview
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.AccountOverview
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /account [get]
func (h *UserHandler) Account(c echo.Context) error {
	identity, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}

	overview, err := h.userService.Overview(c.Request().Context(), identity.UserID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, overview)
}

// UpdateDetails godoc
// @Summary Update the caller's account details
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateDetailsRequest true "Updated details"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /account/details [put]
func (h *UserHandler) UpdateDetails(c echo.Context) error {
	identity, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}

	var req UpdateDetailsRequest
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

	dob, err := time.Parse(dobLayout, req.DOB)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "invalid dob, expected YYYY-MM-DD",
			Code:  "INVALID_DATE",
		})
	}

	// A form without an explicit role keeps the caller's current role.
	role := identity.Role
	if req.Role != "" {
		role = model.Role(req.Role)
	}

	user, err := h.userService.UpdateDetails(c.Request().Context(), identity.UserID, service.UpdateDetailsInput{
		Email:     req.Email,
		FirstName: req.FirstName,
		Surname:   req.Surname,
		DOB:       dob,
		Address:   req.Address,
		Phone:     req.Phone,
		Role:      role,
	})
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, user)
}

// DeleteAccount godoc
// @Summary Deactivate the caller's account
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Failure 401 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /account [delete]
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	identity, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}

	if err := h.userService.Deactivate(c.Request().Context(), identity.UserID); err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "account deactivated",
	})
}

// Newsletter godoc
// @Summary Change the caller's newsletter subscription
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body NewsletterRequest true "Subscription flag"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /account/newsletter [put]
func (h *UserHandler) Newsletter(c echo.Context) error {
	identity, err := auth.CurrentUser(c)
	if err != nil {
		return err
	}

	var req NewsletterRequest
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

	user, err := h.userService.SetNewsletter(c.Request().Context(), identity.UserID, *req.Subscribed)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
	}

	return c.JSON(http.StatusOK, user)
}
