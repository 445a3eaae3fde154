package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kurromiii/E-Commerce/api/middleware"
	"github.com/kurromiii/E-Commerce/internal/dto"
	"github.com/kurromiii/E-Commerce/internal/entity"
	"github.com/kurromiii/E-Commerce/internal/service"
	"github.com/kurromiii/E-Commerce/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type AccountHandler struct {
	Service  *service.AccountService
	Validate *validator.Validate
}

func NewAccountHandler(svc *service.AccountService, validate *validator.Validate) *AccountHandler {
	return &AccountHandler{
		Service:  svc,
		Validate: validate,
	}
}

func (h *AccountHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	input := service.RegisterInput{
		Username:    req.Username,
		Password:    req.Password,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	}
	user, err := h.Service.Register(c.Request().Context(), input)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, dto.UserResponseFromEntity(user))
}

func (h *AccountHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	token, err := h.Service.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeServiceError(c, err)
	}
	if token == "" {
		// unknown user and wrong password are deliberately the same answer
		return writeError(c, http.StatusBadRequest, errors.New("invalid username or password"))
	}
	return c.JSON(http.StatusOK, dto.LoginResponse{Token: token})
}

func (h *AccountHandler) VerifyEmail(c echo.Context) error {
	var req dto.VerifyEmailRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	verified, err := h.Service.VerifyEmail(c.Request().Context(), req.Token)
	if err != nil {
		return writeServiceError(c, err)
	}
	if !verified {
		return writeError(c, http.StatusConflict, errors.New("token unknown or account already verified"))
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AccountHandler) PasswordForgot(c echo.Context) error {
	var req dto.PasswordForgotRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.Service.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AccountHandler) PasswordReset(c echo.Context) error {
	var req dto.PasswordResetRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.Service.ResetPassword(c.Request().Context(), req.Token, req.NewPassword); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AccountHandler) Me(c echo.Context) error {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	return c.JSON(http.StatusOK, dto.UserResponseFromEntity(user))
}

// Delete soft-deletes an account. Only the owner may do it.
func (h *AccountHandler) Delete(c echo.Context) error {
	requester, ok := middleware.UserFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid id"))
	}
	if !h.Service.UserMayAccess(requester, id) {
		return echo.NewHTTPError(http.StatusForbidden, "forbidden")
	}
	if err := h.Service.LogicalRemove(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// AdminRemove hard-deletes an account with its addresses and tokens.
func (h *AccountHandler) AdminRemove(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid id"))
	}
	if err := h.Service.Remove(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AccountHandler) AdminAssignRole(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid id"))
	}
	var req dto.AssignRoleRequest
	if err := decodeJSON(c, &req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.validate(req); err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	if err := h.Service.AssignRole(c.Request().Context(), id, entity.Role(req.Role)); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AccountHandler) validate(value any) error {
	if h.Validate == nil {
		return nil
	}
	return h.Validate.Struct(value)
}

func decodeJSON(c echo.Context, target any) error {
	decoder := json.NewDecoder(c.Request().Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(target); err != nil {
		return errors.New("invalid request body")
	}
	return nil
}

func writeError(c echo.Context, status int, err error) error {
	return c.JSON(status, map[string]string{"error": err.Error()})
}

// writeServiceError maps core errors to deterministic statuses without
// leaking storage internals.
func writeServiceError(c echo.Context, err error) error {
	var exists *service.AccountExistsError
	var notVerified *service.NotVerifiedError
	var notFound *service.NotFoundError
	switch {
	case errors.As(err, &exists):
		return writeError(c, http.StatusConflict, err)
	case errors.As(err, &notVerified):
		return c.JSON(http.StatusForbidden, map[string]any{
			"error":          "email not verified",
			"new_email_sent": notVerified.NewEmailSent,
		})
	case errors.As(err, &notFound):
		return writeError(c, http.StatusNotFound, err)
	case errors.Is(err, service.ErrEmailNotFound):
		return writeError(c, http.StatusBadRequest, err)
	case errors.Is(err, utils.ErrMalformedToken), errors.Is(err, utils.ErrBadSignature):
		return writeError(c, http.StatusBadRequest, errors.New("invalid token"))
	case errors.Is(err, service.ErrEmailFailure):
		return writeError(c, http.StatusBadGateway, errors.New("could not send email"))
	default:
		return writeError(c, http.StatusInternalServerError, errors.New("internal error"))
	}
}
