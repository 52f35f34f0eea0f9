package httpserver

import (
	"errors"
	"math"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/mailcode/registrator/internal/core/domain/registration"
)

type issueCodeRequest struct {
	Email string `json:"email" form:"email"`
}

type verifyRequest struct {
	Email string `json:"email" form:"email"`
	Code  string `json:"code" form:"code"`
}

// issueCode handles POST /api/v1/apply: accepts an email and triggers
// out-of-band delivery of a one-time code.
func (s *Server) issueCode(c echo.Context) error {
	var req issueCodeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		req.Email = c.QueryParam("email")
	}

	email, err := s.registrationSvc.IssueCode(c.Request().Context(), req.Email)
	if err != nil {
		return s.registrationError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"email": email})
}

// verify handles POST /api/v1/register: exchanges an email/code pair for a
// signed access token.
func (s *Server) verify(c echo.Context) error {
	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Email == "" {
		req.Email = c.QueryParam("email")
	}
	if req.Code == "" {
		req.Code = c.QueryParam("code")
	}

	token, err := s.registrationSvc.Verify(c.Request().Context(), req.Email, req.Code)
	if err != nil {
		return s.registrationError(c, err)
	}

	return c.JSON(http.StatusOK, map[string]string{"token": token})
}

// registrationError maps the expected registration outcomes onto HTTP
// statuses. Anything unrecognized is an infrastructure failure: logged and
// reported as a plain 500.
func (s *Server) registrationError(c echo.Context, err error) error {
	var validationErr *registration.ValidationError
	if errors.As(err, &validationErr) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"errors": validationErr.Fields,
		})
	}

	var conflictErr *registration.ConflictError
	if errors.As(err, &conflictErr) {
		if conflictErr.RetryAfter > 0 {
			seconds := int(math.Ceil(conflictErr.RetryAfter.Seconds()))
			c.Response().Header().Set("Retry-After", strconv.Itoa(seconds))
		}
		return c.JSON(http.StatusConflict, map[string]string{"message": conflictErr.Error()})
	}

	if errors.Is(err, registration.ErrCodeNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"message": err.Error()})
	}

	if errors.Is(err, registration.ErrInvalidCode) {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": err.Error()})
	}

	if s.logger != nil {
		s.logger.WithError(err).Error("registration request failed")
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
}
