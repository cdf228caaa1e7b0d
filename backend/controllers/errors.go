package controllers

import (
	"errors"

	"lostfound/backend/services"
	"lostfound/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// respondError maps the services failure taxonomy onto HTTP statuses.
// Anything outside the taxonomy is an opaque internal error.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		return utils.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		return utils.Forbidden(c, err.Error())
	default:
		return utils.InternalServerError(c, "internal error")
	}
}
