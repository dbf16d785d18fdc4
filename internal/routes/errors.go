package routes

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tiendabot/storefront/internal/access"
	"github.com/tiendabot/storefront/internal/ledger"
	"github.com/tiendabot/storefront/internal/pricing"
	"github.com/tiendabot/storefront/internal/rates"
	"github.com/tiendabot/storefront/internal/storefront"
)

// httpError maps domain sentinels onto HTTP statuses.
func httpError(err error) error {
	switch {
	case errors.Is(err, storefront.ErrUnknownCatalog):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, pricing.ErrUnsupportedCurrency),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrInvalidUser):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	case errors.Is(err, access.ErrUnauthorized):
		return fiber.NewError(http.StatusForbidden, err.Error())
	case errors.Is(err, rates.ErrRateUnavailable):
		return fiber.NewError(http.StatusServiceUnavailable, "exchange rate unavailable, try again shortly")
	case errors.Is(err, ledger.ErrStoreIO):
		return fiber.NewError(http.StatusInternalServerError, "balance store failure")
	default:
		return fiber.NewError(http.StatusInternalServerError, "internal error")
	}
}

// ErrorHandler renders errors as JSON bodies.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	msg := "internal error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}
	return c.Status(code).JSON(fiber.Map{"error": msg})
}
