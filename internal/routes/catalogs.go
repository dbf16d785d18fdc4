package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/tiendabot/storefront/internal/pricing"
	"github.com/tiendabot/storefront/internal/storefront"
)

// RegisterCatalogRoutes exposes the public catalog and price endpoints.
func RegisterCatalogRoutes(r fiber.Router, svc *storefront.Service) {
	r.Get("/currencies", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"base": pricing.BaseCurrency, "currencies": svc.Currencies()})
	})

	r.Get("/catalogs", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"catalogs": svc.Catalogs()})
	})

	r.Get("/catalogs/:catalog/prices", func(c *fiber.Ctx) error {
		currency := c.Query("currency", pricing.BaseCurrency)
		sheet, err := svc.PriceList(c.UserContext(), c.Params("catalog"), currency)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(sheet)
	})
}
