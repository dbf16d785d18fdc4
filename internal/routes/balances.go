package routes

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/tiendabot/storefront/internal/access"
	"github.com/tiendabot/storefront/internal/middleware"
	"github.com/tiendabot/storefront/internal/storefront"
)

const defaultTopLimit = 10

type amountRequest struct {
	Amount float64 `json:"amount"`
}

// RegisterBalanceRoutes wires the gift balance endpoints. The router must
// already be guarded by middleware.GatewayAuth; mutation handlers run before
// credit and debit.
func RegisterBalanceRoutes(r fiber.Router, svc *storefront.Service, mutation ...fiber.Handler) {
	r.Get("/", func(c *fiber.Ctx) error {
		caller, err := callerOf(c)
		if err != nil {
			return err
		}
		top, err := svc.TopBalances(c.UserContext(), caller, c.QueryInt("limit", defaultTopLimit))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(fiber.Map{"balances": top})
	})

	r.Get("/me", func(c *fiber.Ctx) error {
		caller, err := callerOf(c)
		if err != nil {
			return err
		}
		view, err := svc.Balance(c.UserContext(), caller, "")
		if err != nil {
			return httpError(err)
		}
		return c.JSON(view)
	})

	r.Get("/:userId", func(c *fiber.Ctx) error {
		caller, err := callerOf(c)
		if err != nil {
			return err
		}
		view, err := svc.Balance(c.UserContext(), caller, c.Params("userId"))
		if err != nil {
			return httpError(err)
		}
		return c.JSON(view)
	})

	r.Post("/:userId/credit", chain(mutation, mutationHandler(svc.Credit))...)
	r.Post("/:userId/debit", chain(mutation, mutationHandler(svc.Debit))...)
}

type mutateFunc func(ctx context.Context, caller access.Caller, target string, amount float64) (storefront.BalanceView, error)

func mutationHandler(op mutateFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, err := callerOf(c)
		if err != nil {
			return err
		}
		var req amountRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(http.StatusBadRequest, "invalid request body")
		}
		view, err := op(c.UserContext(), caller, c.Params("userId"), req.Amount)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(view)
	}
}

func callerOf(c *fiber.Ctx) (access.Caller, error) {
	caller, ok := middleware.CallerFrom(c)
	if !ok {
		return access.Caller{}, fiber.NewError(http.StatusUnauthorized, "missing caller")
	}
	return caller, nil
}

func chain(mw []fiber.Handler, h fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(mw)+1)
	out = append(out, mw...)
	return append(out, h)
}
