package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chama/core/auth"
	"github.com/trezcool/chama/core/contact"
)

type contactApi struct {
	deps ServerDeps
}

func registerContactAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := contactApi{deps: deps}

	cg := g.Group("/contact")

	// anyone may submit the contact form
	cg.POST("", api.submit)

	// staff inbox; jwt attached per route so submissions stay open
	canManageUsers := requireCapability(auth.CapManageUsers)
	cg.GET("", api.query, jwt, canManageUsers)
	cg.DELETE("", api.destroyMultiple, jwt, canManageUsers)
}

func (api *contactApi) submit(ctx echo.Context) error {
	var data contact.NewMessage
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMessage")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	if _, err := api.deps.ContactSvc.Submit(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "submitting contact message")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Thank you for reaching out. We will get back to you shortly."})
}

func (api *contactApi) query(ctx echo.Context) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	msgs, err := api.deps.ContactSvc.Query(ctx.Request().Context(), ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying contact messages")
	}
	if msgs == nil {
		msgs = []contact.Message{}
	}
	return ctx.JSON(http.StatusOK, msgs)
}

func (api *contactApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.deps.ContactSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting contact messages")
	}
	return ctx.NoContent(http.StatusNoContent)
}
