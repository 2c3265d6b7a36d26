package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chama/core/auth"
	"github.com/trezcool/chama/core/event"
)

type eventApi struct {
	deps ServerDeps
}

func registerEventAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := eventApi{deps: deps}

	eg := g.Group("/events")

	// public endpoints: published events only
	eg.GET("", api.query)
	eg.GET("/:slug", api.retrieve)

	// staff endpoints; jwt attached per route so the public ones stay open
	eg.GET("/all", api.queryAll, jwt, requireCapability(auth.CapWrite))
	eg.POST("", api.create, jwt, requireCapability(auth.CapWrite))
	eg.PUT("/:slug", api.update, jwt, requireCapability(auth.CapWrite))
	eg.DELETE("", api.destroyMultiple, jwt, requireCapability(auth.CapDelete))
}

func (api *eventApi) query(ctx echo.Context) error {
	return api.doQuery(ctx, true /* publishedOnly */)
}

func (api *eventApi) queryAll(ctx echo.Context) error {
	return api.doQuery(ctx, false /* publishedOnly */)
}

func (api *eventApi) doQuery(ctx echo.Context, publishedOnly bool) error {
	filter := new(event.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []event.Event{})
	}
	filter.PublishedOnly = publishedOnly
	ordering := new(Ordering)
	ordering.Bind(ctx)

	events, err := api.deps.EventSvc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying events")
	}
	if events == nil {
		events = []event.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *eventApi) retrieve(ctx echo.Context) error {
	evt, err := api.deps.EventSvc.GetBySlug(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		return errors.Wrap(err, "finding event")
	}
	if !evt.Published {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *eventApi) create(ctx echo.Context) error {
	var data event.NewEvent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEvent")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	evt, err := api.deps.EventSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating event")
	}
	return ctx.JSON(http.StatusCreated, evt)
}

func (api *eventApi) update(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	ref := ctx.Param("slug")
	orig, err := api.deps.EventSvc.GetByID(rctx, ref)
	if errors.Cause(err) == event.ErrNotFound {
		orig, err = api.deps.EventSvc.GetBySlug(rctx, ref)
	}
	if err != nil {
		return errors.Wrap(err, "finding event")
	}

	var data event.UpdateEvent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEvent")
	}
	if err = data.Validate(orig, api.deps.Validate); err != nil {
		return err
	}

	evt, err := api.deps.EventSvc.Update(rctx, orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating event")
	}
	return ctx.JSON(http.StatusOK, evt)
}

func (api *eventApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.deps.EventSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting events")
	}
	return ctx.NoContent(http.StatusNoContent)
}
