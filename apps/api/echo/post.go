package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chama/core/auth"
	"github.com/trezcool/chama/core/post"
)

type postApi struct {
	deps ServerDeps
}

func registerPostAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := postApi{deps: deps}

	pg := g.Group("/posts")

	// public endpoints: published posts only
	pg.GET("", api.query)
	pg.GET("/:slug", api.retrieve)

	// blog staff endpoints; jwt attached per route so the public ones stay open
	canManageBlog := requireCapability(auth.CapManageBlog)
	pg.GET("/all", api.queryAll, jwt, canManageBlog)
	pg.POST("", api.create, jwt, canManageBlog)
	pg.PUT("/:slug", api.update, jwt, canManageBlog)
	pg.DELETE("", api.destroyMultiple, jwt, canManageBlog)
}

func (api *postApi) query(ctx echo.Context) error {
	return api.doQuery(ctx, true /* publishedOnly */)
}

func (api *postApi) queryAll(ctx echo.Context) error {
	return api.doQuery(ctx, false /* publishedOnly */)
}

func (api *postApi) doQuery(ctx echo.Context, publishedOnly bool) error {
	ordering := new(Ordering)
	ordering.Bind(ctx)

	posts, err := api.deps.PostSvc.Query(ctx.Request().Context(), publishedOnly, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying posts")
	}
	if posts == nil {
		posts = []post.Post{}
	}
	return ctx.JSON(http.StatusOK, posts)
}

func (api *postApi) retrieve(ctx echo.Context) error {
	pst, err := api.deps.PostSvc.GetBySlug(ctx.Request().Context(), ctx.Param("slug"))
	if err != nil {
		return errors.Wrap(err, "finding post")
	}
	if !pst.Published() {
		return errHttpNotFound
	}
	return ctx.JSON(http.StatusOK, pst)
}

func (api *postApi) create(ctx echo.Context) error {
	var data post.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	pst, err := api.deps.PostSvc.Create(ctx.Request().Context(), claims.Subject, data)
	if err != nil {
		return errors.Wrap(err, "creating post")
	}
	return ctx.JSON(http.StatusCreated, pst)
}

func (api *postApi) update(ctx echo.Context) error {
	rctx := ctx.Request().Context()
	ref := ctx.Param("slug")
	orig, err := api.deps.PostSvc.GetByID(rctx, ref)
	if errors.Cause(err) == post.ErrNotFound {
		orig, err = api.deps.PostSvc.GetBySlug(rctx, ref)
	}
	if err != nil {
		return errors.Wrap(err, "finding post")
	}

	var data post.UpdatePost
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdatePost")
	}
	if err = data.Validate(orig, api.deps.Validate); err != nil {
		return err
	}

	pst, err := api.deps.PostSvc.Update(rctx, orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating post")
	}
	return ctx.JSON(http.StatusOK, pst)
}

func (api *postApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.deps.PostSvc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting posts")
	}
	return ctx.NoContent(http.StatusNoContent)
}
