package echoapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chama/core/auth"
	"github.com/trezcool/chama/core/member"
)

type memberApi struct {
	deps ServerDeps
}

func registerMemberAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := memberApi{deps: deps}

	mg := g.Group("/members", jwt)
	mg.GET("", api.query, requireCapability(auth.CapRead))
	mg.POST("", api.create, requireCapability(auth.CapManageUsers))
	mg.GET("/:id", api.retrieve, requireCapability(auth.CapRead))
	mg.PUT("/:id", api.update)
	mg.DELETE("/:id", api.destroy, requireCapability(auth.CapManageUsers))
}

func (api *memberApi) query(ctx echo.Context) error {
	var roles []string
	if raw := ctx.QueryParam("role"); raw != "" {
		for _, r := range strings.Split(raw, ",") {
			if r = strings.TrimSpace(r); r != "" {
				roles = append(roles, r)
			}
		}
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	members, err := api.deps.MemberSvc.Query(ctx.Request().Context(), roles, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying members")
	}
	if members == nil {
		members = []member.Member{}
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *memberApi) create(ctx echo.Context) error {
	var data member.NewMember
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewMember")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}

	mbr, err := api.deps.MemberSvc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating member")
	}
	return ctx.JSON(http.StatusCreated, mbr)
}

func (api *memberApi) retrieve(ctx echo.Context) error {
	mbr, err := api.deps.MemberSvc.GetByUserID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding member")
	}
	return ctx.JSON(http.StatusOK, mbr)
}

func (api *memberApi) update(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	// members may edit their own profile; changing roles takes a user manager
	isSelf := ctx.Param("id") == claims.Subject
	isManager := auth.RoleHasCapability(claims.Role, auth.CapManageUsers)
	if !(isSelf || isManager) {
		return errHttpForbidden
	}

	var data member.UpdateMember
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateMember")
	}
	if data.Role != "" && !isManager {
		return errHttpForbidden
	}

	rctx := ctx.Request().Context()
	orig, err := api.deps.MemberSvc.GetByUserID(rctx, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding member")
	}
	if err = data.Validate(orig, api.deps.Validate); err != nil {
		return err
	}

	mbr, err := api.deps.MemberSvc.Update(rctx, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating member")
	}
	return ctx.JSON(http.StatusOK, mbr)
}

func (api *memberApi) destroy(ctx echo.Context) error {
	if err := api.deps.MemberSvc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting member")
	}
	return ctx.NoContent(http.StatusNoContent)
}
