package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studyhall/studyhall/core/group"
)

type groupApi struct {
	svc group.Service
}

func registerGroupAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc group.Service) {
	api := groupApi{svc: svc}

	gg := g.Group("/groups", jwt, callerMiddleware)
	gg.GET("", api.query)
	gg.POST("", api.create)

	// detail endpoints (members only)
	gg.GET("/:id", api.retrieve)
	gg.GET("/:id/members", api.queryMembers)
	gg.POST("/:id/members", api.invite)
	gg.GET("/:id/notes", api.queryNotes)
	gg.DELETE("/:id/notes/:noteId", api.unshare)
}

// Handlers

func (api *groupApi) query(ctx echo.Context) error {
	uid, _ := getCallerID(ctx)
	groups, err := api.svc.ListForUser(ctx.Request().Context(), uid)
	if err != nil {
		return errors.Wrap(err, "querying groups")
	}
	return ctx.JSON(http.StatusOK, groups)
}

func (api *groupApi) create(ctx echo.Context) error {
	var data group.NewGroup
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewGroup")
	}

	uid, _ := getCallerID(ctx)
	grp, err := api.svc.Create(ctx.Request().Context(), uid, data)
	if err != nil {
		return errors.Wrap(err, "creating group")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) retrieve(ctx echo.Context) error {
	uid, _ := getCallerID(ctx)
	grp, err := api.svc.Get(ctx.Request().Context(), uid, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "retrieving group")
	}
	return ctx.JSON(http.StatusOK, grp)
}

func (api *groupApi) queryMembers(ctx echo.Context) error {
	uid, _ := getCallerID(ctx)
	members, err := api.svc.ListMembers(ctx.Request().Context(), uid, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying members")
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *groupApi) invite(ctx echo.Context) error {
	var data group.InviteRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to InviteRequest")
	}

	uid, _ := getCallerID(ctx)
	m, err := api.svc.Invite(ctx.Request().Context(), uid, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "inviting member")
	}
	return ctx.JSON(http.StatusOK, m)
}

func (api *groupApi) queryNotes(ctx echo.Context) error {
	uid, _ := getCallerID(ctx)
	notes, err := api.svc.ListNotes(ctx.Request().Context(), uid, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "querying group notes")
	}
	return ctx.JSON(http.StatusOK, notes)
}

func (api *groupApi) unshare(ctx echo.Context) error {
	uid, _ := getCallerID(ctx)
	if err := api.svc.UnshareNote(ctx.Request().Context(), uid, ctx.Param("noteId"), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "unsharing note")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Share deleted"})
}
