package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studyhall/studyhall/core/group"
	"github.com/studyhall/studyhall/core/note"
)

type noteApi struct {
	svc    note.Service
	grpSvc group.Service
}

func registerNoteAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc note.Service, grpSvc group.Service) {
	api := noteApi{
		svc:    svc,
		grpSvc: grpSvc,
	}

	ng := g.Group("/notes", jwt, callerMiddleware)
	ng.GET("/:id", api.retrieve)
	ng.PUT("/:id", api.update)
	ng.DELETE("/:id", api.destroy)
	ng.POST("/:id/share", api.share)
}

// Handlers

func (api *noteApi) retrieve(ctx echo.Context) error {
	uid, _ := getCallerID(ctx)
	n, err := api.svc.Get(ctx.Request().Context(), uid, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "retrieving note")
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *noteApi) update(ctx echo.Context) error {
	var data note.UpdateNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateNote")
	}

	uid, _ := getCallerID(ctx)
	n, err := api.svc.Update(ctx.Request().Context(), uid, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating note")
	}
	return ctx.JSON(http.StatusOK, n)
}

func (api *noteApi) destroy(ctx echo.Context) error {
	uid, _ := getCallerID(ctx)
	if err := api.svc.Delete(ctx.Request().Context(), uid, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting note")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Note deleted"})
}

func (api *noteApi) share(ctx echo.Context) error {
	var data group.ShareRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ShareRequest")
	}

	uid, _ := getCallerID(ctx)
	share, err := api.grpSvc.ShareNote(ctx.Request().Context(), uid, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "sharing note")
	}
	return ctx.JSON(http.StatusOK, share)
}
