package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/studyhall/studyhall/core/note"
	"github.com/studyhall/studyhall/core/subject"
)

type subjectApi struct {
	svc     subject.Service
	noteSvc note.Service
}

func registerSubjectAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc subject.Service, noteSvc note.Service) {
	api := subjectApi{
		svc:     svc,
		noteSvc: noteSvc,
	}

	sg := g.Group("/subjects", jwt, callerMiddleware)
	sg.GET("", api.query)
	sg.POST("", api.create)

	// detail endpoints
	sg.GET("/:id", api.retrieve)
	sg.PUT("/:id", api.update)
	sg.DELETE("/:id", api.destroy)

	sg.GET("/:id/notes", api.queryNotes)
	sg.POST("/:id/notes", api.createNote)
}

// Handlers

func (api *subjectApi) query(ctx echo.Context) error {
	uid, _ := getCallerID(ctx)
	subjects, err := api.svc.List(ctx.Request().Context(), uid)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *subjectApi) create(ctx echo.Context) error {
	var data subject.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}

	uid, _ := getCallerID(ctx)
	subj, err := api.svc.Create(ctx.Request().Context(), uid, data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusOK, subj)
}

func (api *subjectApi) retrieve(ctx echo.Context) error {
	uid, _ := getCallerID(ctx)
	subj, err := api.svc.Get(ctx.Request().Context(), uid, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "retrieving subject")
	}
	return ctx.JSON(http.StatusOK, subj)
}

func (api *subjectApi) update(ctx echo.Context) error {
	var data subject.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}

	uid, _ := getCallerID(ctx)
	subj, err := api.svc.Update(ctx.Request().Context(), uid, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, subj)
}

func (api *subjectApi) destroy(ctx echo.Context) error {
	uid, _ := getCallerID(ctx)
	if err := api.svc.Delete(ctx.Request().Context(), uid, ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Subject deleted"})
}

func (api *subjectApi) queryNotes(ctx echo.Context) error {
	var filter note.QueryFilter
	if err := ctx.Bind(&filter); err != nil {
		return errors.Wrap(err, "binding to QueryFilter")
	}

	uid, _ := getCallerID(ctx)
	page, err := api.noteSvc.Query(ctx.Request().Context(), uid, ctx.Param("id"), filter)
	if err != nil {
		return errors.Wrap(err, "querying notes")
	}
	return ctx.JSON(http.StatusOK, page)
}

func (api *subjectApi) createNote(ctx echo.Context) error {
	var data note.NewNote
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewNote")
	}

	uid, _ := getCallerID(ctx)
	n, err := api.noteSvc.Create(ctx.Request().Context(), uid, ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "creating note")
	}
	return ctx.JSON(http.StatusOK, n)
}

type MessageResponse struct {
	Message string `json:"message"`
}
