package tests

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/studyhall/studyhall/apps/api/echo"
	"github.com/studyhall/studyhall/core/note"
	"github.com/studyhall/studyhall/testutil"
)

func Test_noteApi_retrieve(t *testing.T) {
	app := setup(t)

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice@test.cd")
	bob := testutil.CreateUser(t, usrRepo, "Bob", "bob@test.cd")
	lecture := testutil.CreateNote(t, noteRepo, testutil.CreateSubject(t, subjRepo, alice, "Macroeconomics"), "Lecture 1", "exam", "https://files.test/l1.pdf")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Non-owner gets not found", token: getToken(t, bob), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "Owner", token: getToken(t, alice), wantCode: http.StatusOK, wantData: marchallObj(t, lecture)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		tt.path = "/api/notes/" + lecture.ID

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_noteApi_update(t *testing.T) {
	app := setup(t)

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice@test.cd")
	bob := testutil.CreateUser(t, usrRepo, "Bob", "bob@test.cd")
	lecture := testutil.CreateNote(t, noteRepo, testutil.CreateSubject(t, subjRepo, alice, "Macroeconomics"), "Lecture 1", "exam", "https://files.test/l1.pdf")
	path := "/api/notes/" + lecture.ID

	t.Run("Non-owner gets not found", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, bob), marchallObj(t, note.UpdateNote{Title: "Mine"}))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)}, rec)
	})

	t.Run("Too long title", func(t *testing.T) {
		long := make([]byte, 256)
		for i := range long {
			long[i] = 'a'
		}
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, alice), marchallObj(t, note.UpdateNote{Title: string(long)}))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"title": "this field is too long"}),
		}, rec)
	})

	t.Run("Partial update", func(t *testing.T) {
		body := []byte(`{"content": "supply & demand", "tags": " exam , , midterm ", "attachment": ""}`)
		req, rec := newAuthRequest(http.MethodPut, path, getToken(t, alice), body)
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got note.Note
		decode(t, rec, &got)
		assert.Equal(t, "Lecture 1", got.Title)
		assert.Equal(t, "supply & demand", got.Content)
		assert.Equal(t, "exam,midterm", got.Tags)
		assert.False(t, got.HasAttachment())
		assert.True(t, got.UpdatedAt.After(lecture.UpdatedAt))
	})
}

func Test_noteApi_destroy(t *testing.T) {
	app := setup(t)

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice@test.cd")
	bob := testutil.CreateUser(t, usrRepo, "Bob", "bob@test.cd")
	macro := testutil.CreateSubject(t, subjRepo, alice, "Macroeconomics")
	lecture := testutil.CreateNote(t, noteRepo, macro, "Lecture 1", "exam")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Non-owner gets not found", token: getToken(t, bob), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "Deleted", token: getToken(t, alice), wantCode: http.StatusOK, wantData: marchallObj(t, MessageResponse{Message: "Note deleted"})},
		{name: "Already deleted", token: getToken(t, alice), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete
		tt.path = "/api/notes/" + lecture.ID

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}

	// the subject survives its notes
	_, err := subjRepo.GetSubject(context.Background(), macro.ID)
	assert.NoError(t, err)
}
