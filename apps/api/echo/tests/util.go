package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	. "github.com/studyhall/studyhall/apps/api/echo"
	"github.com/studyhall/studyhall/core"
	"github.com/studyhall/studyhall/core/access"
	"github.com/studyhall/studyhall/core/group"
	"github.com/studyhall/studyhall/core/note"
	"github.com/studyhall/studyhall/core/subject"
	"github.com/studyhall/studyhall/core/user"
	"github.com/studyhall/studyhall/services/email"
	"github.com/studyhall/studyhall/services/logger"
	"github.com/studyhall/studyhall/storage/database/sqlxrepos"
	"github.com/studyhall/studyhall/testutil"
)

var (
	conf     *core.Config
	usrRepo  user.Repository
	subjRepo subject.Repository
	noteRepo note.Repository
	identity *fakeIdentity

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errNotFound     = httpErr{Error: "not found"}
)

func setup(t *testing.T) Server {
	testutil.MockClock(t, time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC))
	emailsvc.ResetSentMessages()
	conf = testutil.NewConfig()

	// set up DB & repos
	db := testutil.PrepareDB(t)
	usrRepo = sqlxrepos.NewUserRepository(db)
	subjRepo = sqlxrepos.NewSubjectRepository(db)
	noteRepo = sqlxrepos.NewNoteRepository(db)
	guard := access.NewGuard(sqlxrepos.NewAccessRepository(db))

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	note.InitValidators(validate, translator)

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	identity = &fakeIdentity{identities: make(map[string]user.GoogleIdentity)}

	// set up server
	return NewServer(
		ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Validate:   validate,
			Translator: translator,
			Identity:   identity,
			UserSvc:    user.NewService(db, usrRepo),
			SubjectSvc: subject.NewService(db, subjRepo, guard, validate),
			NoteSvc:    note.NewService(db, noteRepo, guard, validate),
			GroupSvc: group.NewService(
				db, sqlxrepos.NewGroupRepository(db), usrRepo, guard, mailSvc, validate, conf,
			),
		},
	)
}

// fakeIdentity resolves authorization codes from a fixed table instead of calling Google.
type fakeIdentity struct {
	identities map[string]user.GoogleIdentity
}

func (fi *fakeIdentity) AuthCodeURL(state string) string {
	return "https://accounts.test/o/oauth2/auth?state=" + url.QueryEscape(state)
}

func (fi *fakeIdentity) Identity(_ context.Context, code string) (user.GoogleIdentity, error) {
	ident, ok := fi.identities[code]
	if !ok {
		return user.GoogleIdentity{}, errors.New("invalid_grant")
	}
	return ident, nil
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
	extra    interface{}
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	token, err := GenerateToken(conf, GetUserClaims(conf, usr))
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func marchallList(t *testing.T, objs ...interface{}) []byte {
	if objs == nil {
		objs = []interface{}{}
	}
	data, err := json.Marshal(objs)
	if err != nil {
		t.Fatalf("marchallList() failed: %v", err)
	}
	return data
}

// decode unmarshals a response body, failing the test on malformed JSON.
func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
