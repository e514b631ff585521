package testutil

import (
	"context"
	"io"
	"log"
	"net/mail"
	"sync"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/volatiletech/null/v8"

	"github.com/studyhall/studyhall/core"
	"github.com/studyhall/studyhall/core/note"
	"github.com/studyhall/studyhall/core/subject"
	"github.com/studyhall/studyhall/core/user"
	"github.com/studyhall/studyhall/storage/database"
)

var gooseLogger sync.Once

// NewConfig returns an application config suited for tests: debug off, test mode on,
// in-memory sqlite database.
func NewConfig() *core.Config {
	conf := &core.Config{
		TestMode:           true,
		Env:                "TEST",
		Build:              "test",
		AppName:            "StudyHall",
		SecretKey:          "test-secret-key",
		JWTExpirationDelta: time.Hour,
		FrontendBaseURL:    "http://localhost:5173",
		AllowedOrigins:     []string{"http://localhost:5173"},
		DefaultFromEmail:   mail.Address{Name: "StudyHall", Address: "noreply@localhost"},
	}
	conf.Database.Engine = database.EngineSQLite
	conf.Database.Path = ":memory:"
	conf.Google.ClientID = "google-client-id"
	conf.Google.ClientSecret = "google-client-secret"
	conf.Google.RedirectURL = "http://localhost:5000/api/auth/google/callback"
	return conf
}

// PrepareDB opens a fresh in-memory database with every migration applied.
// The database is closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	gooseLogger.Do(func() { goose.SetLogger(log.New(io.Discard, "", 0)) })

	db, err := database.Open(NewConfig())
	if err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = database.Migrate(db); err != nil {
		t.Fatalf("PrepareDB() failed: %v", err)
	}
	return db
}

// MockClock makes core.NowFunc return strictly increasing times, one second apart,
// and restores it when the test ends.
func MockClock(t *testing.T, start time.Time) {
	t.Helper()
	var mu sync.Mutex
	now := start.UTC()
	orig := core.NowFunc
	core.NowFunc = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
	t.Cleanup(func() { core.NowFunc = orig })
}

func CreateUser(t *testing.T, repo user.Repository, name, email string, createdAt ...time.Time) user.User {
	t.Helper()
	tstamp := core.NowFunc()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr, err := repo.CreateUser(context.Background(), user.User{
		Name:      name,
		Email:     email,
		CreatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateSubject(t *testing.T, repo subject.Repository, owner user.User, name string) subject.Subject {
	t.Helper()
	now := core.NowFunc()
	subj, err := repo.CreateSubject(context.Background(), subject.Subject{
		UserID:    owner.ID,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subj
}

func CreateNote(t *testing.T, repo note.Repository, subj subject.Subject, title, tags string, attachment ...string) note.Note {
	t.Helper()
	now := core.NowFunc()
	n := note.Note{
		SubjectID: subj.ID,
		Title:     title,
		Content:   "# " + title,
		Tags:      tags,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if len(attachment) > 0 {
		n.AttachmentURL = null.StringFrom(attachment[0])
	}
	n, err := repo.CreateNote(context.Background(), n)
	if err != nil {
		t.Fatalf("CreateNote() failed: %v", err)
	}
	return n
}
