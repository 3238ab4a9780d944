package admin

import (
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/eleven-am/taskboard/internal/accounts"
	"github.com/eleven-am/taskboard/internal/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const testSecret = "test-secret"

var fixedNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

var (
	userColumns    = []string{"id", "username", "email", "password_hash", "is_staff", "is_superuser", "is_active", "date_joined", "last_login"}
	projectColumns = []string{"id", "name", "description", "created_at"}
	stageColumns   = []string{"id", "name", "order_no"}
	taskColumns    = []string{"id", "title", "description", "project_id", "assignee_id", "stage_id", "created_at", "updated_at"}
)

const (
	selectUsers    = "SELECT id, username, email, password_hash, is_staff, is_superuser, is_active, date_joined, last_login FROM users"
	selectProjects = "SELECT id, name, description, created_at FROM projects"
	selectStages   = "SELECT id, name, order_no FROM stages"
	selectTasks    = "SELECT id, title, description, project_id, assignee_id, stage_id, created_at, updated_at FROM tasks"
)

func newTestSite(t *testing.T) (*Site, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	storm, err := models.NewStorm(sqlx.NewDb(db, "postgres"))
	require.NoError(t, err)

	site, err := NewSite(storm, accounts.NewService(storm.Users), SiteOptions{
		Secret:     testSecret,
		SessionTTL: time.Hour,
		Now:        func() time.Time { return fixedNow },
	})
	require.NoError(t, err)

	return site, mock
}

func staffRow(id int64, username, hash string) *sqlmock.Rows {
	return sqlmock.NewRows(userColumns).
		AddRow(id, username, username+"@example.com", hash, true, true, true, fixedNow, nil)
}

// expectSession queues the lookup requireStaff performs for user 1.
func expectSession(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`^` + regexpQuote(selectUsers+" WHERE id = $1 LIMIT 1") + `$`).
		WithArgs(int64(1)).
		WillReturnRows(staffRow(1, "admin", "unused"))
}

// sessionCookie returns a valid session for user 1.
func sessionFor(t *testing.T) *http.Cookie {
	t.Helper()

	token, err := accounts.IssueToken(1, testSecret, time.Hour, fixedNow)
	require.NoError(t, err)
	return &http.Cookie{Name: sessionCookie, Value: token}
}

func get(t *testing.T, site *Site, target string, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, target, nil)
	if authed {
		req.AddCookie(sessionFor(t))
	}
	rec := httptest.NewRecorder()
	site.Handler().ServeHTTP(rec, req)
	return rec
}

func post(t *testing.T, site *Site, target string, form url.Values, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if authed {
		req.AddCookie(sessionFor(t))
	}
	rec := httptest.NewRecorder()
	site.Handler().ServeHTTP(rec, req)
	return rec
}

func newRequest(method, target string, body io.Reader) *http.Request {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req
}

func serve(site *Site, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	site.Handler().ServeHTTP(rec, req)
	return rec
}
