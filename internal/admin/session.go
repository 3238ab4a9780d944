package admin

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/eleven-am/taskboard/internal/accounts"
	"github.com/eleven-am/taskboard/internal/logger"
	"github.com/eleven-am/taskboard/internal/models"
	"github.com/eleven-am/taskboard/pkg/orm"
)

const (
	sessionCookie = "taskboard_session"
	flashCookie   = "taskboard_flash"

	msgLoginFailed = "Please enter the correct username and password for a staff account. Note that both fields may be case-sensitive."
)

type contextKey int

const (
	userKey contextKey = iota
	requestIDKey
)

func currentUser(ctx context.Context) *models.User {
	u, _ := ctx.Value(userKey).(*models.User)
	return u
}

func (s *Site) setSession(w http.ResponseWriter, userID int64) error {
	token, err := accounts.IssueToken(userID, s.secret, s.ttl, s.now())
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     Prefix,
		MaxAge:   int(s.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     Prefix,
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionUser resolves the session cookie to an active staff user, or nil.
func (s *Site) sessionUser(r *http.Request) (*models.User, error) {
	c, err := r.Cookie(sessionCookie)
	if err != nil || c.Value == "" {
		return nil, nil
	}

	id, err := accounts.ParseToken(c.Value, s.secret, s.now)
	if err != nil {
		return nil, nil
	}

	user, err := s.accounts.Get(r.Context(), id)
	if errors.Is(err, orm.ErrNotFound) || errors.Is(err, accounts.ErrInvalidCredentials) {
		return nil, nil
	}
	return user, err
}

// requireStaff redirects anonymous requests to the login page.
func (s *Site) requireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := s.sessionUser(r)
		if err != nil {
			s.renderError(w, r, http.StatusInternalServerError, err)
			return
		}
		if user == nil {
			http.Redirect(w, r, Prefix+"login/?next="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, user)))
	})
}

// safeNext keeps redirects inside the admin.
func safeNext(next string) string {
	if !strings.HasPrefix(next, Prefix) || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return Prefix
	}
	return next
}

type loginPage struct {
	Username string
	Next     string
	Error    string
}

func (s *Site) loginForm(w http.ResponseWriter, r *http.Request) {
	if user, err := s.sessionUser(r); err == nil && user != nil {
		http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, "login.html", "Log in", loginPage{Next: r.URL.Query().Get("next")})
}

func (s *Site) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, err)
		return
	}

	username := r.PostForm.Get("username")
	next := r.PostForm.Get("next")

	user, err := s.accounts.Authenticate(r.Context(), username, r.PostForm.Get("password"))
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		s.render(w, r, http.StatusOK, "login.html", "Log in", loginPage{Username: username, Next: next, Error: msgLoginFailed})
		return
	}
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	if err := s.setSession(w, user.ID); err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	logger.Admin().Info("user logged in", "user_id", user.ID, "username", user.Username)
	http.Redirect(w, r, safeNext(next), http.StatusFound)
}

func (s *Site) logout(w http.ResponseWriter, r *http.Request) {
	clearCookie(w, sessionCookie)
	http.Redirect(w, r, Prefix+"login/", http.StatusFound)
}

// flash stores a one-shot message shown on the next rendered page.
func flash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(msg),
		Path:     Prefix,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func takeFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	clearCookie(w, flashCookie)
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}
