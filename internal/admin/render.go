package admin

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/eleven-am/taskboard/internal/logger"
	"github.com/eleven-am/taskboard/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"login.html",
	"index.html",
	"changelist.html",
	"form.html",
	"delete_confirm.html",
	"delete_protected.html",
	"error.html",
}

var templateFuncs = template.FuncMap{
	"idstr": func(id int64) string { return strconv.FormatInt(id, 10) },
}

// renderer holds one template set per page, each layered over base.html.
type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	base, err := template.New("base.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base template: %w", err)
	}

	r := &renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name); err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// pageData is the value every template executes with.
type pageData struct {
	Title     string
	User      *models.User
	Models    []*ModelOptions
	Flash     string
	RequestID string
	Data      interface{}
}

func (s *Site) render(w http.ResponseWriter, r *http.Request, status int, page, title string, data interface{}) {
	t, ok := s.pages.pages[page]
	if !ok {
		s.renderError(w, r, http.StatusInternalServerError, fmt.Errorf("unknown template %s", page))
		return
	}

	pd := pageData{
		Title:     title,
		User:      currentUser(r.Context()),
		RequestID: RequestID(r.Context()),
		Data:      data,
	}
	if pd.User != nil {
		pd.Models = s.Models()
		pd.Flash = takeFlash(w, r)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base.html", pd); err != nil {
		logger.Admin().Error("failed to render template", "template", page, "error", err)
		http.Error(w, "Server Error (500)", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type errorPage struct {
	Status  int
	Message string
}

var errorMessages = map[int]string{
	http.StatusBadRequest:          "Bad Request (400)",
	http.StatusNotFound:            "Not Found",
	http.StatusInternalServerError: "Server Error (500)",
}

func (s *Site) renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	if err != nil {
		log := logger.Admin().Warn
		if status >= http.StatusInternalServerError {
			log = logger.Admin().Error
		}
		log("request failed", "request_id", RequestID(r.Context()), "path", r.URL.Path, "status", status, "error", err)
	}

	msg, ok := errorMessages[status]
	if !ok {
		msg = http.StatusText(status)
	}
	s.render(w, r, status, "error.html", msg, errorPage{Status: status, Message: msg})
}
