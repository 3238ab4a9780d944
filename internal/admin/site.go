package admin

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/eleven-am/taskboard/internal/accounts"
	"github.com/eleven-am/taskboard/internal/models"
	"github.com/eleven-am/taskboard/pkg/orm"
)

// Prefix is the URL path the admin is mounted under.
const Prefix = "/admin/"

// SiteOptions configures sessions and the clock used by date facets.
type SiteOptions struct {
	Secret     string
	SessionTTL time.Duration
	Now        func() time.Time
}

// Site is the admin application: registered models plus the HTTP handlers.
type Site struct {
	storm    *models.Storm
	accounts *accounts.Service
	admins   []ModelAdmin
	bySlug   map[string]ModelAdmin
	sources  map[string]ModelAdmin // keyed by table name
	pages    *renderer

	secret string
	ttl    time.Duration
	now    func() time.Time
}

// NewSite builds the admin with the Project, Stage and Task registrations.
func NewSite(storm *models.Storm, accts *accounts.Service, opts SiteOptions) (*Site, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.SessionTTL == 0 {
		opts.SessionTTL = 14 * 24 * time.Hour
	}

	pages, err := newRenderer()
	if err != nil {
		return nil, err
	}

	s := &Site{
		storm:    storm,
		accounts: accts,
		bySlug:   make(map[string]ModelAdmin),
		sources:  make(map[string]ModelAdmin),
		pages:    pages,
		secret:   opts.Secret,
		ttl:      opts.SessionTTL,
		now:      opts.Now,
	}

	if err := registerModels(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Register adds a model to the site. repo selects the model's repository
// from a Storm so the admin can rebind it inside transactions.
func Register[T any](s *Site, repo func(*models.Storm) *orm.Repository[T], opts ModelOptions) error {
	m, err := newModelAdmin(s, repo, opts)
	if err != nil {
		return err
	}
	if _, dup := s.sources[m.meta.TableName]; dup {
		return fmt.Errorf("table %s is already registered", m.meta.TableName)
	}

	s.admins = append(s.admins, m)
	s.sources[m.meta.TableName] = m
	if !opts.hidden {
		s.bySlug[opts.Slug] = m
	}
	return nil
}

// Models returns the visible registrations in registration order.
func (s *Site) Models() []*ModelOptions {
	var out []*ModelOptions
	for _, m := range s.admins {
		if !m.Options().hidden {
			out = append(out, m.Options())
		}
	}
	return out
}

// Handler returns the router serving the admin, metrics and health endpoints.
func (s *Site) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(requestID, s.observe)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", s.readyz).Methods(http.MethodGet)
	r.Handle("/admin", http.RedirectHandler(Prefix, http.StatusMovedPermanently))

	a := r.PathPrefix("/admin").Subrouter()
	a.HandleFunc("/login/", s.loginForm).Methods(http.MethodGet)
	a.HandleFunc("/login/", s.login).Methods(http.MethodPost)
	a.HandleFunc("/logout/", s.logout).Methods(http.MethodPost)

	p := a.NewRoute().Subrouter()
	p.Use(s.requireStaff)
	p.HandleFunc("/", s.index).Methods(http.MethodGet)
	p.HandleFunc("/{model}/", s.changelistView).Methods(http.MethodGet)
	p.HandleFunc("/{model}/", s.bulkEditView).Methods(http.MethodPost)
	p.HandleFunc("/{model}/add/", s.addView).Methods(http.MethodGet, http.MethodPost)
	p.HandleFunc("/{model}/{id:[0-9]+}/change/", s.changeView).Methods(http.MethodGet, http.MethodPost)
	p.HandleFunc("/{model}/{id:[0-9]+}/delete/", s.deleteView).Methods(http.MethodGet, http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.renderError(w, r, http.StatusNotFound, nil)
	})

	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Site) readyz(w http.ResponseWriter, r *http.Request) {
	if err := s.storm.GetDB().PingContext(r.Context()); err != nil {
		http.Error(w, "database not ready", http.StatusServiceUnavailable)
		return
	}
	healthz(w, r)
}
