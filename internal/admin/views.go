package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/eleven-am/taskboard/internal/logger"
	"github.com/eleven-am/taskboard/pkg/orm"
)

// model resolves the {model} route variable, rendering 404 when unknown.
func (s *Site) model(w http.ResponseWriter, r *http.Request) (ModelAdmin, bool) {
	m, ok := s.bySlug[mux.Vars(r)["model"]]
	if !ok {
		s.renderError(w, r, http.StatusNotFound, nil)
	}
	return m, ok
}

// loadObject resolves {model} and {id}, rendering 404 when either is missing.
func (s *Site) loadObject(w http.ResponseWriter, r *http.Request) (ModelAdmin, *Object, bool) {
	m, ok := s.model(w, r)
	if !ok {
		return nil, nil, false
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		s.renderError(w, r, http.StatusNotFound, nil)
		return nil, nil, false
	}

	obj, err := m.object(r.Context(), id)
	if errors.Is(err, orm.ErrNotFound) {
		s.renderError(w, r, http.StatusNotFound, nil)
		return nil, nil, false
	}
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return nil, nil, false
	}
	return m, obj, true
}

func (s *Site) index(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "index.html", "Site administration", nil)
}

type changelistPage struct {
	Model *ModelOptions
	List  *Changelist
}

func (s *Site) changelistView(w http.ResponseWriter, r *http.Request) {
	m, ok := s.model(w, r)
	if !ok {
		return
	}

	params := parseChangelistParams(m.Options(), r.URL.Query())
	cl, err := m.changelist(r.Context(), params, nil)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	s.render(w, r, http.StatusOK, "changelist.html", "Select "+m.Options().Name+" to change", changelistPage{Model: m.Options(), List: cl})
}

func (s *Site) bulkEditView(w http.ResponseWriter, r *http.Request) {
	m, ok := s.model(w, r)
	if !ok {
		return
	}
	if len(m.Options().ListEditable) == 0 {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, err)
		return
	}

	state, err := m.bulkEdit(r.Context(), r.PostForm)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	params := parseChangelistParams(m.Options(), r.URL.Query())
	if !state.valid() {
		cl, err := m.changelist(r.Context(), params, state)
		if err != nil {
			s.renderError(w, r, http.StatusInternalServerError, err)
			return
		}
		s.render(w, r, http.StatusOK, "changelist.html", "Select "+m.Options().Name+" to change", changelistPage{Model: m.Options(), List: cl})
		return
	}

	if state.saved > 0 {
		noun := m.Options().Name
		if state.saved != 1 {
			noun = m.Options().Plural
		}
		verb := "was"
		if state.saved != 1 {
			verb = "were"
		}
		flash(w, fmt.Sprintf("%d %s %s changed successfully.", state.saved, noun, verb))
		logger.Admin().Info("bulk edit saved", "model", m.Options().Slug, "rows", state.saved, "user_id", currentUser(r.Context()).ID)
	}
	http.Redirect(w, r, m.Options().URL()+params.Encode(), http.StatusFound)
}

// FormField is one input on the add/change form.
type FormField struct {
	Field   Field
	Value   string
	Errors  []string
	Choices []Choice
}

type formPage struct {
	Model          *ModelOptions
	Object         *Object
	Fields         []FormField
	Add            bool
	NonFieldErrors []string
}

func (s *Site) formFields(r *http.Request, m ModelAdmin, obj *Object) (*formPage, error) {
	page := &formPage{Model: m.Options(), Object: obj, Add: obj.ID == 0}
	for _, f := range m.Fields() {
		if !f.Editable {
			continue
		}
		ff := FormField{Field: f, Value: obj.Values[f.Name], Errors: obj.Errors.For(f.Name)}
		if f.Kind == KindForeignKey {
			choices, err := s.sources[f.RelatedTable].choices(r.Context())
			if err != nil {
				return nil, err
			}
			ff.Choices = choices
		}
		page.Fields = append(page.Fields, ff)
	}
	page.NonFieldErrors = obj.Errors.For("")
	return page, nil
}

func (s *Site) renderForm(w http.ResponseWriter, r *http.Request, m ModelAdmin, obj *Object) {
	page, err := s.formFields(r, m, obj)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	title := "Change " + m.Options().Name
	if page.Add {
		title = "Add " + m.Options().Name
	}
	s.render(w, r, http.StatusOK, "form.html", title, page)
}

// submit validates and saves a form post, then redirects like the admin
// buttons ask: _continue back to the object, _addanother to a blank form.
func (s *Site) submit(w http.ResponseWriter, r *http.Request, m ModelAdmin, obj *Object) {
	if err := r.ParseForm(); err != nil {
		s.renderError(w, r, http.StatusBadRequest, err)
		return
	}

	adding := obj.ID == 0
	if errs := m.apply(r.Context(), obj, r.PostForm); len(errs) > 0 {
		s.renderForm(w, r, m, obj)
		return
	}

	errs, err := m.save(r.Context(), obj)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}
	if len(errs) > 0 {
		s.renderForm(w, r, m, obj)
		return
	}

	opts := m.Options()
	verb := "changed"
	if adding {
		verb = "added"
	}
	logger.Admin().Info("object saved", "model", opts.Slug, "id", obj.ID, "action", verb, "user_id", currentUser(r.Context()).ID)

	switch {
	case r.PostForm.Get("_continue") != "":
		flash(w, fmt.Sprintf("The %s “%s” was %s successfully. You may edit it again below.", opts.Name, obj.Label, verb))
		http.Redirect(w, r, opts.ChangeURL(obj.ID), http.StatusFound)
	case r.PostForm.Get("_addanother") != "":
		flash(w, fmt.Sprintf("The %s “%s” was %s successfully. You may add another %s below.", opts.Name, obj.Label, verb, opts.Name))
		http.Redirect(w, r, opts.AddURL(), http.StatusFound)
	default:
		flash(w, fmt.Sprintf("The %s “%s” was %s successfully.", opts.Name, obj.Label, verb))
		http.Redirect(w, r, opts.URL(), http.StatusFound)
	}
}

func (s *Site) addView(w http.ResponseWriter, r *http.Request) {
	m, ok := s.model(w, r)
	if !ok {
		return
	}

	obj := m.blank()
	if r.Method == http.MethodPost {
		s.submit(w, r, m, obj)
		return
	}
	s.renderForm(w, r, m, obj)
}

func (s *Site) changeView(w http.ResponseWriter, r *http.Request) {
	m, obj, ok := s.loadObject(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		s.submit(w, r, m, obj)
		return
	}
	s.renderForm(w, r, m, obj)
}

type deletePage struct {
	Model   *ModelOptions
	Preview *DeletePreview
}

// deleteView confirms and performs deletes. Objects protected by RESTRICT
// references render the "cannot delete" page with status 409.
func (s *Site) deleteView(w http.ResponseWriter, r *http.Request) {
	m, obj, ok := s.loadObject(w, r)
	if !ok {
		return
	}
	opts := m.Options()

	preview, err := m.deletePreview(r.Context(), obj)
	if err != nil {
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	if preview.Blocked() {
		s.render(w, r, http.StatusConflict, "delete_protected.html", "Cannot delete "+opts.Name, deletePage{Model: opts, Preview: preview})
		return
	}

	if r.Method != http.MethodPost {
		s.render(w, r, http.StatusOK, "delete_confirm.html", "Are you sure?", deletePage{Model: opts, Preview: preview})
		return
	}

	err = m.remove(r.Context(), obj.ID)
	switch {
	case errors.Is(err, orm.ErrRestricted):
		// A protecting row appeared after the preview was taken.
		if preview, err = m.deletePreview(r.Context(), obj); err != nil {
			s.renderError(w, r, http.StatusInternalServerError, err)
			return
		}
		s.render(w, r, http.StatusConflict, "delete_protected.html", "Cannot delete "+opts.Name, deletePage{Model: opts, Preview: preview})
		return
	case errors.Is(err, orm.ErrNotFound):
		s.renderError(w, r, http.StatusNotFound, nil)
		return
	case err != nil:
		s.renderError(w, r, http.StatusInternalServerError, err)
		return
	}

	logger.Admin().Info("object deleted", "model", opts.Slug, "id", obj.ID, "user_id", currentUser(r.Context()).ID)
	flash(w, fmt.Sprintf("The %s “%s” was deleted successfully.", opts.Name, obj.Label))
	http.Redirect(w, r, opts.URL(), http.StatusFound)
}
