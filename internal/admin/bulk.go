package admin

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"

	"github.com/eleven-am/taskboard/internal/models"
	"github.com/eleven-am/taskboard/pkg/orm"
)

// msgGone is reported when a row disappears between render and submit.
const msgGone = "This record no longer exists."

var errBulkInvalid = errors.New("bulk edit has invalid rows")

// bulkState is the outcome of a changelist form submission.
type bulkState struct {
	submitted map[string]string // raw values keyed by input name
	errors    map[int64]orm.ValidationErrors
	saved     int
}

func (b *bulkState) valid() bool {
	return len(b.errors) == 0
}

func (b *bulkState) fail(id int64, field, msg string) {
	b.errors[id] = append(b.errors[id], orm.ValidationError{Field: field, Message: msg})
}

// rowIDs collects the ids named by the hidden form-{id}-id inputs.
func rowIDs(form map[string][]string) []int64 {
	var ids []int64
	for key := range form {
		if !strings.HasPrefix(key, "form-") || !strings.HasSuffix(key, "-id") {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(key, "form-"), "-id"), 10, 64)
		if err == nil && id > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// bulkEdit validates every submitted row before writing anything. When all
// rows are valid, the changed ones are saved in a single transaction.
func (m *modelAdmin[T]) bulkEdit(ctx context.Context, form map[string][]string) (*bulkState, error) {
	state := &bulkState{
		submitted: make(map[string]string),
		errors:    make(map[int64]orm.ValidationErrors),
	}

	ids := rowIDs(form)
	cleaned := make(map[int64]map[string]interface{}, len(ids))

	for _, id := range ids {
		cleaned[id] = make(map[string]interface{})
		for _, name := range m.opts.ListEditable {
			f := m.byName[name]
			input := inputName(id, name)
			raw, present := formField(form, input)
			state.submitted[input] = raw

			value, msg, err := m.site.clean(ctx, f, raw, present)
			if err != nil {
				return nil, err
			}
			if msg != "" {
				state.fail(id, name, msg)
				continue
			}
			cleaned[id][name] = value
		}
	}

	if !state.valid() {
		return state, nil
	}

	err := m.site.storm.WithTransaction(ctx, func(tx *models.Storm) error {
		repo := m.repo(tx)
		for _, id := range ids {
			rec, err := repo.FindByID(ctx, id)
			if errors.Is(err, orm.ErrNotFound) {
				state.fail(id, "", msgGone)
				continue
			}
			if err != nil {
				return err
			}

			var changed []string
			for _, name := range m.opts.ListEditable {
				f := m.byName[name]
				before := m.formValue(rec, f)
				m.setValue(rec, f, cleaned[id][name])
				if m.formValue(rec, f) != before {
					changed = append(changed, f.Column.Name)
				}
			}
			if len(changed) == 0 {
				continue
			}

			if err := repo.UpdateColumns(ctx, rec, changed...); err != nil {
				if errs, ok := m.constraintErrors(err); ok {
					state.errors[id] = append(state.errors[id], errs...)
					continue
				}
				return err
			}
			state.saved++
		}

		if !state.valid() {
			return errBulkInvalid
		}
		return nil
	})

	if errors.Is(err, errBulkInvalid) {
		state.saved = 0
		return state, nil
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}
