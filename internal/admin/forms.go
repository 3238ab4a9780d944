package admin

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/eleven-am/taskboard/pkg/orm"
)

const (
	msgRequired      = "This field is required."
	msgInteger       = "Enter a whole number."
	msgNonNegative   = "Ensure this value is greater than or equal to 0."
	msgInvalidChoice = "Select a valid choice. That choice is not one of the available choices."
)

// clean validates one raw form value and returns the typed value to store.
func (s *Site) clean(ctx context.Context, f Field, raw string, present bool) (interface{}, string, error) {
	switch f.Kind {
	case KindBoolean:
		return present && raw != "", "", nil

	case KindText, KindTextArea:
		value := strings.TrimSpace(raw)
		if value == "" && f.Required {
			return nil, msgRequired, nil
		}
		if n := utf8.RuneCountInString(value); f.MaxLength > 0 && n > f.MaxLength {
			return nil, fmt.Sprintf("Ensure this value has at most %d characters (it has %d).", f.MaxLength, n), nil
		}
		return value, "", nil

	case KindInteger:
		value := strings.TrimSpace(raw)
		if value == "" {
			if f.Required {
				return nil, msgRequired, nil
			}
			return nil, "", nil
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil || n > math.MaxInt32 || n < math.MinInt32 {
			return nil, msgInteger, nil
		}
		if f.NonNegative && n < 0 {
			return nil, msgNonNegative, nil
		}
		return n, "", nil

	case KindForeignKey:
		value := strings.TrimSpace(raw)
		if value == "" {
			if f.Required {
				return nil, msgRequired, nil
			}
			return nil, "", nil
		}
		id, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, msgInvalidChoice, nil
		}
		src, ok := s.sources[f.RelatedTable]
		if !ok {
			return nil, "", fmt.Errorf("no admin source for table %s", f.RelatedTable)
		}
		ok, err = src.exists(ctx, id)
		if err != nil {
			return nil, "", err
		}
		if !ok {
			return nil, msgInvalidChoice, nil
		}
		return id, "", nil
	}

	return nil, "", fmt.Errorf("field %s is not editable", f.Name)
}

// apply validates the editable fields in form and, when valid, copies them
// onto the object's record. Submitted values are kept for redisplay.
func (m *modelAdmin[T]) apply(ctx context.Context, obj *Object, form map[string][]string) orm.ValidationErrors {
	rec := obj.record.(*T)
	var errs orm.ValidationErrors
	cleaned := make(map[string]interface{})

	for _, f := range m.fields {
		if !f.Editable {
			continue
		}
		raw, present := formField(form, f.Name)
		obj.Values[f.Name] = raw

		value, msg, err := m.site.clean(ctx, f, raw, present)
		if err != nil {
			errs = append(errs, orm.ValidationError{Message: err.Error()})
			continue
		}
		if msg != "" {
			errs = append(errs, orm.ValidationError{Field: f.Name, Message: msg})
			continue
		}
		cleaned[f.Name] = value
	}

	if len(errs) > 0 {
		obj.Errors = errs
		return errs
	}

	for _, f := range m.fields {
		if v, ok := cleaned[f.Name]; ok {
			m.setValue(rec, f, v)
		}
	}
	return nil
}

// save inserts or updates the object. Constraint violations come back as
// validation errors; anything else is returned as an error.
func (m *modelAdmin[T]) save(ctx context.Context, obj *Object) (orm.ValidationErrors, error) {
	rec := obj.record.(*T)

	var err error
	if obj.ID == 0 {
		err = m.repository().Create(ctx, rec)
	} else {
		err = m.repository().Update(ctx, rec)
	}

	if err != nil {
		if errs, ok := m.constraintErrors(err); ok {
			obj.Errors = errs
			return errs, nil
		}
		return nil, err
	}

	saved := m.toObject(rec)
	*obj = *saved
	return nil, nil
}

// constraintErrors maps database constraint violations to form errors.
func (m *modelAdmin[T]) constraintErrors(err error) (orm.ValidationErrors, bool) {
	constraint := orm.GetConstraintName(err)
	column := strings.TrimPrefix(constraint, m.meta.TableName+"_")

	switch {
	case errors.Is(err, orm.ErrDuplicateKey):
		column = strings.TrimSuffix(column, "_key")
		if f, ok := m.fieldByColumn(column); ok {
			return orm.ValidationErrors{{
				Field:   f.Name,
				Message: fmt.Sprintf("%s with this %s already exists.", label(m.opts.Name), f.Label),
			}}, true
		}
		return orm.ValidationErrors{{Message: "A record with these values already exists."}}, true

	case errors.Is(err, orm.ErrCheckConstraint):
		column = strings.TrimSuffix(column, "_check")
		if f, ok := m.fieldByColumn(column); ok {
			return orm.ValidationErrors{{Field: f.Name, Message: fmt.Sprintf("Constraint %q is violated.", constraint)}}, true
		}
		return orm.ValidationErrors{{Message: fmt.Sprintf("Constraint %q is violated.", constraint)}}, true

	case errors.Is(err, orm.ErrForeignKey):
		return orm.ValidationErrors{{Message: "A related record no longer exists."}}, true

	case errors.Is(err, orm.ErrNotNull):
		if f, ok := m.fieldByColumn(extractColumn(err)); ok {
			return orm.ValidationErrors{{Field: f.Name, Message: msgRequired}}, true
		}
	}

	return nil, false
}

func (m *modelAdmin[T]) fieldByColumn(column string) (Field, bool) {
	for _, f := range m.fields {
		if f.Column.Name == column {
			return f, true
		}
	}
	return Field{}, false
}

func extractColumn(err error) string {
	var ormErr *orm.Error
	if errors.As(err, &ormErr) {
		return ormErr.Column
	}
	return ""
}

func formField(form map[string][]string, name string) (string, bool) {
	values, ok := form[name]
	if !ok || len(values) == 0 {
		return "", ok
	}
	return values[0], true
}
