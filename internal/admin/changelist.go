package admin

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/eleven-am/taskboard/pkg/orm"
)

// PerPage is the changelist page size.
const PerPage = 100

// Date facet choices, in display order.
var dateFacets = []struct {
	Value string
	Label string
}{
	{"today", "Today"},
	{"past_7_days", "Past 7 days"},
	{"this_month", "This month"},
	{"this_year", "This year"},
}

// ChangelistParams are the query string controls of a changelist.
type ChangelistParams struct {
	Query   string
	Filters map[string]string
	Order   string
	Page    int
}

func parseChangelistParams(opts *ModelOptions, q url.Values) ChangelistParams {
	p := ChangelistParams{
		Query:   strings.TrimSpace(q.Get("q")),
		Filters: make(map[string]string),
		Order:   q.Get("o"),
		Page:    1,
	}
	for _, name := range opts.ListFilter {
		if v := q.Get(name); v != "" {
			p.Filters[name] = v
		}
	}
	if n, err := strconv.Atoi(q.Get("p")); err == nil && n > 0 {
		p.Page = n
	}
	return p
}

// Encode renders the params as a query string, omitting defaults.
func (p ChangelistParams) Encode() string {
	v := url.Values{}
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	for name, value := range p.Filters {
		v.Set(name, value)
	}
	if p.Order != "" {
		v.Set("o", p.Order)
	}
	if p.Page > 1 {
		v.Set("p", strconv.Itoa(p.Page))
	}
	if len(v) == 0 {
		return ""
	}
	return "?" + v.Encode()
}

func (p ChangelistParams) clone() ChangelistParams {
	c := p
	c.Filters = make(map[string]string, len(p.Filters))
	for k, v := range p.Filters {
		c.Filters[k] = v
	}
	return c
}

// withFilter returns the URL for the params with one facet changed; "" clears it.
func (p ChangelistParams) withFilter(name, value string) string {
	c := p.clone()
	c.Page = 1
	if value == "" {
		delete(c.Filters, name)
	} else {
		c.Filters[name] = value
	}
	return c.Encode()
}

func (p ChangelistParams) withOrder(order string) string {
	c := p.clone()
	c.Order = order
	return c.Encode()
}

func (p ChangelistParams) withPage(page int) string {
	c := p.clone()
	c.Page = page
	return c.Encode()
}

// Changelist is everything the changelist template renders.
type Changelist struct {
	Params   ChangelistParams
	Headers  []Header
	Rows     []Row
	Facets   []Facet
	Total    int64
	Pages    []PageLink
	Editable bool
	Search   bool
	Errors   int
}

type Header struct {
	Label  string
	URL    string
	Sorted string // "asc", "desc" or ""
}

type Row struct {
	ID     int64
	Cells  []Cell
	Errors []string
}

type Cell struct {
	Field    Field
	Display  string
	Value    string // raw input value for editable cells
	Input    string // form-{id}-{field}
	Editable bool
	Link     bool
	Choices  []Choice
	Errors   []string
}

type Facet struct {
	Title   string
	Choices []FacetChoice
}

type FacetChoice struct {
	Label    string
	URL      string
	Selected bool
}

type PageLink struct {
	Number  int
	URL     string
	Current bool
}

// conditions turns search and facet params into WHERE conditions.
// Unparseable facet values are ignored.
func (m *modelAdmin[T]) conditions(p ChangelistParams, now time.Time) []orm.Condition {
	var conds []orm.Condition

	if p.Query != "" && len(m.opts.SearchFields) > 0 {
		for _, term := range strings.Fields(p.Query) {
			var matches []orm.Condition
			for _, name := range m.opts.SearchFields {
				col := orm.StringColumn{Column: orm.Column[string]{Name: m.byName[name].Column.Name, Table: m.meta.TableName}}
				matches = append(matches, col.IContains(term))
			}
			conds = append(conds, orm.Or(matches...))
		}
	}

	for _, name := range m.opts.ListFilter {
		value, ok := p.Filters[name]
		if !ok {
			continue
		}
		f := m.byName[name]

		switch f.Kind {
		case KindDateTime:
			col := orm.TimeColumn{ComparableColumn: orm.ComparableColumn[time.Time]{Column: orm.Column[time.Time]{Name: f.Column.Name, Table: m.meta.TableName}}}
			switch value {
			case "today":
				conds = append(conds, col.Today(now))
			case "past_7_days":
				conds = append(conds, col.LastNDays(now, 7))
			case "this_month":
				conds = append(conds, col.ThisMonth(now))
			case "this_year":
				conds = append(conds, col.ThisYear(now))
			}
		case KindForeignKey:
			if id, err := strconv.ParseInt(value, 10, 64); err == nil {
				conds = append(conds, orm.Column[int64]{Name: f.Column.Name, Table: m.meta.TableName}.Eq(id))
			}
		}
	}

	return conds
}

// orderBy applies the requested column first, then the default ordering,
// then the primary key so pages are stable.
func (m *modelAdmin[T]) orderBy(p ChangelistParams) []string {
	var out []string
	if name, desc := strings.TrimPrefix(p.Order, "-"), strings.HasPrefix(p.Order, "-"); m.sortable(name) {
		out = append(out, m.sortExprs(m.byName[name], desc)...)
	}

	out = append(out, m.defaultOrder()...)

	pk := m.meta.TableName + "." + m.meta.PrimaryKey.Name
	for _, o := range out {
		if strings.HasPrefix(o, pk+" ") {
			return out
		}
	}
	return append(out, pk+" DESC")
}

// sortExprs orders by a displayed column. Foreign keys follow the related
// model's ordering through a scalar subquery, reversed when desc is set.
func (m *modelAdmin[T]) sortExprs(f Field, desc bool) []string {
	col := m.meta.TableName + "." + f.Column.Name

	var related ModelAdmin
	if f.Kind == KindForeignKey {
		related = m.site.sources[f.RelatedTable]
	}
	if related == nil || len(related.Options().ModelOrdering) == 0 {
		return []string{col + " " + direction(desc)}
	}

	rmeta := related.Metadata()
	var out []string
	for _, o := range related.Options().ModelOrdering {
		name, rdesc := strings.TrimPrefix(o, "-"), strings.HasPrefix(o, "-")
		rcol := name
		if rf, ok := related.Field(name); ok {
			rcol = rf.Column.Name
		}
		out = append(out, fmt.Sprintf("(SELECT %[1]s.%[2]s FROM %[1]s WHERE %[1]s.%[3]s = %[4]s) %[5]s",
			rmeta.TableName, rcol, rmeta.PrimaryKey.Name, col, direction(rdesc != desc)))
	}
	return out
}

func direction(desc bool) string {
	if desc {
		return "DESC"
	}
	return "ASC"
}

func (m *modelAdmin[T]) sortable(name string) bool {
	for _, d := range m.opts.ListDisplay {
		if d == name {
			return true
		}
	}
	return false
}

func (m *modelAdmin[T]) changelist(ctx context.Context, p ChangelistParams, edits *bulkState) (*Changelist, error) {
	repo := m.repository()
	conds := m.conditions(p, m.site.now())

	total, err := repo.Query(ctx).Where(conds...).Count()
	if err != nil {
		return nil, err
	}

	pages := int((total + PerPage - 1) / PerPage)
	if pages == 0 {
		pages = 1
	}
	if p.Page > pages {
		p.Page = pages
	}

	records, err := repo.Query(ctx).
		Where(conds...).
		OrderBy(m.orderBy(p)...).
		Limit(PerPage).
		Offset(uint64((p.Page - 1) * PerPage)).
		Find()
	if err != nil {
		return nil, err
	}

	cl := &Changelist{
		Params:   p,
		Total:    total,
		Editable: len(m.opts.ListEditable) > 0,
		Search:   len(m.opts.SearchFields) > 0,
	}

	related, err := m.relatedLabels(ctx, records)
	if err != nil {
		return nil, err
	}

	choices := make(map[string][]Choice)
	for _, name := range m.opts.ListEditable {
		f := m.byName[name]
		if f.Kind == KindForeignKey {
			if choices[name], err = m.site.sources[f.RelatedTable].choices(ctx); err != nil {
				return nil, err
			}
		}
	}

	cl.Headers = m.headers(p)
	for i := range records {
		cl.Rows = append(cl.Rows, m.row(&records[i], related, choices, edits))
	}

	if cl.Facets, err = m.facets(ctx, p); err != nil {
		return nil, err
	}

	if edits != nil {
		cl.Errors = len(edits.errors)
	}

	for n := 1; n <= pages && pages > 1; n++ {
		cl.Pages = append(cl.Pages, PageLink{Number: n, URL: p.withPage(n), Current: n == p.Page})
	}

	return cl, nil
}

// relatedLabels loads display strings for every foreign key shown on the page.
func (m *modelAdmin[T]) relatedLabels(ctx context.Context, records []T) (map[string]map[int64]string, error) {
	out := make(map[string]map[int64]string)
	for _, name := range m.opts.ListDisplay {
		f := m.byName[name]
		if f.Kind != KindForeignKey {
			continue
		}

		seen := make(map[int64]bool)
		var ids []int64
		for i := range records {
			raw := m.formValue(&records[i], f)
			if raw == "" {
				continue
			}
			id, _ := strconv.ParseInt(raw, 10, 64)
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}

		labels, err := m.site.sources[f.RelatedTable].labels(ctx, ids)
		if err != nil {
			return nil, err
		}
		out[name] = labels
	}
	return out, nil
}

func (m *modelAdmin[T]) headers(p ChangelistParams) []Header {
	var out []Header
	for _, name := range m.opts.ListDisplay {
		h := Header{Label: m.byName[name].Label, URL: p.withOrder(name)}
		switch p.Order {
		case name:
			h.Sorted = "asc"
			h.URL = p.withOrder("-" + name)
		case "-" + name:
			h.Sorted = "desc"
		}
		out = append(out, h)
	}
	return out
}

func (m *modelAdmin[T]) row(rec *T, related map[string]map[int64]string, choices map[string][]Choice, edits *bulkState) Row {
	id := m.id(rec)
	row := Row{ID: id}
	if edits != nil {
		row.Errors = edits.errors[id].For("")
	}

	editable := make(map[string]bool, len(m.opts.ListEditable))
	for _, name := range m.opts.ListEditable {
		editable[name] = true
	}

	for i, name := range m.opts.ListDisplay {
		f := m.byName[name]
		raw := m.formValue(rec, f)
		cell := Cell{
			Field:   f,
			Display: m.display(rec, f, raw, related),
			Value:   raw,
			Link:    i == 0,
		}

		if editable[name] {
			cell.Editable = true
			cell.Input = inputName(id, name)
			cell.Choices = choices[name]
			if edits != nil {
				if v, ok := edits.submitted[cell.Input]; ok {
					cell.Value = v
				}
				cell.Errors = edits.errors[id].For(name)
			}
		}
		row.Cells = append(row.Cells, cell)
	}
	return row
}

func (m *modelAdmin[T]) display(rec *T, f Field, raw string, related map[string]map[int64]string) string {
	switch f.Kind {
	case KindForeignKey:
		if raw == "" {
			return "-"
		}
		id, _ := strconv.ParseInt(raw, 10, 64)
		if l, ok := related[f.Name][id]; ok {
			return l
		}
		return raw
	case KindDateTime:
		v := m.fieldValue(rec, f).Interface()
		if t, ok := v.(time.Time); ok {
			return formatTime(t)
		}
	case KindBoolean:
		if raw == "on" {
			return "yes"
		}
		return "no"
	}
	return raw
}

func (m *modelAdmin[T]) facets(ctx context.Context, p ChangelistParams) ([]Facet, error) {
	var out []Facet
	for _, name := range m.opts.ListFilter {
		f := m.byName[name]
		current := p.Filters[name]
		facet := Facet{Title: f.Label}

		switch f.Kind {
		case KindDateTime:
			facet.Choices = append(facet.Choices, FacetChoice{Label: "Any date", URL: p.withFilter(name, ""), Selected: current == ""})
			for _, d := range dateFacets {
				facet.Choices = append(facet.Choices, FacetChoice{Label: d.Label, URL: p.withFilter(name, d.Value), Selected: current == d.Value})
			}
		case KindForeignKey:
			facet.Choices = append(facet.Choices, FacetChoice{Label: "All", URL: p.withFilter(name, ""), Selected: current == ""})
			choices, err := m.site.sources[f.RelatedTable].choices(ctx)
			if err != nil {
				return nil, err
			}
			for _, c := range choices {
				value := strconv.FormatInt(c.ID, 10)
				facet.Choices = append(facet.Choices, FacetChoice{Label: c.Label, URL: p.withFilter(name, value), Selected: current == value})
			}
		}
		out = append(out, facet)
	}
	return out, nil
}

func inputName(id int64, field string) string {
	return "form-" + strconv.FormatInt(id, 10) + "-" + field
}

func formatTime(t time.Time) string {
	return t.UTC().Format("Jan. 2, 2006, 15:04")
}
