package admin

import (
	"context"
)

// RelatedGroup lists the rows of one model affected by a delete.
type RelatedGroup struct {
	Model   string
	Objects []Choice
}

// DeletePreview describes what deleting an object would do to related rows.
// Protected groups block the delete.
type DeletePreview struct {
	Object    *Object
	Deleted   []RelatedGroup
	Nullified []RelatedGroup
	Protected []RelatedGroup
}

func (p *DeletePreview) Blocked() bool {
	return len(p.Protected) > 0
}

func (m *modelAdmin[T]) deletePreview(ctx context.Context, obj *Object) (*DeletePreview, error) {
	preview := &DeletePreview{Object: obj}

	for _, ref := range m.site.admins {
		for _, col := range ref.Metadata().Columns {
			fk := col.ForeignKey
			if fk == nil || fk.Table != m.meta.TableName {
				continue
			}

			rows, err := ref.referencing(ctx, col.Name, obj.ID)
			if err != nil {
				return nil, err
			}
			if len(rows) == 0 {
				continue
			}

			group := RelatedGroup{Model: ref.Options().Plural, Objects: rows}
			switch fk.OnDelete {
			case "CASCADE":
				preview.Deleted = append(preview.Deleted, group)
			case "SET NULL":
				preview.Nullified = append(preview.Nullified, group)
			default:
				preview.Protected = append(preview.Protected, group)
			}
		}
	}

	return preview, nil
}
