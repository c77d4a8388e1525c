package sheet

import (
	"errors"
	"strings"

	"csreport/internal/domain"
)

type Bound struct {
	Sheet string
	Rows  []domain.TicketRow
	// Columns holds the header name each configured role resolved to.
	Columns map[domain.Role]string
	// Absent lists optional roles that were configured but not found.
	Absent []domain.Role
}

func (b *Bound) Has(role domain.Role) bool {
	_, ok := b.Columns[role]
	return ok
}

// Bind validates the role-to-column mapping against the table header and
// then extracts one TicketRow per data row. A required role that is not
// configured or not present fails with a *domain.SchemaError before any row
// is read.
func Bind(t *Table, refs map[domain.Role]string, required []domain.Role) (*Bound, error) {
	b := &Bound{Sheet: t.Sheet, Columns: map[domain.Role]string{}}
	idx := map[domain.Role]int{}

	isRequired := func(r domain.Role) bool {
		for _, q := range required {
			if q == r {
				return true
			}
		}
		return false
	}

	for _, role := range domain.AllRoles {
		ref := strings.TrimSpace(refs[role])
		if ref == "" {
			if isRequired(role) {
				return nil, &domain.SchemaError{Sheet: t.Sheet, Role: role, Reason: "no column configured"}
			}
			continue
		}
		name, i, err := t.Resolve(ref)
		if err != nil {
			var se *domain.SchemaError
			if errors.As(err, &se) {
				se.Role = role
			}
			if isRequired(role) {
				return nil, err
			}
			b.Absent = append(b.Absent, role)
			continue
		}
		b.Columns[role] = name
		idx[role] = i
	}

	cell := func(row int, role domain.Role) string {
		i, ok := idx[role]
		if !ok {
			return ""
		}
		return t.Cell(row, i)
	}
	b.Rows = make([]domain.TicketRow, 0, t.Len())
	for r := range t.Rows {
		b.Rows = append(b.Rows, domain.TicketRow{
			Sheet:    t.Sheet,
			Line:     t.Lines[r],
			ID:       strings.TrimSpace(cell(r, domain.RoleID)),
			Title:    cell(r, domain.RoleTitle),
			Question: cell(r, domain.RoleQuestion),
			Answer:   cell(r, domain.RoleAnswer),
			Result:   cell(r, domain.RoleResult),
			Category: strings.TrimSpace(cell(r, domain.RoleCategory)),
		})
	}
	return b, nil
}
