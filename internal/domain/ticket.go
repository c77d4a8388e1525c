package domain

// MatchMode selects how a result text is compared against the configured label set.
type MatchMode string

const (
	ModeExact     MatchMode = "exact"
	ModeSubstring MatchMode = "substring"
	ModePrefix    MatchMode = "prefix"
)

func (m MatchMode) Valid() bool {
	switch m {
	case ModeExact, ModeSubstring, ModePrefix:
		return true
	}
	return false
}

// Role names a logical column of a ticket export.
type Role string

const (
	RoleID       Role = "id"
	RoleTitle    Role = "title"
	RoleQuestion Role = "question"
	RoleAnswer   Role = "answer"
	RoleResult   Role = "result"
	RoleCategory Role = "category"
)

var AllRoles = []Role{RoleID, RoleTitle, RoleQuestion, RoleAnswer, RoleResult, RoleCategory}

type TicketRow struct {
	Sheet    string
	Line     int // 1-based worksheet row, header is line 1
	ID       string
	Title    string
	Question string
	Answer   string
	Result   string // raw summary-result cell, possibly a JSON envelope
	Category string
}

// Table is a named, fully materialised result table ready to be published.
// Cell values are string, int or float64.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

func (t Table) Len() int { return len(t.Rows) }
