package db

import (
	"fmt"
	"strings"

	"github.com/user/talenthub/validation"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern escapes LIKE metacharacters in s and wraps it in wildcards.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// Update collects the SET clauses of a partial UPDATE with numbered placeholders.
type Update struct {
	sets []string
	args []any
}

// Set assigns v to col.
func (u *Update) Set(col string, v any) {
	u.args = append(u.args, v)
	u.sets = append(u.sets, fmt.Sprintf("%s = $%d", col, len(u.args)))
}

// SetNull clears col.
func (u *Update) SetNull(col string) {
	u.sets = append(u.sets, col+" = NULL")
}

// SetRaw appends a clause that takes no argument, such as "updated_at = now()".
func (u *Update) SetRaw(clause string) {
	u.sets = append(u.sets, clause)
}

// Empty reports whether nothing was assigned.
func (u *Update) Empty() bool { return len(u.sets) == 0 }

// Arg appends a WHERE argument and returns its placeholder.
func (u *Update) Arg(v any) string {
	u.args = append(u.args, v)
	return fmt.Sprintf("$%d", len(u.args))
}

// Clause returns the joined SET list and the arguments collected so far.
func (u *Update) Clause() (string, []any) {
	return strings.Join(u.sets, ", "), u.args
}

// SetOptional applies an Optional field: omitted is skipped, null clears, a value assigns.
func SetOptional[T any](u *Update, col string, o validation.Optional[T]) {
	switch {
	case !o.Set:
	case o.Null:
		u.SetNull(col)
	default:
		u.Set(col, o.Value)
	}
}
