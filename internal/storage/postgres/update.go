package postgres

import (
	"fmt"
	"strings"
)

// Update collects "col = $n" assignments for a partial UPDATE. Placeholders
// are numbered in the order values are added.
type Update struct {
	sets []string
	args []any
}

// Arg appends v and returns its placeholder.
func (u *Update) Arg(v any) string {
	u.args = append(u.args, v)
	return fmt.Sprintf("$%d", len(u.args))
}

func (u *Update) Set(col string, v any) {
	u.sets = append(u.sets, col+" = "+u.Arg(v))
}

// SetCast is Set with an explicit cast, for example "uuid" or "date".
func (u *Update) SetCast(col, cast string, v any) {
	u.sets = append(u.sets, col+" = "+u.Arg(v)+"::"+cast)
}

// SetNull clears col.
func (u *Update) SetNull(col string) {
	u.sets = append(u.sets, col+" = null")
}

// SetOptional sets col from a clearable field: nil leaves it unchanged, an
// empty string clears it, anything else is cast and stored.
func (u *Update) SetOptional(col, cast string, v *string) {
	switch {
	case v == nil:
	case *v == "":
		u.SetNull(col)
	default:
		u.SetCast(col, cast, *v)
	}
}

func (u *Update) Empty() bool {
	return len(u.sets) == 0
}

// Clause returns the SET list with updated_at bumped.
func (u *Update) Clause() string {
	return strings.Join(append(append([]string{}, u.sets...), "updated_at = now()"), ", ")
}

func (u *Update) Args() []any {
	return u.args
}
