package repository

import (
	"fmt"
	"strings"
)

type setField struct {
	column string
	value  any
}

// buildUpdate renders an UPDATE statement that writes only the supplied
// fields. updated_at is always touched, so an update with no caller fields
// still reports a change for an existing row instead of masquerading as
// not-found. The id is bound as the final placeholder.
func buildUpdate(table string, fields []setField, id, now string) (string, []any) {
	sets := make([]string, 0, len(fields)+1)
	args := make([]any, 0, len(fields)+2)

	for _, f := range fields {
		args = append(args, f.value)
		sets = append(sets, fmt.Sprintf("%s = $%d", f.column, len(args)))
	}

	args = append(args, now)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = $%d", table, strings.Join(sets, ", "), len(args))

	return query, args
}
