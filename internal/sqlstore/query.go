package sqlstore

import (
	"context"
	"fmt"
	"strings"
)

// Query runs the lines as one SQL statement on the session and returns
// every row as strings. NULL columns become empty strings.
func (c *Conn) Query(ctx context.Context, lines []string) ([][]string, error) {
	stmt := strings.TrimSpace(strings.Join(lines, "\n"))
	if stmt == "" {
		return [][]string{}, nil
	}

	rows, err := c.conn.QueryContext(ctx, stmt)
	if err != nil {
		return nil, storeErr("query", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, storeErr("query columns", err)
	}

	result := [][]string{}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, storeErr("query scan", err)
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = columnString(v)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("query", err)
	}
	return result, nil
}

func columnString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
