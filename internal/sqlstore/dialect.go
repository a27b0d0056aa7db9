package sqlstore

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/kroeg/pkg/types"
)

// dialect captures what differs between the supported SQL backends.
type dialect struct {
	name       string
	driver     string
	serialType string
	numbered   bool // $1 placeholders instead of ?
}

var (
	sqliteDialect = dialect{
		name:       types.BackendSQLite,
		driver:     "sqlite",
		serialType: "INTEGER PRIMARY KEY AUTOINCREMENT",
	}
	postgresDialect = dialect{
		name:       types.BackendPostgreSQL,
		driver:     "pgx",
		serialType: "BIGSERIAL PRIMARY KEY",
		numbered:   true,
	}
)

// dialectFor returns the dialect and data source name for a backend.
func dialectFor(cfg types.DatabaseConfig) (dialect, string, error) {
	switch cfg.Backend {
	case types.BackendSQLite:
		return sqliteDialect, cfg.Path, nil
	case types.BackendPostgreSQL:
		u := url.URL{
			Scheme:   "postgres",
			Host:     cfg.Server,
			Path:     "/" + cfg.Database,
			RawQuery: "sslmode=prefer",
		}
		if cfg.Username != "" {
			u.User = url.UserPassword(cfg.Username, cfg.Password)
		}
		return postgresDialect, u.String(), nil
	default:
		return dialect{}, "", fmt.Errorf("%w: %q", types.ErrBackendUnknown, cfg.Backend)
	}
}

// rebind rewrites ? placeholders for dialects that number them.
func (d dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) schema() []string {
	stmts := []string{
		createEntities,
		fmt.Sprintf(createCollectionItems, d.serialType),
		fmt.Sprintf(createQueueItems, d.serialType),
	}
	return append(stmts, indexDDL...)
}
