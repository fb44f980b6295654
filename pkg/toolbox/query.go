package toolbox

import (
	"embed"
	"fmt"
	"strings"
	"text/template"
)

//go:embed sql/*.sql
var queryFS embed.FS

var queryTemplates = template.Must(template.ParseFS(queryFS, "sql/*.sql"))

// renderQuery expands a named embedded SQL template. Template data must
// contain only validated, enumerated values; nothing user-controlled ever
// reaches this point.
func renderQuery(name string, data any) (string, error) {
	var sql strings.Builder
	if err := queryTemplates.ExecuteTemplate(&sql, name+".sql", data); err != nil {
		return "", fmt.Errorf("rendering query %q: %w", name, err)
	}
	return sql.String(), nil
}
