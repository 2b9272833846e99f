package jira

import (
	"fmt"
	"strings"

	"github.com/festy23/jira_digest/internal/issue/model"
)

// BuildJQL translates a query spec into JQL.
func BuildJQL(spec model.QuerySpec) string {
	clauses := []string{"project = " + quote(spec.Project)}
	if spec.Status != "" {
		clauses = append(clauses, "status = "+quote(spec.Status))
	}
	if spec.CreatedBeforeDays > 0 {
		clauses = append(clauses, fmt.Sprintf("created <= -%dd", spec.CreatedBeforeDays))
	}
	return strings.Join(clauses, " AND ") + " ORDER BY created DESC"
}

// quote renders s as a JQL string literal.
func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}
