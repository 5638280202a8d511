package datasource

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/ekaya-db2/pkg/apperrors"
	sqlutil "github.com/ekaya-inc/ekaya-db2/pkg/sql"
)

// Catalog query use-cases.
const (
	QueryFetchSchemas     = "fetchSchemas"
	QueryFetchTables      = "fetchTables"
	QueryFetchViews       = "fetchViews"
	QueryFetchColumns     = "fetchColumns"
	QueryFetchPrimaryKeys = "fetchPrimaryKeys"
	QueryFetchForeignKeys = "fetchForeignKeys"
	QuerySearchTables     = "searchTables"
	QuerySearchColumns    = "searchColumns"
	QueryLookupColumns    = "lookupColumns"
)

// RequiredQueries lists the use-cases every dialect must provide.
var RequiredQueries = []string{
	QueryFetchSchemas,
	QueryFetchTables,
	QueryFetchViews,
	QueryFetchColumns,
	QueryFetchPrimaryKeys,
	QueryFetchForeignKeys,
	QuerySearchTables,
	QuerySearchColumns,
	QueryLookupColumns,
}

// TableRef names one table in a column search filter.
type TableRef struct {
	Schema string
	Label  string
}

// QueryParams scope a catalog query.
type QueryParams struct {
	Database string
	Schema   string
	Table    string
	Search   string
	Tables   []TableRef
	Limit    int
}

// templateFuncs quote values inside templates. Templates must never
// interpolate a parameter without one of these.
var templateFuncs = template.FuncMap{
	"lit":   sqlutil.QuoteLiteral,
	"ident": sqlutil.QuoteIdentifier,
	"like":  sqlutil.LikeContains,
}

type querySetFile struct {
	Queries map[string]string `yaml:"queries"`
}

// QuerySet holds a dialect's catalog query templates keyed by use-case.
type QuerySet struct {
	templates map[string]*template.Template
}

// ParseQuerySet parses a YAML document of the form:
//
//	queries:
//	  fetchSchemas: |
//	    SELECT ...
func ParseQuerySet(data []byte) (*QuerySet, error) {
	var file querySetFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse query templates: %w", err)
	}

	qs := &QuerySet{templates: make(map[string]*template.Template, len(file.Queries))}
	for name, text := range file.Queries {
		tmpl, err := template.New(name).Funcs(templateFuncs).Option("missingkey=error").Parse(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("parse query template %s: %w", name, err)
		}
		qs.templates[name] = tmpl
	}
	return qs, nil
}

// MustParseQuerySet is ParseQuerySet for embedded defaults. It panics on error
// and when a required use-case is missing.
func MustParseQuerySet(data []byte) *QuerySet {
	qs, err := ParseQuerySet(data)
	if err != nil {
		panic(err)
	}
	if err := qs.Validate(); err != nil {
		panic(err)
	}
	return qs
}

// Validate reports required use-cases the set does not define.
func (q *QuerySet) Validate() error {
	var missing []string
	for _, name := range RequiredQueries {
		if !q.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing query templates: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Has reports whether a template is defined for name.
func (q *QuerySet) Has(name string) bool {
	if q == nil {
		return false
	}
	_, ok := q.templates[name]
	return ok
}

// Names returns the defined use-cases sorted.
func (q *QuerySet) Names() []string {
	names := make([]string, 0, len(q.templates))
	for name := range q.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Merge returns a new set with the templates of other replacing those of q.
func (q *QuerySet) Merge(other *QuerySet) *QuerySet {
	merged := &QuerySet{templates: make(map[string]*template.Template, len(q.templates))}
	for name, tmpl := range q.templates {
		merged.templates[name] = tmpl
	}
	if other != nil {
		for name, tmpl := range other.templates {
			merged.templates[name] = tmpl
		}
	}
	return merged
}

// WithOverridesFile merges the templates of a YAML file over q.
// An empty path returns q unchanged.
func (q *QuerySet) WithOverridesFile(path string) (*QuerySet, error) {
	if path == "" {
		return q, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read query overrides: %w", err)
	}
	overrides, err := ParseQuerySet(data)
	if err != nil {
		return nil, err
	}
	return q.Merge(overrides), nil
}

// Render executes the named template.
func (q *QuerySet) Render(name string, params QueryParams) (string, error) {
	if !q.Has(name) {
		return "", fmt.Errorf("%w: %s", apperrors.ErrUnknownQuery, name)
	}

	var buf bytes.Buffer
	if err := q.templates[name].Execute(&buf, params); err != nil {
		return "", fmt.Errorf("render query %s: %w", name, err)
	}
	return strings.TrimSpace(buf.String()), nil
}
