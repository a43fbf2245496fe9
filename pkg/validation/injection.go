// Package validation screens user-supplied display text before it is
// stored or embedded in generated workflows.
package validation

import (
	"sort"

	libinjection "github.com/corazawaf/libinjection-go"
)

// Injection kinds reported in InjectionCheckResult.Kind.
const (
	KindXSS  = "xss"
	KindSQLi = "sqli"
)

// InjectionCheckResult describes a field that failed screening.
type InjectionCheckResult struct {
	FieldName   string
	Kind        string // KindXSS or KindSQLi
	Fingerprint string // libinjection fingerprint, SQLi only
}

// CheckField uses libinjection to detect script or SQL injection patterns
// in value. Returns nil if the value is clean.
//
// Example:
//
//	CheckField("name", "Support bot")                 // nil
//	CheckField("name", "<script>alert(1)</script>")   // Kind == "xss"
func CheckField(fieldName, value string) *InjectionCheckResult {
	if value == "" {
		return nil
	}

	if libinjection.IsXSS(value) {
		return &InjectionCheckResult{FieldName: fieldName, Kind: KindXSS}
	}

	if isSQLi, fingerprint := libinjection.IsSQLi(value); isSQLi {
		return &InjectionCheckResult{
			FieldName:   fieldName,
			Kind:        KindSQLi,
			Fingerprint: string(fingerprint),
		}
	}

	return nil
}

// CheckFields screens every value in fields. Results are ordered by field
// name; an empty slice means all fields are clean.
func CheckFields(fields map[string]string) []*InjectionCheckResult {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var results []*InjectionCheckResult
	for _, name := range names {
		if result := CheckField(name, fields[name]); result != nil {
			results = append(results, result)
		}
	}
	return results
}
