// Package types holds all shared data structures (models) used across
// the application. Keeping them in one place prevents import cycles:
// handlers, storage, the service layer and the table client can all import
// types without depending on each other.
package types

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// DateLayout is the wire format of Row.BirthDate (ISO YYYY-MM-DD).
const DateLayout = "2006-01-02"

// EducationOptions lists the education levels offered by the table UI.
// The server does not treat it as a closed set.
var EducationOptions = []string{
	"Matriculation",
	"Intermediate",
	"Bachelors",
	"Masters",
	"PhD",
}

// GenderOptions lists the genders offered by the table UI.
// Like EducationOptions it is not enforced server-side.
var GenderOptions = []string{"Male", "Female"}

// Row represents one person entry in the editable table.
//
// Struct tags serve three purposes:
//
//  1. json:"..."     the key names used by the browser and the API.
//  2. yaml:"..."     the same names for seed files (JSON or YAML).
//  3. validate:"..." rules checked by the go-playground/validator
//     package. "required" means the field must be non-zero / non-empty.
type Row struct {
	ID        string `json:"id"        yaml:"id"`
	Name      string `json:"name"      yaml:"name"      validate:"required"`
	Age       Age    `json:"age"       yaml:"age"       validate:"required,gt=0"`
	Gender    string `json:"gender"    yaml:"gender"    validate:"required"`
	City      string `json:"city"      yaml:"city"      validate:"required"`
	BirthDate string `json:"birthDate" yaml:"birthDate" validate:"required,datetime=2006-01-02"`
	Education string `json:"education" yaml:"education" validate:"required"`
}

// Normalize trims surrounding whitespace from every string field, so a
// value made only of spaces counts as missing during validation.
func (r Row) Normalize() Row {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	r.Gender = strings.TrimSpace(r.Gender)
	r.City = strings.TrimSpace(r.City)
	r.BirthDate = strings.TrimSpace(r.BirthDate)
	r.Education = strings.TrimSpace(r.Education)
	return r
}

// Age is a person's age in whole years.
//
// Browser forms post the raw <input type="number"> value, which arrives as
// a JSON string ("30") rather than a number (30). Both are accepted.
type Age int

// UnmarshalJSON accepts a JSON number, a numeric JSON string, or null.
// An empty string or null decodes to 0, which validation reports as missing.
func (a *Age) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*a = 0
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return fmt.Errorf("age: invalid string %s", s)
		}
		s = unquoted
	}

	return a.parse(s)
}

// UnmarshalYAML applies the same rules to seed files, so `age: "30"` and
// `age: 30` both load.
func (a *Age) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("age: line %d: expected a scalar", value.Line)
	}
	if value.Tag == "!!null" {
		*a = 0
		return nil
	}
	return a.parse(value.Value)
}

// parse accepts plain decimal notation only; exponents, hex and the
// special float values are rejected.
func (a *Age) parse(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*a = 0
		return nil
	}

	if strings.IndexFunc(s, notDecimal) >= 0 {
		return fmt.Errorf("age: %q is not a number", s)
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("age: %q is not a number", s)
	}
	if f != math.Trunc(f) {
		return fmt.Errorf("age: %q is not a whole number", s)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return fmt.Errorf("age: %q is out of range", s)
	}

	*a = Age(f)
	return nil
}

func notDecimal(r rune) bool {
	return !unicode.IsDigit(r) && r != '.' && r != '-' && r != '+'
}
