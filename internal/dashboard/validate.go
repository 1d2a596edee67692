package dashboard

import (
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Report lists the problems found by [Store.Validate]. Problems are
// ordered by field; warnings never make a report invalid.
type Report struct {
	Problems []string `json:"problems"`
	Warnings []string `json:"warnings"`
}

// Valid reports whether no problems were found.
func (r Report) Valid() bool {
	return len(r.Problems) == 0
}

// checks is the flattened view of the document that Validate inspects.
type checks struct {
	UnsplashAccessKey string `validate:"required"`
	BackgroundTheme   string
	GridColumns       *int   `validate:"omitnil,min=1,max=12"`
	GridRows          *int   `validate:"omitnil,min=1,max=12"`
	DefaultEngines    int    `validate:"max=1"`

	themes map[string]Theme
}

var (
	checksOnce      sync.Once
	checksValidator *validator.Validate
)

func checksValidatorInstance() *validator.Validate {
	checksOnce.Do(func() {
		v := validator.New()
		v.RegisterStructValidation(func(sl validator.StructLevel) {
			c := sl.Current().Interface().(checks)
			if _, ok := c.themes[c.BackgroundTheme]; !ok {
				sl.ReportError(c.BackgroundTheme, "BackgroundTheme", "BackgroundTheme", "known_theme", "")
			}
		}, checks{})
		checksValidator = v
	})
	return checksValidator
}

// Validate checks the live document for settings the dashboard cannot
// work with.
func (s *Store) Validate() Report {
	c := checks{
		UnsplashAccessKey: s.APIKey("unsplash", "access_key"),
		themes:            s.Themes(),
	}
	if v, ok := s.Get("dashboard.background.theme"); ok {
		c.BackgroundTheme = scalarString(v)
	}
	c.GridColumns = gridValue(s, "columns")
	c.GridRows = gridValue(s, "rows")
	for _, e := range s.SearchEngines() {
		if e.Default {
			c.DefaultEngines++
		}
	}

	var report Report
	err := checksValidatorInstance().Struct(c)
	var verrs validator.ValidationErrors
	if err != nil && !errors.As(err, &verrs) {
		report.Problems = append(report.Problems, err.Error())
		return report
	}

	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		failed[fe.Field()] = true
	}
	if failed["UnsplashAccessKey"] {
		report.Problems = append(report.Problems, "Unsplash access key is required for background images")
	}
	if failed["BackgroundTheme"] {
		report.Problems = append(report.Problems, fmt.Sprintf("Invalid background theme: %s", c.BackgroundTheme))
	}
	if failed["GridColumns"] {
		report.Problems = append(report.Problems, "Grid columns must be between 1 and 12")
	}
	if failed["GridRows"] {
		report.Problems = append(report.Problems, "Grid rows must be between 1 and 12")
	}
	if failed["DefaultEngines"] {
		report.Warnings = append(report.Warnings, fmt.Sprintf("%d search engines are marked default; the first one wins", c.DefaultEngines))
	}
	return report
}

// gridValue reads dashboard.grid.<name>. Absent values are not checked;
// a value that is not a whole number is reported as out of range.
func gridValue(s *Store, name string) *int {
	v, ok := s.GetPath(Path{"dashboard", "grid", name})
	if !ok || v == nil {
		return nil
	}
	n, ok := intValue(v)
	if !ok {
		n = 0
	}
	return &n
}
