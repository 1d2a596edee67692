package dashboard

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a [Source] when a document does not exist.
var ErrNotFound = errors.New("document not found")

// ConfigLoadError reports a base document that is missing, empty, or
// cannot be parsed.
type ConfigLoadError struct {
	Name string
	Err  error
}

func (e *ConfigLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Name, e.Err)
}

func (e *ConfigLoadError) Unwrap() error { return e.Err }

// PartialFetchError reports a partial document that exists but could not
// be fetched or parsed. Absent partials are not errors.
type PartialFetchError struct {
	Name string
	Err  error
}

func (e *PartialFetchError) Error() string {
	return fmt.Sprintf("load partial %s: %v", e.Name, e.Err)
}

func (e *PartialFetchError) Unwrap() error { return e.Err }

// ConfigImportError reports YAML text rejected by Import.
type ConfigImportError struct {
	Err error
}

func (e *ConfigImportError) Error() string {
	return fmt.Sprintf("import config: %v", e.Err)
}

func (e *ConfigImportError) Unwrap() error { return e.Err }

var errEmptyDocument = errors.New("document is empty")
