package vector

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func recordValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Report JSON field names so errors point at the store file's keys.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}

// ValidationError pinpoints the first invalid record in a store.
type ValidationError struct {
	Index  int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("record %d: field %q %s", e.Index, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidStore
}

// ValidateDocuments checks required fields on every record and that all
// embeddings share one dimensionality.
func ValidateDocuments(docs []Document) error {
	v := recordValidator()
	dim := -1

	for i, doc := range docs {
		if err := v.Struct(doc); err != nil {
			return toValidationError(i, err)
		}

		if dim < 0 {
			dim = len(doc.Embedding)
			continue
		}
		if len(doc.Embedding) != dim {
			return &ValidationError{
				Index:  i,
				Field:  "embedding",
				Reason: fmt.Sprintf("has %d dimensions, expected %d", len(doc.Embedding), dim),
			}
		}
	}

	return nil
}

func toValidationError(index int, err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return fmt.Errorf("record %d: %w", index, err)
	}

	fe := fieldErrs[0]
	reason := "failed " + fe.Tag()
	switch fe.Tag() {
	case "required":
		reason = "is required"
	case "min":
		reason = "must not be empty"
	}

	return &ValidationError{Index: index, Field: fe.Field(), Reason: reason}
}
