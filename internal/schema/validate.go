package schema

// validate.go checks decoded schemas against the `validate` struct tags on
// SheetSchema and FieldRule. Registry-wide rules (unique sheet names, the
// Default entry) stay in NewRegistry.

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	// Report fields by their YAML keys so messages match the schema file.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkSchema returns one message per rule violation in s.
func checkSchema(s *SheetSchema) []string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{fmt.Sprintf("sheet %q: %v", s.Name, err)}
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("sheet %q: %s: %s", s.Name, fieldPath(fe), describe(fe)))
	}
	return msgs
}

// fieldPath drops the struct name from the error namespace,
// e.g. "SheetSchema.fields[1].type" becomes "fields[1].type".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "notblank":
		return "is required"
	case "oneof":
		return fmt.Sprintf("%q is not one of %s", fe.Value(), fe.Param())
	case "min":
		return fmt.Sprintf("at least %s required", fe.Param())
	case "len":
		return fmt.Sprintf("needs exactly %s values (true, false)", fe.Param())
	case "required_if":
		return fmt.Sprintf("is required for %s fields", condType(fe.Param()))
	case "excluded_unless":
		return fmt.Sprintf("applies to %s fields only", condType(fe.Param()))
	case "unique":
		if fe.Param() == "" {
			return "values must differ"
		}
		return "duplicate " + yamlKey(fe.Param())
	}
	return "fails " + fe.Tag()
}

// condType extracts the type from a "Type <value>" conditional parameter.
func condType(param string) string {
	parts := strings.Fields(param)
	if len(parts) < 2 {
		return param
	}
	return parts[1]
}

// yamlKey maps a FieldRule Go field name to its YAML key.
func yamlKey(goName string) string {
	if f, ok := reflect.TypeOf(FieldRule{}).FieldByName(goName); ok {
		if name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]; name != "" {
			return name
		}
	}
	return goName
}
