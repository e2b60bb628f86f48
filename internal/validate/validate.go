// Package validate checks and normalizes API input before it reaches the repositories.
//
// Input types use pointer fields so partial updates (PATCH) only validate the keys the client
// sent. Cross-field checks that depend on stored state run on the merged record instead.
package validate

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Error is a validation failure. Message is shown to the client as "error" and Fields, when
// set, maps JSON field names to per-field messages.
type Error struct {
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

const msgFailed = "validation failed"

// fieldsError returns an *Error for field-level problems, or nil when fields is empty.
func fieldsError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &Error{Message: msgFailed, Fields: fields}
}

// fieldError is a single message that belongs to one field.
func fieldError(field, msg string) *Error {
	return &Error{Message: msg, Fields: map[string]string{field: msg}}
}

// NullableInt distinguishes an absent key, an explicit null and a value in JSON input.
type NullableInt struct {
	Set   bool
	Value *int
}

func (n *NullableInt) UnmarshalJSON(b []byte) error {
	n.Set = true
	if string(b) == "null" {
		n.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	n.Value = &v
	return nil
}

var structs = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// checkStruct runs the struct tags of in and adds any failures to fields.
func checkStruct(in interface{}, fields map[string]string) {
	err := structs.Struct(in)
	if err == nil {
		return
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["_"] = err.Error()
		return
	}
	for _, fe := range verrs {
		if _, exists := fields[fe.Field()]; !exists {
			fields[fe.Field()] = tagMessage(fe)
		}
	}
}

func tagMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("out of range (%s %s)", fe.Tag(), fe.Param())
	case "gt":
		return "must be greater than " + fe.Param()
	}
	return "invalid value"
}

// required marks key as required when a full record is expected and the value is missing or blank.
func required(fields map[string]string, partial bool, key string, s *string) {
	if s == nil {
		if !partial {
			fields[key] = "required"
		}
		return
	}
	if strings.TrimSpace(*s) == "" {
		fields[key] = "may not be blank"
	}
}
