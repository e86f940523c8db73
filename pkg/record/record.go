// Package record turns free-form completion text into a key/value record.
//
// The completion prompts end with an open brace, so the model answers with
// the inside of a record literal such as `"title": "Atomic Habits"}`. Parse
// restores the missing brace and reads the literal leniently. When the text
// cannot be read, Parse reports the cause and the returned Record carries an
// error, the raw text and an apology instead of content.
package record

import (
	"fmt"
	"strconv"
)

// Fields set on a failure record.
const (
	FieldError  = "error"
	FieldRaw    = "dict_string"
	FieldAnswer = "answer"
)

// Apology is the user-facing answer of a failure record.
const Apology = "An error occurred talking to OpenAI. Try again in a minute."

// Record is a parsed completion.
type Record map[string]any

// Parse reads raw as a record literal. When raw cannot be read, Parse returns
// a failure record together with the cause; a nil error means the record holds
// exactly what the model wrote, including any field called "error".
func Parse(raw string) (Record, error) {
	rec, err := parseRecord(raw)
	if err != nil {
		return failure(err, raw), err
	}
	return rec, nil
}

// FromCompletion parses the result of a completion call. A service error
// yields a failure record with an empty raw text and the service error.
func FromCompletion(text string, err error) (Record, error) {
	if err != nil {
		return failure(err, ""), err
	}
	return Parse(text)
}

func failure(cause error, raw string) Record {
	return Record{
		FieldError:  fmt.Sprintf("Call to OpenAI completion failed: %v", cause),
		FieldRaw:    raw,
		FieldAnswer: Apology,
	}
}

// Error returns the error field as a string, or "".
func (r Record) Error() string {
	return r.String(FieldError)
}

// Answer returns the answer field as a string, or "".
func (r Record) Answer() string {
	return r.String(FieldAnswer)
}

// Value returns the field key and whether it is present.
func (r Record) Value(key string) (any, bool) {
	v, ok := r[key]
	return v, ok
}

// String returns the field key as a string. Numbers and booleans are
// formatted; missing fields and other types yield "".
func (r Record) String(key string) string {
	switch v := r[key].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

// Strings returns the field key as a list of strings. A single string becomes
// a one-element list; nil entries are skipped. The boolean is false when the
// field is missing or not list-shaped.
func (r Record) Strings(key string) ([]string, bool) {
	switch v := r[key].(type) {
	case string:
		return []string{v}, true
	case []string:
		return v, true
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := scalarString(e); ok {
				out = append(out, s)
			}
		}
		return out, true
	default:
		return nil, false
	}
}

func scalarString(v any) (string, bool) {
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}
