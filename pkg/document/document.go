// Package document defines the mutable record that flows through the model
// pipeline.
package document

// Well-known field names.
const (
	FieldToken   = "openai_token" //nolint:gosec // field name, not a credential
	FieldError   = "error"
	FieldExplain = "explain"
)

// Document is a mapping from field names to values. Values are strings, lists
// of strings, nested maps, numbers or nil.
//
// A Document is a reference type: handlers mutate it in place and the pipeline
// returns the same map it was given.
type Document map[string]any

// Pop returns the value stored under key and removes it from the document.
func (d Document) Pop(key string) (any, bool) {
	v, ok := d[key]
	if ok {
		delete(d, key)
	}
	return v, ok
}

// PopString is Pop for string fields. Non-string values yield "" but are
// still removed.
func (d Document) PopString(key string) string {
	v, _ := d.Pop(key)
	s, _ := v.(string)
	return s
}

// SetDefault stores v under key unless key is already present, and returns the
// value that ends up stored.
func (d Document) SetDefault(key string, v any) any {
	if cur, ok := d[key]; ok {
		return cur
	}
	d[key] = v
	return v
}

// Has reports whether key is present, even when its value is nil.
func (d Document) Has(key string) bool {
	_, ok := d[key]
	return ok
}

// String returns the string stored under key, or "" if it is absent or not a
// string.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Annotate records a failure. It overwrites both error fields.
func (d Document) Annotate(errText, explain string) {
	d[FieldError] = errText
	d[FieldExplain] = explain
}

// Failed reports whether the document carries a non-empty error field.
func (d Document) Failed() bool {
	switch v := d[FieldError].(type) {
	case nil:
		return false
	case string:
		return v != ""
	default:
		return true
	}
}
