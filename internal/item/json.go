package item

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// JSON is an item backed by a raw JSON object. Field names are gjson paths,
// so "address.city" reaches into nested objects.
type JSON struct {
	raw string
}

// NewJSON wraps a raw JSON object.
func NewJSON(raw string) *JSON {
	return &JSON{raw: raw}
}

// Get implements Item. Numbers come back as float64, objects and arrays as
// their decoded Go values.
func (j *JSON) Get(field string) any {
	r := gjson.Get(j.raw, field)
	if !r.Exists() {
		return nil
	}
	return r.Value()
}

// Set implements Setter.
func (j *JSON) Set(field string, value any) error {
	raw, err := sjson.Set(j.raw, field, value)
	if err != nil {
		return fmt.Errorf("set %q: %w", field, err)
	}
	j.raw = raw
	return nil
}

// Fields returns the top-level keys of the object in document order.
func (j *JSON) Fields() []string {
	var fields []string
	gjson.Parse(j.raw).ForEach(func(key, _ gjson.Result) bool {
		fields = append(fields, key.String())
		return true
	})
	return fields
}

// Raw returns the current JSON text.
func (j *JSON) Raw() string {
	return j.raw
}

// String implements fmt.Stringer.
func (j *JSON) String() string {
	return j.raw
}
