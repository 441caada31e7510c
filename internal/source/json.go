package source

import (
	"fmt"
	"os"

	"github.com/tidwall/gjson"

	"github.com/dshills/gridstorm/internal/item"
)

// LoadJSON reads an array of objects from data. path is a gjson path to the
// array inside the document; an empty path means the document itself.
// Every element becomes an item.JSON, so edits write back into its text.
func LoadJSON(data []byte, path string) (*Table, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	arr := gjson.ParseBytes(data)
	if path != "" {
		arr = arr.Get(path)
	}
	if !arr.IsArray() {
		return nil, fmt.Errorf("%w: %q", ErrNotArray, path)
	}

	t := &Table{}
	var fields fieldSet
	var err error
	arr.ForEach(func(_, el gjson.Result) bool {
		if !el.IsObject() {
			err = &ElementError{Index: len(t.Items), Err: ErrNotObject}
			return false
		}
		it := item.NewJSON(el.Raw)
		for _, f := range it.Fields() {
			fields.add(f)
		}
		t.Items = append(t.Items, it)
		return true
	})
	if err != nil {
		return nil, err
	}
	t.Fields = fields.fields
	return t, nil
}

// LoadJSONFile reads a JSON document from disk and loads it with LoadJSON.
func LoadJSONFile(file, path string) (*Table, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read items: %w", err)
	}
	t, err := LoadJSON(data, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return t, nil
}
