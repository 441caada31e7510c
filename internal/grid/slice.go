package grid

import (
	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/item"
)

// ItemSlice is a DataProvider over a fixed slice of items.
type ItemSlice []item.Item

// Len implements DataProvider.
func (s ItemSlice) Len() int { return len(s) }

// Row implements DataProvider.
func (s ItemSlice) Row(i int) core.Row {
	if i < 0 || i >= len(s) || s[i] == nil {
		return nil
	}
	return core.DataRow{Item: s[i]}
}

// RowMetadata implements DataProvider. Plain slices carry no metadata.
func (ItemSlice) RowMetadata(int) *core.RowMetadata { return nil }
