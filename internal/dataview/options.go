package dataview

import (
	"time"

	"github.com/dshills/gridstorm/internal/core"
	"github.com/dshills/gridstorm/internal/item"
	"github.com/dshills/gridstorm/internal/logging"
	"github.com/dshills/gridstorm/internal/schedule"
)

// DefaultGroupingDelimiter joins group values into grouping keys.
const DefaultGroupingDelimiter = ":|:"

// ItemMetadataFunc supplies row metadata for a data item.
type ItemMetadataFunc func(it item.Item, row int) *core.RowMetadata

// MetadataProvider supplies row metadata for group and totals rows.
type MetadataProvider interface {
	GroupRowMetadata(g *core.Group) *core.RowMetadata
	TotalsRowMetadata(t *core.Totals) *core.RowMetadata
}

type config struct {
	idField          string
	delimiter        string
	scheduler        schedule.Scheduler
	refreshDelay     time.Duration
	logger           *logging.Logger
	metadataProvider MetadataProvider
	itemMetadata     ItemMetadataFunc
}

func defaultConfig() config {
	return config{
		idField:   item.DefaultIDField,
		delimiter: DefaultGroupingDelimiter,
	}
}

// Option configures a DataView.
type Option func(*config)

// WithIDField sets the field holding each item's identifier.
func WithIDField(field string) Option {
	return func(c *config) {
		if field != "" {
			c.idField = field
		}
	}
}

// WithGroupingDelimiter sets the separator used in grouping keys.
func WithGroupingDelimiter(d string) Option {
	return func(c *config) {
		if d != "" {
			c.delimiter = d
		}
	}
}

// WithRefreshDelay defers refreshes triggered by mutations by d, using s.
// Mutations arriving before the deferred refresh runs are folded into it.
func WithRefreshDelay(s schedule.Scheduler, d time.Duration) Option {
	return func(c *config) {
		c.scheduler = s
		c.refreshDelay = d
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithMetadataProvider sets the provider consulted for group and totals
// rows.
func WithMetadataProvider(p MetadataProvider) Option {
	return func(c *config) {
		c.metadataProvider = p
	}
}

// WithItemMetadata sets the function consulted for data rows.
func WithItemMetadata(fn ItemMetadataFunc) Option {
	return func(c *config) {
		c.itemMetadata = fn
	}
}
