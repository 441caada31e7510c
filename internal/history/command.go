package history

import (
	"fmt"

	"github.com/dshills/gridstorm/internal/item"
)

// Command is an edit that can be executed and undone.
type Command interface {
	// Execute performs the command.
	Execute() error

	// Undo reverses the command.
	Undo() error

	// Description returns a human-readable description of the command.
	Description() string
}

// FieldCommand sets one field of an item. Changed, when set, runs after
// every execute and undo so the caller can refresh its view.
type FieldCommand struct {
	Item  item.Item
	Field string
	Old   any
	New   any

	Changed func(it item.Item)
}

// NewFieldCommand creates a command that sets field to value, capturing the
// current value for undo.
func NewFieldCommand(it item.Item, field string, value any) *FieldCommand {
	return &FieldCommand{
		Item:  it,
		Field: field,
		Old:   it.Get(field),
		New:   value,
	}
}

// Execute writes the new value.
func (c *FieldCommand) Execute() error {
	return c.set(c.New)
}

// Undo writes the old value back.
func (c *FieldCommand) Undo() error {
	return c.set(c.Old)
}

func (c *FieldCommand) set(v any) error {
	s, ok := c.Item.(item.Setter)
	if !ok {
		return fmt.Errorf("set %s: %w", c.Field, ErrReadOnlyItem)
	}
	if err := s.Set(c.Field, v); err != nil {
		return fmt.Errorf("set %s: %w", c.Field, err)
	}
	if c.Changed != nil {
		c.Changed(c.Item)
	}
	return nil
}

// Description returns a human-readable description.
func (c *FieldCommand) Description() string {
	return fmt.Sprintf("Set %s", c.Field)
}

// CompoundCommand groups multiple commands as one undo unit.
type CompoundCommand struct {
	Name     string
	Commands []Command
}

// NewCompoundCommand creates a new compound command.
func NewCompoundCommand(name string, commands ...Command) *CompoundCommand {
	return &CompoundCommand{
		Name:     name,
		Commands: commands,
	}
}

// Execute runs all commands in order. When one fails, the ones before it
// are undone.
func (c *CompoundCommand) Execute() error {
	for i, cmd := range c.Commands {
		if err := cmd.Execute(); err != nil {
			for j := i - 1; j >= 0; j-- {
				_ = c.Commands[j].Undo()
			}
			return fmt.Errorf("compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Undo reverses all commands in reverse order.
func (c *CompoundCommand) Undo() error {
	for i := len(c.Commands) - 1; i >= 0; i-- {
		if err := c.Commands[i].Undo(); err != nil {
			return fmt.Errorf("undo compound command '%s' step %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Description returns the compound command's name.
func (c *CompoundCommand) Description() string {
	if c.Name != "" {
		return c.Name
	}
	if len(c.Commands) == 1 {
		return c.Commands[0].Description()
	}
	return fmt.Sprintf("%d edits", len(c.Commands))
}

// Add adds a command to the compound command.
func (c *CompoundCommand) Add(cmd Command) {
	c.Commands = append(c.Commands, cmd)
}

// IsEmpty returns true if the compound command has no commands.
func (c *CompoundCommand) IsEmpty() bool {
	return len(c.Commands) == 0
}
