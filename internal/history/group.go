package history

// ExecuteGrouped executes commands as a single undo unit. On failure the
// commands already executed are undone.
func (h *History) ExecuteGrouped(name string, cmds ...Command) error {
	switch len(cmds) {
	case 0:
		return nil
	case 1:
		return h.Execute(cmds[0])
	}
	compound := NewCompoundCommand(name, cmds...)
	if err := compound.Execute(); err != nil {
		return err
	}
	h.Push(compound)
	return nil
}
