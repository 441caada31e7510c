// Package editors provides cell editors and formatters for the grid.
//
// Editors render into the cell node they are given: each adds one child
// node holding the value being edited and removes it on Destroy. Keys reach
// an editor before the grid, so text editors consume the cursor keys while
// open.
//
// A Registry maps names to editors and formatters so columns can be
// configured from settings files.
package editors
