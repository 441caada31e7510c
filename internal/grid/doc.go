// Package grid implements a virtualized data grid over a dom node tree.
//
// The grid keeps nodes only for rows near the viewport. Scrolling moves the
// canvas and Render reconciles the row cache: rows that left the rendered
// range are removed and missing rows are created. Content taller than
// Options.MaxSupportedHeight is split into virtual pages; the canvas stays
// within the limit and each page shifts row positions by an offset.
//
// The grid also owns the active cell and its editor. Editors are guarded by
// an edit lock, so at most one editor is open per lock; navigation, clicks
// and option changes commit the open edit first and stay put when the edit
// does not validate.
//
// Typical wiring with a data view:
//
//	dv := dataview.New()
//	g, err := grid.New(container, dv, columns, grid.DefaultOptions())
//	if err != nil {
//		return err
//	}
//	dv.Bind(g)
//	dv.SetItems(items)
//
// Deferred work (large-jump renders, async post-render, delayed editors)
// runs through Options.Scheduler; tests use schedule.Manual to step it.
package grid
