// Package event provides the synchronous observer used by the grid, the data
// view and their plugins.
//
// An Event[T] holds an ordered list of handlers. Notify builds a single Args
// value and hands it to every handler in subscription order, on the caller's
// goroutine:
//
//	ev := event.New[RowsChange]()
//	sub := ev.Subscribe(func(a *event.Args[RowsChange]) {
//	    grid.InvalidateRows(a.Data.Rows)
//	})
//	defer sub.Cancel()
//
//	ev.Notify(RowsChange{Rows: []int{1, 2}}, nil)
//
// # Stop semantics
//
// A handler may call Args.Stop. Later handlers still run and can observe
// Stopped; Notify reports false so the publisher can skip its default
// action. This is how "cancel the edit" and "key already handled" travel
// back to the grid.
//
// # Reentrancy
//
// Handlers may notify other events, subscribe or unsubscribe. Notify walks a
// snapshot of the handler list taken when it starts, and skips any handler
// cancelled while the walk is in progress.
//
// # Groups
//
// A Group collects subscriptions made on behalf of one owner (a plugin, a
// binding) so they can be released together with UnsubscribeAll. Because Go
// methods cannot take type parameters, handlers are added to a group with the
// package-level Attach function.
//
// Events are not safe for concurrent use. All notification happens on the
// goroutine that owns the grid.
package event
