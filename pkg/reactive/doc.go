// Package reactive provides the small reactive core notifications are
// driven by: observable values and teardown scopes.
//
// # Core Types
//
// Signal[T] is a reactive value container:
//
//	count := reactive.NewSignal(0)
//	value := count.Get()
//	count.Set(5)                                   // Notifies subscribers
//	count.Update(func(n int) int { return n + 1 })
//
//	unsubscribe := count.Subscribe(func(newValue, oldValue int) {
//	    fmt.Println(oldValue, "->", newValue)
//	})
//	defer unsubscribe()
//
// Setting a value equal to the current one does not notify. Equality uses
// == for basic types and reflect.DeepEqual for everything else, so slices,
// maps and structs are compared by content.
//
// Owner is a teardown scope mirroring a UI unit. Cleanups registered with
// OnCleanup run when the owner, or any ancestor, is disposed:
//
//	owner := reactive.NewOwner(nil)
//	toast.Watch(reg, count, toast.WatchOptions[int]{Owner: owner})
//	owner.Dispose() // Stops the watch session
//
// # Thread Safety
//
// All types are safe for concurrent use. Subscribers are called
// synchronously on the goroutine that changed the value, after internal
// locks are released.
package reactive
