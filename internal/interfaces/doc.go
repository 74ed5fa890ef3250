// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Export Pipeline Interfaces
//
//   - HighlightSource: Reads highlights from the device (internal/services/interfaces.go)
//   - ContextLocator: Finds the reading context of a highlight (internal/services/interfaces.go)
//   - HighlightMarker: Emphasizes the highlight inside its context (internal/services/interfaces.go)
//   - Strategy: One way of finding the highlight in a fragment (internal/marker/marker.go)
//   - HighlightWriter: Appends an entry to a per-book file (internal/exporters/generic.go)
//   - Settings: Effective settings and the export watermark (internal/services/interfaces.go)
//
// ## Data Access Interfaces
//
//   - RunRecorder, ExportRecorder: Export history (internal/services/interfaces.go)
//   - BookStore, RunStore, SettingsStore: Read access for the viewer (internal/http/stores.go)
//
// ## Background Work Interfaces
//
//   - TaskQueue: Background exports (internal/http/stores.go)
//   - Exporter: Exports triggered by the device watcher (internal/scheduler/device_watch.go)
//
// # Adding a New Output Format
//
//  1. Implement HighlightWriter in internal/exporters/
//
//     type OrgWriter struct {
//         Dir string
//     }
//
//     func (w *OrgWriter) Name() string { return "org" }
//     func (w *OrgWriter) Write(entry Entry) error {
//         // append entry.Fragment to BookPath(w.Dir, entry.BookLabel, ".org")
//     }
//
//  2. Add it to app.Writers
//
//  3. Add a compile-time check to checks.go
//
// # Adding a New Match Strategy
//
// Strategies run in order until one finds the highlight. A strategy that
// errors or finds nothing yields to the next:
//
//	type Stemmed struct{}
//
//	func (Stemmed) Name() string { return "stemmed" }
//	func (Stemmed) Mark(fragment, highlight, tag string) (string, bool, error)
//
//	m := marker.New()
//	m.Strategies = append(m.Strategies, Stemmed{})
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// This pattern is used throughout the codebase. See checks.go for examples.
package interfaces
