// Package page holds the parse phase of the pipeline: turning raw page sources
// into immutable ParsedPage records with a resolved layout and a merged data
// context, and collecting them in a Store until the build phase drains it.
//
// Context precedence, lowest to highest:
//
//	global data < injected per-file data < front matter < computed constants
//
// The computed constants (page, layout, root) are merged last and therefore
// can never be shadowed.
package page
