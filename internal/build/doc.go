// Package build runs the two-phase page pipeline.
//
// A run parses every raw page into a page.Store, drains the store once every
// page is parsed, then hands the pages to a Coordinator that renders them
// concurrently. Each page yields exactly one render.Outcome, returned in input
// order; lifecycle events are published on a pipeline.Bus as pages settle.
package build
