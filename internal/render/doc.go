// Package render turns one ParsedPage into an Outcome.
//
// Every render builds its own pongo2 template set. The set resolves the
// partial named "body" to the current page's staged body, other bare names to
// files in the partials directory, and everything else against the layouts
// directory. Nothing is registered on shared engine state per page: the page
// predicates ifpage/unlesspage are plain functions placed in the render
// context, so concurrent renders cannot observe each other.
package render
