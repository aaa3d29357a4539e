// Package pipeline carries lifecycle signals of a pipeline run on an in-process bus.
package pipeline
