// Package dependencies resolves the default collaborators used by the command
// builders when tests or callers do not inject their own.
package dependencies
