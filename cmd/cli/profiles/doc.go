// Package profiles exposes the profile lifecycle and the repository access
// check as Cobra commands.
package profiles
