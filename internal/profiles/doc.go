// Package profiles manages GitHub SSH identities.
//
// A profile is a label tied to a key pair under the SSH directory, a Host alias
// block in the SSH client configuration and, optionally, an identity in the SSH
// agent. Service adds, removes, lists and checks profiles; the configuration
// store and the agent session are handed to it explicitly.
package profiles
