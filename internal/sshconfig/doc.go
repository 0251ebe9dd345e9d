// Package sshconfig reads and writes the OpenSSH client configuration as an
// ordered sequence of blocks.
//
// A Document holds an optional preamble followed by one block per Host or Match
// header. Content ghssh does not manage is kept verbatim, so loading and saving
// an untouched file preserves every directive. Host alias blocks are added and
// removed as whole blocks and the document is serialized back with exactly one
// blank line between blocks.
package sshconfig
