// Package keys generates OpenSSH key pairs for profiles and inspects public keys.
//
// NativeGenerator creates ed25519 keys in-process with golang.org/x/crypto/ssh.
// ExternalGenerator delegates to ssh-keygen and supports more algorithms.
// Neither generator checks for an existing key; callers decide whether to
// generate at all.
package keys
