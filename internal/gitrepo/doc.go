// Package gitrepo parses GitHub repository references and builds per-profile SSH remotes.
package gitrepo
