// Package keyagent talks to the running SSH agent on behalf of profile commands.
package keyagent
