// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines the abstractions ghssh uses to run
// git, ssh, and ssh-keygen in a testable manner.
package execshell
