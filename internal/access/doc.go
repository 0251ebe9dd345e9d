// Package access discovers which configured profiles can read or write a GitHub repository.
//
// Prober walks the profile aliases in configuration order and asks a
// RemoteProber two questions per alias: can it list the remote HEAD, and does a
// dry-run push of a disposable branch get past authorization. GitRemoteProber
// answers both with git. The write answer is a heuristic over git's dry-run
// wording, so every ProbeOutcome keeps the exit code and output next to the
// boolean. Nothing is pushed and nothing is retried.
package access
