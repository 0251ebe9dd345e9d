// Package menu implements the interactive numbered menu shown when ghssh runs
// without arguments. Each menu entry collects its inputs from the operator and
// hands the resulting command line to an Actions implementation, so the menu
// and the command tree share one code path.
package menu
