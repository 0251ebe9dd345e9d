// Package utils hosts the configuration loader and logger factory shared by every ghssh command.
package utils
