// Package ui turns external command lifecycle events into short console messages.
package ui
