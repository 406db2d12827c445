// Package prompt implements the selection prompters used by prdispatch: a
// bubbletea menu for interactive terminals and a numbered line prompter for
// pipes and plain output.
package prompt
