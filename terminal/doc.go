// Package terminal is the terminal I/O boundary: raw mode, input decoding and output.
//
// Features:
//   - Raw mode with alternate screen, hidden cursor and auto-wrap disabled
//   - Raw stdin decoding: keys, SGR mouse, focus in/out, bracketed paste
//   - SIGWINCH resize notification, size query with last-known fallback
//   - Scope guard restoring the terminal on release, terminating signals and crashes
//   - Headless in-memory terminal with the same surface for tests and replay
//
// This package bypasses terminfo/termcap entirely, emitting direct ANSI sequences.
// Target environments: Linux, macOS, BSDs with xterm-compatible terminals.
package terminal
