// Package psar wraps the psar archive tool used to pull documents out of game
// archives and to write the patched output archive.
//
// The client only builds argument lists and hands them to a
// services.Executor, so tests can swap in a stub and inspect the exact
// command lines.
package psar
