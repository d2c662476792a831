// Package deps reports whether the external tools and directories a build
// needs are usable, for the deps command and the preflight step of build.
package deps
