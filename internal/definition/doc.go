// Package definition holds the edit plan model and the parser that builds it
// from definition files.
//
// A definition is line oriented. Directives open nested scopes: an output
// archive (!outputPakFile), the source archives feeding it (!inputPakFile),
// the documents inside each source (!mbinFile), and selector scopes within a
// document (cd). Plain name=value lines assign fields under the current
// selector. Containers, archives, and documents are reused when named again,
// so several files can contribute edits to the same document.
//
// The parser keeps its four current-scope references in a state value owned
// by each top-level Parse call. !include threads the same state, so an
// included file behaves as if its lines were inlined. The resulting Plan is
// treated as read-only by the build runner.
package definition
