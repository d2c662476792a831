// Package mbincompiler wraps MBINCompiler, which converts binary game
// documents to their EXML text form and back. Both directions run with the
// work directory as the process directory, matching how the tool resolves
// relative document names.
package mbincompiler
