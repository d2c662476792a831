// Package exml knows the shape of the decompiled document tree: a Data root
// holding Property elements keyed by name and value attributes. It loads and
// saves that text form with etree and maps binary document identifiers to
// the file names the decompiler writes.
package exml
