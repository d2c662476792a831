// Package selector translates the compact hierarchical selectors written in
// definition files into structured tree queries.
//
// A selector is a slash separated list of steps. A leading slash restarts at
// the document root; otherwise the steps extend the ambient query left by the
// previous selector of the same document. Query holds that ambient buffer.
//
// Attribute values are kept as plain strings on each Step and compared
// verbatim, so values may contain brackets and either quote character.
// Expr.String renders an XPath-like form for logs only.
package selector
