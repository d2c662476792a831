// Package history records build runs in a small SQLite database so the CLI can
// show what was built, from which definition files, and how each run ended.
//
// The Store owns the connection, schema initialization, and the run
// lifecycle: Begin inserts a running row, Finish stamps the terminal status,
// counters, and produced archives. Schema changes bump schemaVersion in
// schema.go; users delete the database to adopt the new layout.
package history
