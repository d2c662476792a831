// Package upsert applies create-or-update assignments to document trees.
//
// Each assignment is applied under every element its query selects. A child
// whose name attribute (or value attribute, when the assignment has no name)
// equals the assignment's key has its value attribute overwritten; without
// such a child a new Property element is appended. Applying the same
// assignment twice leaves the tree as after the first application.
package upsert
