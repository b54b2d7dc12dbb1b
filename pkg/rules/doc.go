// Package rules maps user-facing category names to rule-set locations.
//
// Categories are listed from an external source (see ports.CategoryLister),
// shown under their display names, and resolved back to a canonical folder
// through an AliasTable when a configuration is generated. Resolution is
// pure string composition; nothing here fetches rule bodies.
package rules
