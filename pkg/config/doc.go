// Package config models the MFD configuration tree.
//
// # Overview
//
// A configuration file holds one or more [Module] definitions. Each module
// owns an ordered list of top-level configurations, and each configuration
// is a [Node] that may own nested sub-configurations (JSON key
// "subConfigDef") to any depth. A node describes one layer of a rendered
// panel: which source bitmap to read, which rectangle of it to crop, how
// large to draw it, where to place it, and when it is active.
//
// # Inheritance
//
// FilePath, FileName, ModuleName and Enabled are resolved once, at load
// time, by a single top-down pass: any unset value is copied from the
// nearest ancestor that defines it (module, then configuration, then
// sub-configuration). The pass threads an explicit ancestor chain instead
// of storing parent pointers, so the tree never holds back-references;
// each node only remembers the names of its ancestors for [Node.ReadableName].
//
// After resolution every node carries a concrete file path and file name,
// or [Load] fails with MALFORMED_CONFIGURATION.
//
// Top-level configurations that omit geometry borrow it from the display
// of the same name (see package display).
//
// # Field table
//
// [Fields] is an explicit table of field name to getter/setter closures.
// It drives fingerprinting, field-by-field equality ([Equal]) and textual
// edits ([Set]) without runtime reflection.
//
// # Ordering
//
// Children order is significant: composition follows list order and
// [Node.Find] returns the first depth-first pre-order match.
package config
