// Package markdown validates free-text manifest fields against the
// catalog's restricted markup subset.
//
// Content is parsed with goldmark and the resulting AST is walked, so the
// check never depends on renderer internals: disallowed node kinds fail
// validation, and a handful of constructs the parser resolves before the
// AST stage (entities, reference links, setext underlines) are caught by a
// raw-text scan.
package markdown
