// Package archive assembles the distributable zip files of a bundling
// run: the bundle itself and, optionally, an archive of the compiled
// build artifacts.
package archive
