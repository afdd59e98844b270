// Package buildtool wraps the external build/lint tool as a black box:
// it runs the tool as a subprocess, captures its output verbatim for error
// reporting, and discovers the externally distributable application target
// from the tool's own declaration files.
package buildtool
