// Package sandbox owns the ephemeral working directory tree used by a
// bundling run and the path containment checks tied to it.
//
// The sandbox root is the trust boundary of the pipeline: cloned sources may
// contain hostile paths, so every path that originates from a manifest or
// from the fetched tree must pass Validate before it is read, copied or
// recorded in the output archive.
package sandbox
