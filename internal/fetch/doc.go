// Package fetch clones the pinned source revision declared in a manifest
// into the working sandbox.
//
// Only git sources are supported, and only full 40-character commit hashes
// are accepted: the pinning contract is what makes a bundle reproducible.
// Clones are recursive, checkouts are detached, and a declared subdirectory
// must prove containment within the clone before it becomes the effective
// source root.
package fetch
