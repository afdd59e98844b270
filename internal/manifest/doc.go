// Package manifest defines the application manifest document, its YAML and
// JSON (de)serialization, final value checks, and the reconciliation of
// author-supplied metadata with the metadata declared in the application's
// build-declaration target.
//
// Reconciliation follows a fixed ordered field map: name and id always must
// match, version must match unless explicitly relaxed, and every other field
// keeps the manifest value on conflict while empty manifest values adopt the
// declared ones.
package manifest
