// Package bundler implements the end-to-end bundling pipeline: it pins
// and fetches the declared source revision, drives the external build
// tool, reconciles author metadata with the build declaration, validates
// text and image assets, and assembles the distributable bundle.
package bundler
