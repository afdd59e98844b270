// Package assets validates and transforms icons and screenshots into the
// device's fixed pixel format: a 10x10 transparency-keyed monochrome icon
// and 128x64 transparency-keyed monochrome screenshots downscaled from an
// exact 4x or 8x source.
package assets
