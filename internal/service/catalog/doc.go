// Package catalog validates a whole catalog checkout: it discovers every
// application manifest and checks its values and its placement, reporting
// all failures at once.
package catalog
