// Package migrations holds the schema migrations. Each file registers its
// migrations from init(); cmd/bazaar imports the package for that side
// effect.
package migrations
