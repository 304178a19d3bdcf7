// Package avatar holds carrier definitions: the persisted record of which
// slots one carrier instance stores, under which parameter prefix and key
// coordinate. Definitions are saved as an ordered TOML record list so layout
// changes show up in a plain diff.
package avatar
