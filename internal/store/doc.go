// Package store groups the place-record store implementations. The
// store contract itself lives in the place package; subpackages here
// provide memory, redis, and postgres backends.
package store
