// Package storage opens the primary and secondary stores and bootstraps
// their schema.
package storage
