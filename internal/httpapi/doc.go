// Package httpapi exposes the hero catalog over HTTP with chi.
package httpapi
