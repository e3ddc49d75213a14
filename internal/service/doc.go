// Package service implements the hero catalog on top of the unit of work,
// the cached listing and the image store.
package service
