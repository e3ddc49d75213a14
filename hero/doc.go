// Package hero holds the Hero model and its repository.
package hero
