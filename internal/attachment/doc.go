// Package attachment stores hero images as <name>.png files below
// Resources/Images.
package attachment
