// Package codes renders Code 128 barcodes and QR codes as png, jpeg or gif
// images.
package codes
