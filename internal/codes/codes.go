package codes

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"strings"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"github.com/boombuler/barcode/qr"
)

var (
	// ErrUnsupportedFormat is returned for extensions other than png, jpg, jpeg and gif.
	ErrUnsupportedFormat = errors.New("codes: unsupported image format")
	// ErrEmptyText is returned when there is nothing to encode.
	ErrEmptyText = errors.New("codes: text is required")
)

const (
	barcodeWidth  = 300
	barcodeHeight = 100
	qrSize        = 256
)

// Request is the body accepted by the barcode and QR endpoints.
type Request struct {
	Text      string `json:"text"`
	Extension string `json:"extension"`
}

// Image is an encoded code.
type Image struct {
	Data        []byte
	ContentType string
}

// Barcode renders text as a Code 128 barcode.
func Barcode(req Request) (Image, error) {
	format, err := normalize(req)
	if err != nil {
		return Image{}, err
	}

	bc, err := code128.Encode(req.Text)
	if err != nil {
		return Image{}, fmt.Errorf("encode barcode: %w", err)
	}
	width := max(barcodeWidth, bc.Bounds().Dx())
	scaled, err := barcode.Scale(bc, width, barcodeHeight)
	if err != nil {
		return Image{}, fmt.Errorf("scale barcode: %w", err)
	}
	return render(scaled, format)
}

// QRCode renders text as a QR code with medium error correction.
func QRCode(req Request) (Image, error) {
	format, err := normalize(req)
	if err != nil {
		return Image{}, err
	}

	code, err := qr.Encode(req.Text, qr.M, qr.Auto)
	if err != nil {
		return Image{}, fmt.Errorf("encode qr code: %w", err)
	}
	size := max(qrSize, code.Bounds().Dx())
	scaled, err := barcode.Scale(code, size, size)
	if err != nil {
		return Image{}, fmt.Errorf("scale qr code: %w", err)
	}
	return render(scaled, format)
}

func normalize(req Request) (string, error) {
	if strings.TrimSpace(req.Text) == "" {
		return "", ErrEmptyText
	}
	format := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(req.Extension), "."))
	switch format {
	case "png", "jpg", "jpeg", "gif":
		return format, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, req.Extension)
	}
}

func render(img image.Image, format string) (Image, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpg", "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case "gif":
		err = gif.Encode(&buf, img, nil)
	}
	if err != nil {
		return Image{}, fmt.Errorf("render %s: %w", format, err)
	}
	return Image{Data: buf.Bytes(), ContentType: "image/" + format}, nil
}
