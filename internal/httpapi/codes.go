package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/goliatone/go-heroes/internal/codes"
)

// CodeHandler serves barcode and QR code generation.
type CodeHandler struct{}

// Barcode handles POST /api/Barcode/generateBarcode.
func (CodeHandler) Barcode(w http.ResponseWriter, r *http.Request) {
	serveCode(w, r, codes.Barcode)
}

// QRCode handles POST /api/QRCode/generateQRCode.
func (CodeHandler) QRCode(w http.ResponseWriter, r *http.Request) {
	serveCode(w, r, codes.QRCode)
}

func serveCode(w http.ResponseWriter, r *http.Request, encode func(codes.Request) (codes.Image, error)) {
	var req codes.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondWithError(w, r, http.StatusBadRequest, "invalid JSON body")
		return
	}

	img, err := encode(req)
	if err != nil {
		RespondWithServiceError(w, r, err)
		return
	}
	RespondWithBytes(w, r, img.ContentType, img.Data)
}
