package pdfdoc

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"sort"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"golang.org/x/image/tiff"

	_ "image/jpeg" // registered for image.Decode on unrecognized file types
)

// pageImages extracts the raster images of one page, normalized to a format
// the OCR engine accepts. Returns images in stable object-number order so
// repeated runs OCR the page identically.
func (d *document) pageImages(pageNr int) [][]byte {
	imgs, err := pdfcpu.ExtractPageImages(d.ctx, pageNr, false)
	if err != nil || len(imgs) == 0 {
		return nil
	}

	objNrs := make([]int, 0, len(imgs))
	for objNr := range imgs {
		objNrs = append(objNrs, objNr)
	}
	sort.Ints(objNrs)

	var out [][]byte
	for _, objNr := range objNrs {
		img := imgs[objNr]
		data, err := io.ReadAll(img)
		if err != nil || len(data) == 0 {
			continue
		}
		out = append(out, normalizeImage(data, img.FileType))
	}
	return out
}

// normalizeImage converts extracted image data to PNG where needed. pdfcpu
// hands CCITT-fax scans back as TIFF, which some Tesseract builds lack; PNG
// and JPEG pass through untouched. On any decode failure the original bytes
// are returned and the OCR engine gets its own chance at them.
func normalizeImage(data []byte, fileType string) []byte {
	switch strings.ToLower(fileType) {
	case "png", "jpg", "jpeg":
		return data
	case "tif", "tiff":
		img, err := tiff.Decode(bytes.NewReader(data))
		if err != nil {
			return data
		}
		return encodePNG(img, data)
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return data
		}
		return encodePNG(img, data)
	}
}

func encodePNG(img image.Image, fallback []byte) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fallback
	}
	return buf.Bytes()
}
