package service

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"log"
	"strings"

	"github.com/makiuchi-d/gozxing"
	"github.com/makiuchi-d/gozxing/qrcode"

	"github.com/Aashish23092/kyc-document-verification/dto"
	"github.com/Aashish23092/kyc-document-verification/utils"
)

// minPDFTextLen is the shortest embedded text layer trusted over OCR.
const minPDFTextLen = 50

// Document is one uploaded or on-disk file belonging to a person.
type Document struct {
	Name     string
	Data     []byte
	MimeType string
}

// DocumentContent is what a document yields before field parsing: either an
// embedded text layer or images to OCR, plus fields from an Aadhaar QR code.
type DocumentContent struct {
	Text     string
	Images   [][]byte
	QRFields dto.ExtractedFields
}

// DocumentLoader turns raw files into OCR-ready content.
type DocumentLoader struct {
	pdfProcessor PDFProcessor
}

func NewDocumentLoader(pdfProcessor PDFProcessor) *DocumentLoader {
	return &DocumentLoader{pdfProcessor: pdfProcessor}
}

// Load decodes doc. Images are re-encoded as PNG for the recognizers.
func (l *DocumentLoader) Load(doc Document) (*DocumentContent, error) {
	mimeType := doc.MimeType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = utils.InferMimeType(doc.Name)
	}
	if !utils.IsValidMimeType(mimeType) {
		return nil, fmt.Errorf("%w: %s", dto.ErrUnsupportedFile, doc.Name)
	}

	content := &DocumentContent{}
	var images []image.Image

	if strings.Contains(mimeType, "pdf") {
		log.Printf("Processing PDF %s", doc.Name)

		text, err := l.pdfProcessor.ExtractText(doc.Data)
		if err != nil {
			log.Printf("PDF text layer unavailable for %s: %v", doc.Name, err)
		}
		if len(strings.TrimSpace(text)) >= minPDFTextLen {
			content.Text = text
			return content, nil
		}

		images, err = l.pdfProcessor.ExtractImages(doc.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to extract images from PDF: %w", err)
		}
		if len(images) == 0 {
			return nil, fmt.Errorf("no text or images found in PDF %s", doc.Name)
		}
	} else {
		img, err := decodeImage(doc.Data, mimeType)
		if err != nil {
			return nil, fmt.Errorf("failed to decode image: %w", err)
		}
		images = []image.Image{img}
	}

	for idx, img := range images {
		if content.QRFields == nil {
			qr, err := extractFromQR(img)
			if err == nil {
				log.Printf("Aadhaar QR decoded from %s image %d", doc.Name, idx+1)
				content.QRFields = qr.ToFields()
			}
		}

		buf := new(bytes.Buffer)
		if err := png.Encode(buf, img); err != nil {
			log.Printf("Failed to encode %s image %d: %v", doc.Name, idx+1, err)
			continue
		}
		content.Images = append(content.Images, buf.Bytes())
	}

	return content, nil
}

// extractFromQR decodes the Aadhaar secure QR XML payload from img.
func extractFromQR(img image.Image) (*dto.AadhaarQRData, error) {
	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return nil, fmt.Errorf("failed to create binary bitmap: %w", err)
	}

	result, err := qrcode.NewQRCodeReader().Decode(bmp, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decode QR code: %w", err)
	}

	var qrData dto.AadhaarQRData
	if err := xml.Unmarshal([]byte(result.GetText()), &qrData); err != nil {
		return nil, fmt.Errorf("failed to parse QR XML data: %w", err)
	}
	return &qrData, nil
}

// decodeImage decodes an image from bytes based on MIME type
func decodeImage(data []byte, mimeType string) (image.Image, error) {
	reader := bytes.NewReader(data)

	if strings.Contains(mimeType, "png") {
		return png.Decode(reader)
	} else if strings.Contains(mimeType, "jpeg") || strings.Contains(mimeType, "jpg") {
		return jpeg.Decode(reader)
	}

	img, _, err := image.Decode(reader)
	return img, err
}
