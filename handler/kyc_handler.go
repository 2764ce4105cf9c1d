package handler

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/Aashish23092/kyc-document-verification/dto"
	"github.com/Aashish23092/kyc-document-verification/service"

	"github.com/gin-gonic/gin"
)

const (
	codeInvalidInput       = "INVALID_INPUT"
	codeVerificationFailed = "VERIFICATION_FAILED"
)

// KYCHandler serves the verification endpoints.
type KYCHandler struct {
	kycService   *service.KYCService
	maxFileSize  int64
	maxDocuments int
}

// NewKYCHandler creates a new KYCHandler instance
func NewKYCHandler(kycService *service.KYCService, maxFileSize int64, maxDocuments int) *KYCHandler {
	return &KYCHandler{
		kycService:   kycService,
		maxFileSize:  maxFileSize,
		maxDocuments: maxDocuments,
	}
}

// Verify handles the POST /kyc/verify endpoint. The body is a JSON array of
// person records with pre-extracted fields.
func (h *KYCHandler) Verify(c *gin.Context) {
	log.Printf("[%s] Received KYC verification request", requestID(c))

	body := io.Reader(c.Request.Body)
	if h.maxFileSize > 0 {
		body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxFileSize)
	}

	records, err := dto.DecodePersonRecords(body)
	if err != nil {
		h.sendError(c, http.StatusBadRequest, codeInvalidInput, "Invalid person records", err)
		return
	}

	results, err := h.kycService.VerifyRecords(c.Request.Context(), records)
	if err != nil {
		h.sendServiceError(c, "Failed to verify records", err)
		return
	}

	log.Printf("[%s] Verified %d people", requestID(c), len(results))
	c.JSON(http.StatusOK, results)
}

// Extract handles the POST /kyc/extract endpoint: multipart person_id plus
// one "file" part per document.
func (h *KYCHandler) Extract(c *gin.Context) {
	log.Printf("[%s] Received KYC extraction request", requestID(c))

	form, err := c.MultipartForm()
	if err != nil {
		h.sendError(c, http.StatusBadRequest, codeInvalidInput, "Failed to parse multipart form", err)
		return
	}

	request := &dto.ExtractRequest{
		PersonID: c.PostForm("person_id"),
		Files:    form.File["file"],
	}
	if err := request.Validate(h.maxDocuments); err != nil {
		h.sendError(c, http.StatusBadRequest, codeInvalidInput, "Invalid extraction request", err)
		return
	}

	person := service.PersonDocuments{PersonID: request.PersonID}
	for _, file := range request.Files {
		if h.maxFileSize > 0 && file.Size > h.maxFileSize {
			h.sendError(c, http.StatusBadRequest, codeInvalidInput, "File too large: "+file.Filename, nil)
			return
		}

		reader, err := file.Open()
		if err != nil {
			h.sendError(c, http.StatusInternalServerError, codeVerificationFailed, "Failed to open uploaded file", err)
			return
		}
		data, err := io.ReadAll(reader)
		reader.Close()
		if err != nil {
			h.sendError(c, http.StatusInternalServerError, codeVerificationFailed, "Failed to read uploaded file", err)
			return
		}

		person.Documents = append(person.Documents, service.Document{
			Name:     file.Filename,
			Data:     data,
			MimeType: file.Header.Get("Content-Type"),
		})
	}

	log.Printf("[%s] Processing %d files for %s", requestID(c), len(person.Documents), person.PersonID)

	result, err := h.kycService.ProcessPerson(c.Request.Context(), person)
	if err != nil {
		h.sendServiceError(c, "Failed to verify documents", err)
		return
	}

	log.Printf("[%s] %s: %s", requestID(c), result.PersonID, result.OverallStatus)
	c.JSON(http.StatusOK, result)
}

func (h *KYCHandler) sendServiceError(c *gin.Context, message string, err error) {
	if errors.Is(err, dto.ErrInvalidInput) || errors.Is(err, dto.ErrUnsupportedFile) {
		h.sendError(c, http.StatusBadRequest, codeInvalidInput, message, err)
		return
	}
	h.sendError(c, http.StatusInternalServerError, codeVerificationFailed, message, err)
}

// sendError sends a structured error response
func (h *KYCHandler) sendError(c *gin.Context, statusCode int, code, message string, err error) {
	errorMsg := message
	if err != nil {
		errorMsg = err.Error()
		log.Printf("[%s] Error: %s - %v", requestID(c), message, err)
	}

	c.JSON(statusCode, dto.ErrorResponse{
		Error:   code,
		Message: errorMsg,
		Code:    statusCode,
	})
}
