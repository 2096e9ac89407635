package dto

import "github.com/lyceo/charge-api/internal/models"

// ImportRequest carries the raw planning-document text to extract.
type ImportRequest struct {
	Text string `json:"text" binding:"required"`
}

// ImportResponse lists the records synthesized and stored from a document.
type ImportResponse struct {
	Imported int          `json:"imported"`
	Records  []models.DST `json:"records"`
}
