package dto

import "github.com/google/uuid"

// ImportRequest is an uploaded workbook. DefaultCampaignID pins rows that do
// not carry their own campaign column.
type ImportRequest struct {
	FileName          string
	ContentType       string
	Data              []byte
	DefaultCampaignID *uuid.UUID
}

type ImportResult struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Rows          int    `json:"rows"`
	NewApplicants int    `json:"newApplicants"`
	NewPositions  int    `json:"newPositions"`
	LinksCreated  int    `json:"linksCreated"`
	LinksUpdated  int    `json:"linksUpdated"`
	TokensCreated int    `json:"tokensCreated"`
}
