package dto

import (
	"time"

	"prioritizacion/internal/domain"
)

// CampaignInput creates or edits a campaign. With AutoCode set the code is
// generated, the campaign is forced active and the access window mirrors
// StartDate/EndDate; Code, Active and the access fields are ignored.
type CampaignInput struct {
	Code       string     `json:"code" validate:"omitempty,max=64"`
	Name       string     `json:"name" validate:"max=200"`
	StartDate  *time.Time `json:"startDate,omitempty"`
	EndDate    *time.Time `json:"endDate,omitempty"`
	Active     bool       `json:"active"`
	AccessFrom *time.Time `json:"accessFrom,omitempty"`
	AccessTo   *time.Time `json:"accessTo,omitempty"`
	AutoCode   bool       `json:"autoCode,omitempty"`
}

type DeleteCampaignResponse struct {
	OK      bool             `json:"ok"`
	Deleted map[string]int64 `json:"deleted,omitempty"`
}

type CampaignResponse struct {
	OK       bool             `json:"ok"`
	Campaign *domain.Campaign `json:"campaign"`
}

type CampaignListResponse struct {
	OK    bool              `json:"ok"`
	Items []domain.Campaign `json:"items"`
}
