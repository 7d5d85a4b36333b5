package dto

import "github.com/google/uuid"

// RankingItem is one visible position. Order is the dense 1..N presentation
// rank, not the stored value.
type RankingItem struct {
	PositionID  uuid.UUID `json:"positionId"`
	Base        string    `json:"base"`
	Position    string    `json:"position"`
	Centre      *string   `json:"centre,omitempty"`
	Description *string   `json:"description,omitempty"`
	Title       string    `json:"title"`
	Order       int       `json:"order"`
}

type RankingResponse struct {
	OK    bool          `json:"ok"`
	Items []RankingItem `json:"items"`
}

type SaveRankingRequest struct {
	PositionIDs []uuid.UUID `json:"positionIds"`
}

type OperationResponse struct {
	OK           bool   `json:"ok"`
	SessionEnded bool   `json:"sessionEnded,omitempty"`
	Error        string `json:"error,omitempty"`
}
