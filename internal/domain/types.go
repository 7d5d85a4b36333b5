package domain

import "github.com/google/uuid"

type CampaignID = uuid.UUID
type ApplicantID = uuid.UUID
type PositionID = uuid.UUID
type LinkID = uuid.UUID
type TokenID = uuid.UUID
