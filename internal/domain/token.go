package domain

import "time"

// MaxFailedAttempts locks a code once reached.
const MaxFailedAttempts = 5

type AccessToken struct {
	ID             TokenID     `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicantID    ApplicantID `gorm:"column:aspirante_id;type:uuid;not null;index" json:"applicantId"`
	Code           string      `gorm:"column:codigo;type:text;not null;uniqueIndex:ux_aspirante_token_codigo" json:"code"`
	ExpiresAt      time.Time   `gorm:"column:expira_en;not null" json:"expiresAt"`
	FailedAttempts int         `gorm:"column:intentos_fallidos;not null" json:"failedAttempts"`
	RevokedAt      *time.Time  `gorm:"column:revocado_en" json:"revokedAt,omitempty"`
	LastAccessAt   *time.Time  `gorm:"column:ultimo_acceso_en" json:"lastAccessAt,omitempty"`
	CreatedAt      time.Time   `gorm:"column:creado_en;not null" json:"createdAt"`
}

func (AccessToken) TableName() string { return "aspirante_token" }

// UsableAt reports whether the token itself (ignoring campaign and applicant
// state) can still be used to log in.
func (t *AccessToken) UsableAt(now time.Time) bool {
	return t.RevokedAt == nil && now.Before(t.ExpiresAt)
}
