package domain

import "time"

// Campaign is a hiring round ("convocatoria"). Applicants may only log in and
// change their ranking while the campaign is open.
type Campaign struct {
	ID         CampaignID `gorm:"type:uuid;primaryKey" json:"id"`
	Code       string     `gorm:"column:codigo;type:text;not null;uniqueIndex:ux_convocatoria_codigo" json:"code"`
	Name       string     `gorm:"column:nombre;type:text;not null" json:"name"`
	StartDate  *time.Time `gorm:"column:fecha_inicio" json:"startDate,omitempty"`
	EndDate    *time.Time `gorm:"column:fecha_fin" json:"endDate,omitempty"`
	Active     bool       `gorm:"column:activa;not null" json:"active"`
	AccessFrom *time.Time `gorm:"column:acceso_desde" json:"accessFrom,omitempty"`
	AccessTo   *time.Time `gorm:"column:acceso_hasta" json:"accessTo,omitempty"`
	CreatedAt  time.Time  `gorm:"column:creado_en;not null" json:"createdAt"`
}

func (Campaign) TableName() string { return "convocatoria" }

// IsOpenAt reports whether the campaign is active and now falls inside the
// access window. Missing bounds are unbounded.
func (c *Campaign) IsOpenAt(now time.Time) bool {
	if c == nil || !c.Active {
		return false
	}
	if c.AccessFrom != nil && now.Before(*c.AccessFrom) {
		return false
	}
	if c.AccessTo != nil && now.After(*c.AccessTo) {
		return false
	}
	return true
}
