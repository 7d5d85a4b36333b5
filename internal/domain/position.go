package domain

import "time"

// Position ("plaza") is keyed by (campaign, base, position code).
type Position struct {
	ID             PositionID `gorm:"type:uuid;primaryKey" json:"id"`
	CampaignID     CampaignID `gorm:"column:convocatoria_id;type:uuid;not null;uniqueIndex:ux_plaza_natural,priority:1" json:"campaignId"`
	Base           string     `gorm:"column:base;type:text;not null;uniqueIndex:ux_plaza_natural,priority:2" json:"base"`
	Code           string     `gorm:"column:posicion;type:text;not null;uniqueIndex:ux_plaza_natural,priority:3" json:"position"`
	Hours          *string    `gorm:"column:hores;type:text" json:"hours,omitempty"`
	Shift          *string    `gorm:"column:torn_x;type:text" json:"shift,omitempty"`
	AllocationCode *string    `gorm:"column:gfh_adjudicacio;type:text" json:"allocationCode,omitempty"`
	Centre         *string    `gorm:"column:centro;type:text" json:"centre,omitempty"`
	Description    *string    `gorm:"column:descripcion;type:text" json:"description,omitempty"`
	CreatedAt      time.Time  `gorm:"column:creado_en;not null" json:"createdAt"`
}

func (Position) TableName() string { return "plaza" }

func (p *Position) Title() string { return p.Base + "-" + p.Code }
