package domain

import "time"

// Link ("aspirante_plaza") is one ranked choice of an applicant. Blocked links
// are hidden from the applicant and stand in for deletion.
type Link struct {
	ID           LinkID      `gorm:"type:uuid;primaryKey" json:"id"`
	ApplicantID  ApplicantID `gorm:"column:aspirante_id;type:uuid;not null;uniqueIndex:ux_aspirante_plaza,priority:1" json:"applicantId"`
	PositionID   PositionID  `gorm:"column:plaza_id;type:uuid;not null;uniqueIndex:ux_aspirante_plaza,priority:2" json:"positionId"`
	DefaultOrder int         `gorm:"column:orden_defecto;not null" json:"defaultOrder"`
	UserOrder    *int        `gorm:"column:orden_usuario" json:"userOrder,omitempty"`
	Blocked      bool        `gorm:"column:bloqueada;not null" json:"blocked"`

	Experience         *float64 `gorm:"column:experiencia;type:numeric" json:"experience,omitempty"`
	PersonalScale      *float64 `gorm:"column:barem_personal;type:numeric" json:"personalScale,omitempty"`
	Qualification      *float64 `gorm:"column:qualificacio;type:numeric" json:"qualification,omitempty"`
	Total              *float64 `gorm:"column:total;type:numeric" json:"total,omitempty"`
	ApplicantFile      *string  `gorm:"column:ficher_aspirant;type:text" json:"applicantFile,omitempty"`
	WeightedExperience *float64 `gorm:"column:pond_exp;type:numeric" json:"weightedExperience,omitempty"`
	WeightedScale      *float64 `gorm:"column:pond_barem;type:numeric" json:"weightedScale,omitempty"`
	CompetencyTest     *float64 `gorm:"column:prova_competencial;type:numeric" json:"competencyTest,omitempty"`
	WeightedTest       *float64 `gorm:"column:pond_prova;type:numeric" json:"weightedTest,omitempty"`

	// Legacy unnamed score columns from the first sheet layout. Read-only.
	Unnamed9  *float64 `gorm:"column:unnamed_9;type:numeric" json:"-"`
	Unnamed11 *float64 `gorm:"column:unnamed_11;type:numeric" json:"-"`
	Unnamed13 *float64 `gorm:"column:unnamed_13;type:numeric" json:"-"`

	CreatedAt time.Time `gorm:"column:creado_en;not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"column:modificado_en;not null" json:"updatedAt"`
}

func (Link) TableName() string { return "aspirante_plaza" }

// EffectiveOrder is the user's order when set, else the imported default.
func (l Link) EffectiveOrder() int {
	if l.UserOrder != nil {
		return *l.UserOrder
	}
	return l.DefaultOrder
}
