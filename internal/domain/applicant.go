package domain

import "time"

type Applicant struct {
	ID               ApplicantID `gorm:"type:uuid;primaryKey" json:"id"`
	CampaignID       CampaignID  `gorm:"column:convocatoria_id;type:uuid;not null;index:ix_aspirante_conv_dni,priority:1;index:ix_aspirante_conv_email,priority:1" json:"campaignId"`
	Email            string      `gorm:"column:email;type:text;not null;index:ix_aspirante_conv_email,priority:2" json:"email"`
	Name             *string     `gorm:"column:nombre;type:text" json:"name,omitempty"`
	NationalID       *string     `gorm:"column:dni_nie;type:text;index:ix_aspirante_conv_dni,priority:2" json:"nationalId,omitempty"`
	EmployeeNumber   *int        `gorm:"column:num_empleat" json:"employeeNumber,omitempty"`
	MaskedNationalID *string     `gorm:"column:dni_nie_emmascarat;type:text" json:"maskedNationalId,omitempty"`
	FirstSurname     *string     `gorm:"column:primer_cognom;type:text" json:"firstSurname,omitempty"`
	SecondSurname    *string     `gorm:"column:segon_cognom;type:text" json:"secondSurname,omitempty"`
	GivenName        *string     `gorm:"column:nom;type:text" json:"givenName,omitempty"`
	// ShiftY only exists in sheets produced by the first import layout; the
	// reconciler never writes it.
	ShiftY      *string    `gorm:"column:torn_y;type:text" json:"shiftY,omitempty"`
	SubmittedAt *time.Time `gorm:"column:enviado_en" json:"submittedAt,omitempty"`
	CreatedAt   time.Time  `gorm:"column:creado_en;not null" json:"createdAt"`
}

func (Applicant) TableName() string { return "aspirante" }

// Submitted reports whether the final ranking was already sent. Submission is
// terminal: no further reordering is accepted.
func (a *Applicant) Submitted() bool { return a.SubmittedAt != nil }
