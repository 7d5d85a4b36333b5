package spreadsheet

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Canonical column keys.
const (
	ColCampaignID       = "convocatoria_id"
	ColNationalID       = "dni_nie"
	ColEmployeeNumber   = "num_empleat"
	ColMaskedNationalID = "dni_nie_emmascarat"
	ColFirstSurname     = "primer_cognom"
	ColSecondSurname    = "segon_cognom"
	ColGivenName        = "nom"
	ColEmail            = "email"
	ColBase             = "base"
	ColPosition         = "posicion"
	ColHours            = "hores"
	ColShift            = "torn_x"
	ColAllocationCode   = "gfh_adjudicacio"
	ColCentre           = "centro"
	ColDescription      = "descripcion"
	ColOrder            = "orden"
	ColExperience       = "experiencia"
	ColPersonalScale    = "barem_personal"
	ColQualification    = "qualificacio"
	ColTotal            = "total"
	ColApplicantFile    = "ficher_aspirant"
	ColWeightedExp      = "pond_exp"
	ColWeightedScale    = "pond_barem"
	ColCompetencyTest   = "prova_competencial"
	ColWeightedTest     = "pond_prova"
)

// aliases maps normalized header spellings (Spanish, Catalan and the
// abbreviations found in real exports) to canonical keys.
var aliases = map[string]string{
	"convocatoriaid": ColCampaignID,
	"idconvocatoria": ColCampaignID,
	"idconvocat":     ColCampaignID,
	"convocatoria":   ColCampaignID,

	"dni":    ColNationalID,
	"dninie": ColNationalID,

	"numempleat": ColEmployeeNumber,
	"numemple":   ColEmployeeNumber,
	"numempleo":  ColEmployeeNumber,

	"dnieniemmascarat": ColMaskedNationalID,
	"dninieemmascarat": ColMaskedNationalID,
	"dninieemms":       ColMaskedNationalID,

	"primercognom": ColFirstSurname,
	"primercog":    ColFirstSurname,
	"primerapell":  ColFirstSurname,
	"segoncognom":  ColSecondSurname,
	"segoncog":     ColSecondSurname,
	"segonapell":   ColSecondSurname,
	"nom":          ColGivenName,
	"nombre":       ColGivenName,

	"email":             ColEmail,
	"correo":            ColEmail,
	"correoelec":        ColEmail,
	"correoelect":       ColEmail,
	"correoelectronico": ColEmail,
	"correuelec":        ColEmail,

	"base":           ColBase,
	"posicion":       ColPosition,
	"posicio":        ColPosition,
	"hores":          ColHours,
	"tornx":          ColShift,
	"torn":           ColShift,
	"gfhadjudicacio": ColAllocationCode,
	"gfhadjudic":     ColAllocationCode,
	"centro":         ColCentre,
	"centre":         ColCentre,
	"descripcion":    ColDescription,
	"descripcio":     ColDescription,
	"orden":          ColOrder,

	"experiencia":       ColExperience,
	"experienci":        ColExperience,
	"barempersonal":     ColPersonalScale,
	"qualificacio":      ColQualification,
	"calificacio":       ColQualification,
	"total":             ColTotal,
	"ficherasp":         ColApplicantFile,
	"ficheraspirant":    ColApplicantFile,
	"pondexp":           ColWeightedExp,
	"pondbare":          ColWeightedScale,
	"pondbarem":         ColWeightedScale,
	"provacompetencial": ColCompetencyTest,
	"provacomp":         ColCompetencyTest,
	"provacompet":       ColCompetencyTest,
	"pondprov":          ColWeightedTest,
	"pondprova":         ColWeightedTest,
}

// NormalizeHeader lower-cases s, strips diacritics and drops everything that
// is not a letter or digit. "Correo Electrónico" becomes "correoelectronico".
func NormalizeHeader(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(strings.TrimSpace(s)))
	if err != nil {
		out = strings.ToLower(strings.TrimSpace(s))
	}
	var b strings.Builder
	for _, r := range out {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Canonical resolves a raw header cell to its canonical key.
func Canonical(header string) (string, bool) {
	key, ok := aliases[NormalizeHeader(header)]
	return key, ok
}

// Columns maps canonical keys to zero-based column indexes.
type Columns map[string]int

// MapHeaders builds the column map from the header row. Unknown headers are
// ignored; when two headers resolve to the same key the rightmost one wins.
func MapHeaders(header []string) Columns {
	cols := Columns{}
	for i, raw := range header {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if key, ok := Canonical(raw); ok {
			cols[key] = i
		}
	}
	return cols
}

func (c Columns) Has(key string) bool {
	_, ok := c[key]
	return ok
}

// Missing lists the required columns absent from c. The campaign column is
// only required when the caller did not pin a campaign.
func (c Columns) Missing(hasDefaultCampaign bool) []string {
	required := []string{ColNationalID, ColEmail, ColBase, ColPosition}
	if !hasDefaultCampaign {
		required = append(required, ColCampaignID)
	}
	var missing []string
	for _, key := range required {
		if !c.Has(key) {
			missing = append(missing, key)
		}
	}
	return missing
}
