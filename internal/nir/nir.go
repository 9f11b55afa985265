// Package nir validates and decodes French social-insurance numbers (NIR)
// and computes their modulo-97 control key.
package nir

import (
	"fmt"
	"strconv"
	"time"
)

// Length is the number of digits of a NIR without its control key.
const Length = 13

const keyModulus = 97

// DetailKind identifies one entry of a validation report.
type DetailKind string

// Error kinds flip the validity of the number, notice kinds are informational.
const (
	DetailEmpty       DetailKind = "empty"
	DetailLength      DetailKind = "length"
	DetailDigitsOnly  DetailKind = "digits_only"
	DetailGender      DetailKind = "gender"
	DetailYear        DetailKind = "year"
	DetailMonth       DetailKind = "month"
	DetailDepartment  DetailKind = "department"
	DetailCommune     DetailKind = "commune"
	DetailSequence    DetailKind = "sequence"
	DetailForeignBorn DetailKind = "foreign_born"
	DetailTemporary   DetailKind = "temporary"
	DetailFutureYear  DetailKind = "future_year"
	DetailBefore1900  DetailKind = "before_1900"
)

// Notice reports whether the kind is informational only.
func (k DetailKind) Notice() bool {
	switch k {
	case DetailForeignBorn, DetailTemporary, DetailFutureYear, DetailBefore1900:
		return true
	}
	return false
}

// Detail is one reason attached to a validation result.
type Detail struct {
	Kind DetailKind `json:"kind"`
	Text string     `json:"text"`
}

// Record holds the fields decoded from a 13-digit NIR.
type Record struct {
	SexCode       int    `json:"sexCode"`
	Gender        string `json:"gender,omitempty"`
	BirthYear     int    `json:"birthYear"`
	FullBirthYear int    `json:"fullBirthYear"`
	BirthMonth    int    `json:"birthMonth"`
	Department    string `json:"department"`
	Commune       string `json:"commune"`
	Sequence      string `json:"sequence"`
	ForeignBorn   bool   `json:"foreignBorn"`
	Temporary     bool   `json:"temporary"`
	ControlKey    int    `json:"controlKey"`

	digits string
}

// Result is the outcome of Validate. Record is nil when the input could not
// be decoded (empty or wrong length).
type Result struct {
	Valid   bool     `json:"valid"`
	Message string   `json:"message"`
	Details []Detail `json:"details"`
	Record  *Record  `json:"record,omitempty"`
}

// Has reports whether the result carries a detail of the given kind.
func (r Result) Has(kind DetailKind) bool {
	for _, d := range r.Details {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// Messages returns the detail texts in emission order.
func (r Result) Messages() []string {
	messages := make([]string, 0, len(r.Details))
	for _, d := range r.Details {
		messages = append(messages, d.Text)
	}
	return messages
}

// Validate checks a NIR typed in free form against the current date.
func Validate(raw string) Result {
	return ValidateWithFixedTime(raw, time.Now())
}

// ValidateWithFixedTime checks a NIR with an injectable clock, which drives
// the birth-year disambiguation and the year warnings.
func ValidateWithFixedTime(raw string, now time.Time) Result {
	clean := Clean(raw)

	if clean == "" {
		return Result{
			Message: "Veuillez saisir un numéro",
			Details: []Detail{{Kind: DetailEmpty, Text: "Champ vide"}},
		}
	}

	if len(clean) != Length {
		return Result{
			Message: "Format invalide",
			Details: []Detail{{Kind: DetailLength, Text: "Le numéro doit contenir exactement 13 chiffres"}},
		}
	}

	if !allDigits(clean) {
		return Result{
			Message: "Format invalide",
			Details: []Detail{{Kind: DetailDigitsOnly, Text: "Seuls les chiffres sont autorisés"}},
		}
	}

	sexCode := atoi(clean[0:1])
	year := atoi(clean[1:3])
	month := atoi(clean[3:5])
	department := clean[5:7]
	commune := clean[7:10]
	sequence := clean[10:13]

	var details []Detail
	valid := true
	fail := func(kind DetailKind, text string) {
		valid = false
		details = append(details, Detail{Kind: kind, Text: text})
	}

	gender, ok := genders[sexCode]
	if !ok {
		fail(DetailGender, "Code genre invalide (doit être 1, 2, 3, 4, 7 ou 8)")
	}

	if year < 0 || year > 99 {
		fail(DetailYear, "Année de naissance invalide (doit être entre 00 et 99)")
	}

	if month < 1 || month > 12 {
		fail(DetailMonth, "Mois de naissance invalide (doit être entre 01 et 12)")
	}

	if !IsDepartmentValid(department) {
		fail(DetailDepartment, fmt.Sprintf("Département %q invalide (01-95, 2A/B, 97-99, 99)", department))
	}

	if n := atoi(commune); n < 1 || n > 999 {
		fail(DetailCommune, "Code commune invalide (doit être entre 001 et 999)")
	}

	if n := atoi(sequence); n < 1 || n > 999 {
		fail(DetailSequence, "Numéro d'ordre invalide (doit être entre 001 et 999)")
	}

	key, _ := ControlKey(clean)

	record := &Record{
		SexCode:       sexCode,
		Gender:        gender.label,
		BirthYear:     year,
		FullBirthYear: ResolveBirthYear(year, now),
		BirthMonth:    month,
		Department:    department,
		Commune:       commune,
		Sequence:      sequence,
		ForeignBorn:   gender.foreignBorn,
		Temporary:     gender.temporary,
		ControlKey:    key,
		digits:        clean,
	}

	if record.ForeignBorn {
		details = append(details, Detail{Kind: DetailForeignBorn, Text: "Né(e) à l'étranger (série 3 ou 4)"})
	}
	if record.Temporary {
		details = append(details, Detail{Kind: DetailTemporary, Text: "Numéro temporaire identifié (série 7 ou 8)"})
	}
	if record.FullBirthYear > now.Year() {
		details = append(details, Detail{Kind: DetailFutureYear, Text: "Attention : année de naissance postérieure à l'année en cours"})
	}
	if record.FullBirthYear < 1900 {
		details = append(details, Detail{Kind: DetailBefore1900, Text: "Attention : année de naissance antérieure à 1900"})
	}

	message := "Numéro NIR invalide"
	if valid {
		message = "Numéro NIR valide"
	}

	return Result{
		Valid:   valid,
		Message: message,
		Details: details,
		Record:  record,
	}
}

// ControlKey returns 97 - (N mod 97) where N is the 13-digit number. The
// boolean is false when digits is not exactly 13 ASCII digits.
func ControlKey(digits string) (int, bool) {
	if len(digits) != Length || !allDigits(digits) {
		return 0, false
	}
	// 13 digits never exceed 10^13, well inside uint64.
	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return keyModulus - int(n%keyModulus), true
}

// ResolveBirthYear expands a two-digit year. Years up to the current year's
// suffix, and every year below 20, are placed in the 2000s.
func ResolveBirthYear(yy int, now time.Time) int {
	current := now.Year() % 100
	if yy <= current || yy < 20 {
		return 2000 + yy
	}
	return 1900 + yy
}

// IsDepartmentValid reports whether code is an accepted birth department:
// 01-95, Corsica (2A, 2B), overseas 97-98 and 99 for births abroad.
func IsDepartmentValid(code string) bool {
	if code == "2A" || code == "2B" {
		return true
	}
	if code == "" || !allDigits(code) {
		return false
	}
	n := atoi(code)
	if n >= 1 && n <= 95 {
		return true
	}
	return len(code) == 2 && n >= 97 && n <= 99
}

// MonthName returns the French name of the birth month.
func (r Record) MonthName() string {
	return MonthName(r.BirthMonth)
}

// DepartmentName returns the display name of the birth department.
func (r Record) DepartmentName() string {
	return DepartmentName(r.Department)
}

// Number returns the 13 decoded digits.
func (r Record) Number() string {
	return r.digits
}

// FullNumber returns the 13 digits followed by the two-digit control key.
func (r Record) FullNumber() string {
	return fmt.Sprintf("%s%02d", r.digits, r.ControlKey)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// atoi parses a run of ASCII digits already checked by the caller.
func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
