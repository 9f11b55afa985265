package nir

import "fmt"

type genderCode struct {
	label       string
	foreignBorn bool
	temporary   bool
}

var genders = map[int]genderCode{
	1: {label: "Homme"},
	2: {label: "Femme"},
	3: {label: "Homme né à l'étranger", foreignBorn: true},
	4: {label: "Femme née à l'étranger", foreignBorn: true},
	7: {label: "Homme (numéro temporaire)", temporary: true},
	8: {label: "Femme (numéro temporaire)", temporary: true},
}

var months = [12]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

// Only the most populated departments carry a name; the others are shown
// by their code.
var departments = map[string]string{
	"75": "Paris", "13": "Bouches-du-Rhône", "69": "Rhône", "59": "Nord",
	"33": "Gironde", "31": "Haute-Garonne", "44": "Loire-Atlantique",
	"67": "Bas-Rhin", "93": "Seine-Saint-Denis", "92": "Hauts-de-Seine",
	"06": "Alpes-Maritimes", "34": "Hérault", "76": "Seine-Maritime",
	"35": "Ille-et-Vilaine", "57": "Moselle", "2A": "Corse-du-Sud",
	"2B": "Haute-Corse", "971": "Guadeloupe", "972": "Martinique",
	"973": "Guyane", "974": "La Réunion", "976": "Mayotte",
	"99": "Étranger",
}

// MonthName returns the French month name, or "Mois N" outside 1-12.
func MonthName(month int) string {
	if month < 1 || month > len(months) {
		return fmt.Sprintf("Mois %d", month)
	}
	return months[month-1]
}

// DepartmentName returns the department name, or "Département CODE" when
// the code has no registered name.
func DepartmentName(code string) string {
	if name, ok := departments[code]; ok {
		return name
	}
	return "Département " + code
}

// GenderLabel returns the label of a sex code and whether the code is valid.
func GenderLabel(sexCode int) (string, bool) {
	g, ok := genders[sexCode]
	return g.label, ok
}
