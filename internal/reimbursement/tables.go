package reimbursement

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// CareType identifies the kind of care being billed.
type CareType string

// Care types offered by the simulator.
const (
	CareGeneralPractitioner CareType = "generaliste"
	CareSpecialist          CareType = "specialiste"
	CareDentist             CareType = "dentiste"
	CareGynecologist        CareType = "gynecologue"
	CareMedication          CareType = "medicament"
	CareHospitalization     CareType = "hospitalisation"
)

// CareInfo describes the statutory terms of a care type. Medication and
// hospitalisation have no regulated tariff, so their statutory base is 0.
type CareInfo struct {
	ID                CareType        `json:"id"`
	Label             string          `json:"label"`
	Tariff            decimal.Decimal `json:"tariff"`
	Rate              decimal.Decimal `json:"rate"`
	Sector2Multiplier decimal.Decimal `json:"sector2Multiplier"`
}

// Sector is the practitioner's agreement with the statutory insurer.
type Sector string

// Sectors
const (
	SectorRegulated Sector = "1"
	SectorFree      Sector = "2"
)

// Label returns the display name of the sector.
func (s Sector) Label() string {
	if s == SectorFree {
		return "Secteur 2 (honoraires libres)"
	}
	return "Secteur 1 (conventionné)"
}

// Tier is the supplemental insurance level, in percent of the regulated
// tariff (0 means no supplemental insurance).
type Tier int

// TierInfo describes a supplemental tier offered to the user.
type TierInfo struct {
	Tier        Tier   `json:"tier"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

var careTypes = []CareInfo{
	{ID: CareGeneralPractitioner, Label: "Médecin généraliste", Tariff: dec("26.50"), Rate: dec("0.70"), Sector2Multiplier: dec("1.3")},
	{ID: CareSpecialist, Label: "Spécialiste secteur 1", Tariff: dec("31.50"), Rate: dec("0.70"), Sector2Multiplier: dec("1.5")},
	{ID: CareDentist, Label: "Dentiste", Tariff: dec("28.00"), Rate: dec("0.70"), Sector2Multiplier: dec("1.4")},
	{ID: CareGynecologist, Label: "Gynécologue", Tariff: dec("31.50"), Rate: dec("0.70"), Sector2Multiplier: dec("1.6")},
	{ID: CareMedication, Label: "Médicament", Tariff: decimal.Zero, Rate: dec("0.65"), Sector2Multiplier: dec("1")},
	{ID: CareHospitalization, Label: "Hospitalisation", Tariff: decimal.Zero, Rate: dec("0.80"), Sector2Multiplier: dec("1.2")},
}

var tiers = []TierInfo{
	{Tier: 0, Label: "Aucune mutuelle", Description: "Pas de complémentaire santé"},
	{Tier: 100, Label: "Mutuelle 100%", Description: "Rembourse le ticket modérateur (30%)"},
	{Tier: 125, Label: "Mutuelle 125%", Description: "Ticket modérateur + 25% dépassement"},
	{Tier: 150, Label: "Mutuelle 150%", Description: "Ticket modérateur + 50% dépassement"},
	{Tier: 200, Label: "Mutuelle 200%", Description: "Ticket modérateur + 100% dépassement"},
	{Tier: 300, Label: "Mutuelle 300%", Description: "Ticket modérateur + 200% dépassement (haut de gamme)"},
	{Tier: 400, Label: "Mutuelle 400%", Description: "Remboursement intégral + forfait confort"},
}

// CareTypes returns a copy of the care type table in display order.
func CareTypes() []CareInfo {
	out := make([]CareInfo, len(careTypes))
	copy(out, careTypes)
	return out
}

// LookupCareType returns the terms of a care type. Unknown identifiers fall
// back to the general practitioner, reported by the boolean.
func LookupCareType(id CareType) (CareInfo, bool) {
	for _, c := range careTypes {
		if c.ID == id {
			return c, true
		}
	}
	return careTypes[0], false
}

// Tiers returns a copy of the supplemental tier table.
func Tiers() []TierInfo {
	out := make([]TierInfo, len(tiers))
	copy(out, tiers)
	return out
}

// Known reports whether the tier is one of the offered levels.
func (t Tier) Known() bool {
	for _, info := range tiers {
		if info.Tier == t {
			return true
		}
	}
	return false
}

// Label returns the display name of the tier.
func (t Tier) Label() string {
	for _, info := range tiers {
		if info.Tier == t {
			return info.Label
		}
	}
	return "Mutuelle " + strconv.Itoa(int(t)) + "%"
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
