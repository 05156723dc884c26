package caserecord

import (
	"time"

	"github.com/google/uuid"
)

// Gender codes.
const (
	GenderMale   = "1"
	GenderFemale = "2"
)

// Disease types: the four human malaria parasite species.
const (
	DiseasePF = "pf"
	DiseasePV = "pv"
	DiseasePM = "pm"
	DiseasePO = "po"
)

// Case detection types.
const (
	PassiveCaseDetection = "pcd"
	ActiveCaseDetection  = "acd"
)

// Case classifications.
const (
	ImportedCase   = "imp"
	IndigenousCase = "ind"
)

// Routing directions.
const (
	MessageTypeInbox   = "inbox"
	MessageTypeSentbox = "sentbox"
)

var genderLabels = map[string]string{
	GenderMale:   "Pria",
	GenderFemale: "Wanita",
}

var diseaseLabels = map[string]string{
	DiseasePF: "Plasmodium Falciparum",
	DiseasePV: "Plasmodium Vivax",
	DiseasePM: "Plasmodium Malariae",
	DiseasePO: "Plasmodium Ovale",
}

var caseTypeLabels = map[string]string{
	PassiveCaseDetection: "Passive Case Detection",
	ActiveCaseDetection:  "Active Case Detection",
}

var classificationLabels = map[string]string{
	ImportedCase:   "Imported Case",
	IndigenousCase: "Indigenous Case",
}

func label(m map[string]string, code string) string {
	if l, ok := m[code]; ok {
		return l
	}
	return code
}

// GenderLabel renders a gender code to its human label.
func GenderLabel(code string) string { return label(genderLabels, code) }

// DiseaseLabel renders a disease type code to its human label.
func DiseaseLabel(code string) string { return label(diseaseLabels, code) }

// CaseTypeLabel renders a detection type code to its human label.
func CaseTypeLabel(code string) string { return label(caseTypeLabels, code) }

// ClassificationLabel renders a classification code to its human label.
func ClassificationLabel(code string) string { return label(classificationLabels, code) }

// CaseInformation is the clinical report. Geo references carry the full
// administrative chain reported for the patient, which may differ from the
// reporter facility's own location.
type CaseInformation struct {
	ID                 uuid.UUID  `db:"id" json:"id"`
	Name               string     `db:"name" json:"name"`
	IsActive           bool       `db:"is_active" json:"is_active"`
	Gender             string     `db:"gender" json:"gender"`
	Age                *int       `db:"age" json:"age,omitempty"`
	PatientContact     *string    `db:"patient_contact" json:"patient_contact,omitempty"`
	DiseaseType        string     `db:"disease_type" json:"disease_type"`
	CaseReportType     string     `db:"case_report_type" json:"case_report_type"`
	ClassificationCase string     `db:"classification_case" json:"classification_case"`
	Address            *string    `db:"address" json:"address,omitempty"`
	Latitude           float64    `db:"latitude" json:"latitude"`
	Longitude          float64    `db:"longitude" json:"longitude"`
	IsPregnant         bool       `db:"is_pregnant" json:"is_pregnant"`
	UserID             *uuid.UUID `db:"user_id" json:"user_id,omitempty"`
	ProvinceID         *uuid.UUID `db:"province_id" json:"province_id,omitempty"`
	CityID             *uuid.UUID `db:"city_id" json:"city_id,omitempty"`
	DistrictID         *uuid.UUID `db:"district_id" json:"district_id,omitempty"`
	SubDistrictID      *uuid.UUID `db:"sub_district_id" json:"sub_district_id,omitempty"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	ModifiedAt         time.Time  `db:"modified_at" json:"modified_at"`
}

// CaseRoute is one directed edge of case-report flow between two facilities.
// The (case, origin, destination, message_type) tuple is unique at the
// storage layer; rows are append-only.
type CaseRoute struct {
	ID                    uuid.UUID  `db:"id" json:"id"`
	CaseID                uuid.UUID  `db:"case_id" json:"case_id"`
	OriginFacilityID      *uuid.UUID `db:"origin_facility_id" json:"origin_facility_id,omitempty"`
	DestinationFacilityID *uuid.UUID `db:"destination_facility_id" json:"destination_facility_id,omitempty"`
	MessageType           string     `db:"message_type" json:"message_type"`
	CreatedAt             time.Time  `db:"created_at" json:"created_at"`
}

// RouteView is the denormalized feed row resolved for a viewing facility.
type RouteView struct {
	CaseID             uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	PatientContact     string    `json:"patientContact"`
	DiseaseType        string    `json:"diseaseType"`
	CaseReportType     string    `json:"caseReportType"`
	ClassificationCase string    `json:"classificationCase"`
	HealthFacilityFrom string    `json:"healthFacilityFrom"`
	HealthFacilityTo   string    `json:"healthFacilityTo"`
	Created            time.Time `json:"created"`
	Href               string    `json:"href"`
}
