// Package notify turns routing events into email notifications, either sent
// inline or published to a broker for the notify-worker.
package notify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/rullypratama/sms-backend/internal/domain/caserecord"
)

// Payload is the flattened, display-ready notification content. Enum fields
// carry their human labels, not the stored codes, so consumers never need the
// code tables.
type Payload struct {
	DedupKey string `json:"dedup_key"`
	CaseID   string `json:"case_id"`
	RouteID  string `json:"route_id"`

	MessageType        string `json:"message_type"`
	Name               string `json:"name"`
	Gender             string `json:"gender"`
	Age                string `json:"age"`
	PatientContact     string `json:"patient_contact"`
	DiseaseType        string `json:"disease_type"`
	CaseReportType     string `json:"case_report_type"`
	ClassificationCase string `json:"classification_case"`
	Address            string `json:"address"`
	IsPregnant         bool   `json:"is_pregnant"`

	Province    string `json:"province"`
	City        string `json:"city"`
	District    string `json:"district"`
	SubDistrict string `json:"sub_district"`

	ReportedBy       string `json:"reported_by"`
	ReporterEmail    string `json:"reporter_email"`
	ReporterFacility string `json:"reporter_facility"`

	DestinationName string `json:"destination_name"`
	DestinationCode string `json:"destination_code"`

	Href    string    `json:"href"`
	Created time.Time `json:"created"`
}

// DedupKey derives the stable identity of one notification: the same case
// routed to the same facility with the same message type always hashes to the
// same key, regardless of how many times the event is replayed.
func DedupKey(caseID, destinationID uuid.UUID, messageType string) string {
	sum := sha256.Sum256([]byte(caseID.String() + "|" + destinationID.String() + "|" + messageType))
	return hex.EncodeToString(sum[:])
}

// BuildPayload flattens a routing event for delivery.
func BuildPayload(ev caserecord.RouteEvent, baseURL string) Payload {
	p := Payload{
		CaseID:             ev.Case.ID.String(),
		RouteID:            ev.Route.ID.String(),
		MessageType:        ev.Route.MessageType,
		Name:               ev.Case.Name,
		Gender:             caserecord.GenderLabel(ev.Case.Gender),
		DiseaseType:        caserecord.DiseaseLabel(ev.Case.DiseaseType),
		CaseReportType:     caserecord.CaseTypeLabel(ev.Case.CaseReportType),
		ClassificationCase: caserecord.ClassificationLabel(ev.Case.ClassificationCase),
		IsPregnant:         ev.Case.IsPregnant,
		Province:           ev.Regions.Province,
		City:               ev.Regions.City,
		District:           ev.Regions.District,
		SubDistrict:        ev.Regions.SubDistrict,
		Href:               fmt.Sprintf("%s/case-information-list/%s", baseURL, ev.Case.ID),
		Created:            time.Now().UTC(),
	}
	if ev.Case.Age != nil {
		p.Age = strconv.Itoa(*ev.Case.Age)
	}
	if ev.Case.PatientContact != nil {
		p.PatientContact = *ev.Case.PatientContact
	}
	if ev.Case.Address != nil {
		p.Address = *ev.Case.Address
	}
	if ev.Reporter != nil {
		p.ReportedBy = ev.Reporter.DisplayName()
		p.ReporterEmail = ev.Reporter.Email
	}
	if ev.ReporterFacility != nil {
		p.ReporterFacility = ev.ReporterFacility.Name
	}
	if ev.Destination != nil {
		p.DestinationName = ev.Destination.Name
		p.DestinationCode = ev.Destination.Code
		p.DedupKey = DedupKey(ev.Case.ID, ev.Destination.ID, ev.Route.MessageType)
	}
	return p
}

// Subject renders the correlation subject line carrying the route and case
// identifiers.
func (p Payload) Subject() string {
	return fmt.Sprintf("Case Information from %s #MI%s #CI%s", p.ReporterFacility, p.RouteID, p.CaseID)
}

// TemplateData exposes the payload as the flat map the template engine
// substitutes from.
func (p Payload) TemplateData() map[string]string {
	pregnant := "No"
	if p.IsPregnant {
		pregnant = "Yes"
	}
	return map[string]string{
		"name":                p.Name,
		"gender":              p.Gender,
		"age":                 p.Age,
		"patient_contact":     p.PatientContact,
		"disease_type":        p.DiseaseType,
		"case_report_type":    p.CaseReportType,
		"classification_case": p.ClassificationCase,
		"address":             p.Address,
		"is_pregnant":         pregnant,
		"province":            p.Province,
		"city":                p.City,
		"district":            p.District,
		"sub_district":        p.SubDistrict,
		"reported_by":         p.ReportedBy,
		"reporter_email":      p.ReporterEmail,
		"reporter_facility":   p.ReporterFacility,
		"destination_name":    p.DestinationName,
		"href":                p.Href,
	}
}
