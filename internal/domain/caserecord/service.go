package caserecord

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rullypratama/sms-backend/internal/domain/account"
	"github.com/rullypratama/sms-backend/internal/domain/facility"
	"github.com/rullypratama/sms-backend/internal/domain/masterdata"
)

// RegionNames carries the resolved administrative-region labels for a case,
// used to render notifications.
type RegionNames struct {
	Province    string
	City        string
	District    string
	SubDistrict string
}

// RouteEvent is everything the notification dispatcher needs about one
// completed routing record.
type RouteEvent struct {
	Case             *CaseInformation
	Route            *CaseRoute
	Reporter         *account.User
	ReporterFacility *facility.HealthFacility
	Destination      *facility.HealthFacility
	Regions          RegionNames
}

// Notifier delivers a notification for a routing event. Delivery is
// best-effort: the routing engine logs and swallows its errors.
type Notifier interface {
	NotifyRoute(ctx context.Context, ev RouteEvent) error
}

// RegionDirectory resolves administrative-region rows for display.
// *masterdata.Service satisfies it.
type RegionDirectory interface {
	GetProvince(ctx context.Context, id uuid.UUID) (*masterdata.Province, error)
	GetCity(ctx context.Context, id uuid.UUID) (*masterdata.City, error)
	GetDistrict(ctx context.Context, id uuid.UUID) (*masterdata.District, error)
	GetSubDistrict(ctx context.Context, id uuid.UUID) (*masterdata.SubDistrict, error)
}

// TxRunner executes fn atomically; every repository call made with the
// context fn receives joins the same transaction.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// PassthroughTx runs fn without a surrounding transaction. Used by tests.
func PassthroughTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

const (
	maxNameLen    = 50
	maxContactLen = 16
	maxAddressLen = 255
)

// Service is the routing engine: it owns case submission, explicit forwards,
// and the facility-scoped feed projections.
type Service struct {
	cases      CaseRepository
	routes     RouteRepository
	facilities facility.Repository
	accounts   account.Repository
	regions    RegionDirectory
	notifier   Notifier
	inTx       TxRunner
	log        zerolog.Logger
}

func NewService(
	cases CaseRepository,
	routes RouteRepository,
	facilities facility.Repository,
	accounts account.Repository,
	regions RegionDirectory,
	notifier Notifier,
	inTx TxRunner,
	log zerolog.Logger,
) *Service {
	return &Service{
		cases:      cases,
		routes:     routes,
		facilities: facilities,
		accounts:   accounts,
		regions:    regions,
		notifier:   notifier,
		inTx:       inTx,
		log:        log,
	}
}

// SubmitInput is the validated case payload.
type SubmitInput struct {
	Name               string     `json:"name"`
	Gender             string     `json:"gender"`
	Age                *int       `json:"age"`
	PatientContact     *string    `json:"patient_contact"`
	DiseaseType        string     `json:"disease_type"`
	CaseReportType     string     `json:"case_report_type"`
	ClassificationCase string     `json:"classification_case"`
	Address            *string    `json:"address"`
	Latitude           float64    `json:"latitude"`
	Longitude          float64    `json:"longitude"`
	IsPregnant         bool       `json:"is_pregnant"`
	ProvinceID         *uuid.UUID `json:"province"`
	CityID             *uuid.UUID `json:"city"`
	DistrictID         *uuid.UUID `json:"district"`
	SubDistrictID      *uuid.UUID `json:"sub_district"`
}

func (in *SubmitInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(in.Name) > maxNameLen {
		return fmt.Errorf("name exceeds %d characters", maxNameLen)
	}
	if in.Gender != "" {
		if _, ok := genderLabels[in.Gender]; !ok {
			return fmt.Errorf("invalid gender: %s", in.Gender)
		}
	}
	if in.Age != nil && *in.Age < 0 {
		return fmt.Errorf("age must not be negative")
	}
	if in.PatientContact != nil && len(*in.PatientContact) > maxContactLen {
		return fmt.Errorf("patient_contact exceeds %d characters", maxContactLen)
	}
	if in.DiseaseType == "" {
		in.DiseaseType = DiseasePF
	}
	if _, ok := diseaseLabels[in.DiseaseType]; !ok {
		return fmt.Errorf("invalid disease_type: %s", in.DiseaseType)
	}
	if in.CaseReportType == "" {
		in.CaseReportType = PassiveCaseDetection
	}
	if _, ok := caseTypeLabels[in.CaseReportType]; !ok {
		return fmt.Errorf("invalid case_report_type: %s", in.CaseReportType)
	}
	if in.ClassificationCase != "" {
		if _, ok := classificationLabels[in.ClassificationCase]; !ok {
			return fmt.Errorf("invalid classification_case: %s", in.ClassificationCase)
		}
	}
	if in.Address != nil && len(*in.Address) > maxAddressLen {
		return fmt.Errorf("address exceeds %d characters", maxAddressLen)
	}
	return nil
}

// SubmitCase inserts the case and its routing records in one transaction,
// then dispatches one notification per created route. A reporter without a
// facility, or a facility without an upstream link, still produces the case
// with zero routes.
func (s *Service) SubmitCase(ctx context.Context, reporterID uuid.UUID, in SubmitInput) (uuid.UUID, error) {
	if err := in.validate(); err != nil {
		return uuid.Nil, err
	}

	reporter, err := s.accounts.GetByID(ctx, reporterID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve reporter: %w", err)
	}

	var origin *facility.HealthFacility
	if reporter.HealthFacilityID != nil {
		origin, err = s.facilities.GetByID(ctx, *reporter.HealthFacilityID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("resolve reporter facility: %w", err)
		}
	}

	ci := &CaseInformation{
		Name:               in.Name,
		IsActive:           true,
		Gender:             in.Gender,
		Age:                in.Age,
		PatientContact:     in.PatientContact,
		DiseaseType:        in.DiseaseType,
		CaseReportType:     in.CaseReportType,
		ClassificationCase: in.ClassificationCase,
		Address:            in.Address,
		Latitude:           in.Latitude,
		Longitude:          in.Longitude,
		IsPregnant:         in.IsPregnant,
		UserID:             &reporter.ID,
		ProvinceID:         in.ProvinceID,
		CityID:             in.CityID,
		DistrictID:         in.DistrictID,
		SubDistrictID:      in.SubDistrictID,
	}

	var created []*CaseRoute
	err = s.inTx(ctx, func(txCtx context.Context) error {
		if err := s.cases.Create(txCtx, ci); err != nil {
			return fmt.Errorf("insert case: %w", err)
		}
		if origin == nil {
			return nil
		}

		routed := map[uuid.UUID]bool{origin.ID: true}

		if origin.LinkedFacilityID != nil {
			rt := &CaseRoute{
				CaseID:                ci.ID,
				OriginFacilityID:      &origin.ID,
				DestinationFacilityID: origin.LinkedFacilityID,
				MessageType:           MessageTypeInbox,
			}
			if err := s.routes.Create(txCtx, rt); err != nil {
				return fmt.Errorf("insert primary route: %w", err)
			}
			created = append(created, rt)
			routed[*origin.LinkedFacilityID] = true
		}

		// Fan-out: when the case occurred outside the reporter facility's own
		// sub-district, alert every facility local to where it occurred.
		if in.SubDistrictID == nil {
			return nil
		}
		if origin.SubDistrictID != nil && *origin.SubDistrictID == *in.SubDistrictID {
			return nil
		}
		locals, err := s.facilities.ListBySubDistrict(txCtx, *in.SubDistrictID)
		if err != nil {
			return fmt.Errorf("resolve fan-out facilities: %w", err)
		}
		for _, local := range locals {
			if routed[local.ID] {
				continue
			}
			rt := &CaseRoute{
				CaseID:                ci.ID,
				OriginFacilityID:      &origin.ID,
				DestinationFacilityID: &local.ID,
				MessageType:           MessageTypeInbox,
			}
			if err := s.routes.Create(txCtx, rt); err != nil {
				return fmt.Errorf("insert fan-out route: %w", err)
			}
			created = append(created, rt)
			routed[local.ID] = true
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}

	for _, rt := range created {
		s.dispatch(ctx, ci, rt, reporter, origin)
	}

	return ci.ID, nil
}

// ForwardCase materializes one explicit sentbox edge from the actor's
// facility to its upstream and notifies the destination.
func (s *Service) ForwardCase(ctx context.Context, caseID, actorID uuid.UUID) (uuid.UUID, error) {
	ci, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return uuid.Nil, err
	}

	actor, err := s.accounts.GetByID(ctx, actorID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve actor: %w", err)
	}
	if actor.HealthFacilityID == nil {
		return uuid.Nil, fmt.Errorf("actor has no health facility")
	}
	origin, err := s.facilities.GetByID(ctx, *actor.HealthFacilityID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve actor facility: %w", err)
	}
	if origin.LinkedFacilityID == nil {
		return uuid.Nil, fmt.Errorf("facility %s has no linked facility", origin.Code)
	}

	rt := &CaseRoute{
		CaseID:                ci.ID,
		OriginFacilityID:      &origin.ID,
		DestinationFacilityID: origin.LinkedFacilityID,
		MessageType:           MessageTypeSentbox,
	}
	if err := s.routes.Create(ctx, rt); err != nil {
		return uuid.Nil, err
	}

	s.dispatch(ctx, ci, rt, actor, origin)
	return rt.ID, nil
}

// dispatch resolves the event context and hands it to the notifier.
// Notification failure never unwinds the routing write.
func (s *Service) dispatch(ctx context.Context, ci *CaseInformation, rt *CaseRoute, reporter *account.User, reporterFacility *facility.HealthFacility) {
	var dest *facility.HealthFacility
	if rt.DestinationFacilityID != nil {
		var err error
		dest, err = s.facilities.GetByID(ctx, *rt.DestinationFacilityID)
		if err != nil {
			s.log.Error().Err(err).
				Str("route_id", rt.ID.String()).
				Msg("notification skipped: destination facility unresolvable")
			return
		}
	}

	ev := RouteEvent{
		Case:             ci,
		Route:            rt,
		Reporter:         reporter,
		ReporterFacility: reporterFacility,
		Destination:      dest,
		Regions:          s.resolveRegions(ctx, ci),
	}
	if err := s.notifier.NotifyRoute(ctx, ev); err != nil {
		s.log.Error().Err(err).
			Str("route_id", rt.ID.String()).
			Str("case_id", ci.ID.String()).
			Msg("notification dispatch failed")
	}
}

func (s *Service) resolveRegions(ctx context.Context, ci *CaseInformation) RegionNames {
	var names RegionNames
	if ci.ProvinceID != nil {
		if p, err := s.regions.GetProvince(ctx, *ci.ProvinceID); err == nil {
			names.Province = p.Name
		}
	}
	if ci.CityID != nil {
		if c, err := s.regions.GetCity(ctx, *ci.CityID); err == nil {
			names.City = c.Name
		}
	}
	if ci.DistrictID != nil {
		if d, err := s.regions.GetDistrict(ctx, *ci.DistrictID); err == nil {
			names.District = d.Name
		}
	}
	if ci.SubDistrictID != nil {
		if sd, err := s.regions.GetSubDistrict(ctx, *ci.SubDistrictID); err == nil {
			names.SubDistrict = sd.Name
		}
	}
	return names
}

// EditCase is the full-replace update of a case's report fields.
func (s *Service) EditCase(ctx context.Context, caseID uuid.UUID, in SubmitInput) error {
	if err := in.validate(); err != nil {
		return err
	}
	ci, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return err
	}
	ci.Name = in.Name
	ci.Gender = in.Gender
	ci.Age = in.Age
	ci.PatientContact = in.PatientContact
	ci.DiseaseType = in.DiseaseType
	ci.CaseReportType = in.CaseReportType
	ci.ClassificationCase = in.ClassificationCase
	ci.Address = in.Address
	ci.Latitude = in.Latitude
	ci.Longitude = in.Longitude
	ci.IsPregnant = in.IsPregnant
	return s.cases.Replace(ctx, ci)
}

func (s *Service) GetCase(ctx context.Context, id uuid.UUID) (*CaseInformation, error) {
	return s.cases.GetByID(ctx, id)
}

func (s *Service) DeactivateCase(ctx context.Context, id uuid.UUID) error {
	return s.cases.Deactivate(ctx, id)
}

// viewerSet is the facility itself plus every facility reporting up to it.
func (s *Service) viewerSet(ctx context.Context, facilityID uuid.UUID) ([]uuid.UUID, error) {
	ids := []uuid.UUID{facilityID}
	reporting, err := s.facilities.ListReportingTo(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	for _, f := range reporting {
		ids = append(ids, f.ID)
	}
	return ids, nil
}

func (s *Service) ListInbox(ctx context.Context, facilityID uuid.UUID, limit int) ([]*RouteView, error) {
	ids, err := s.viewerSet(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	return s.routes.ListInbound(ctx, ids, limit)
}

func (s *Service) ListSentbox(ctx context.Context, facilityID uuid.UUID, limit int) ([]*RouteView, error) {
	ids, err := s.viewerSet(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	return s.routes.ListOutbound(ctx, ids, limit)
}

func (s *Service) ListAll(ctx context.Context, facilityID uuid.UUID, limit int) ([]*RouteView, error) {
	ids, err := s.viewerSet(ctx, facilityID)
	if err != nil {
		return nil, err
	}
	return s.routes.ListAny(ctx, ids, limit)
}

// ReporterFacility resolves the facility scope for an authenticated user.
func (s *Service) ReporterFacility(ctx context.Context, userID uuid.UUID) (*facility.HealthFacility, error) {
	u, err := s.accounts.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.HealthFacilityID == nil {
		return nil, nil
	}
	f, err := s.facilities.GetByID(ctx, *u.HealthFacilityID)
	if err != nil {
		if errors.Is(err, facility.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}
