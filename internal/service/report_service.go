package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"removaltracker/internal/authz"
	"removaltracker/internal/model"
	"removaltracker/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ReportType string

const (
	ReportApprovalForm  ReportType = "approval_form"
	ReportReturnReceipt ReportType = "return_receipt"
	ReportExtensionForm ReportType = "extension_form"
)

// Valid reports whether t names a known document.
func (t ReportType) Valid() bool {
	switch t {
	case ReportApprovalForm, ReportReturnReceipt, ReportExtensionForm:
		return true
	}
	return false
}

// ReportGenerator renders a document for a removal and returns where it can
// be fetched.
type ReportGenerator interface {
	Generate(ctx context.Context, reportType ReportType, removal *model.Removal) (string, error)
}

// PathReportGenerator renders nothing; it hands out the path the document
// would be served from.
type PathReportGenerator struct{}

func (PathReportGenerator) Generate(_ context.Context, reportType ReportType, removal *model.Removal) (string, error) {
	return fmt.Sprintf("/reports/%s/%s", reportType, removal.ID), nil
}

type ReportResponse struct {
	Type      ReportType `json:"type"`
	RemovalID uuid.UUID  `json:"removal_id"`
	Reference string     `json:"reference"`
}

type ReportService struct {
	removals  repository.RemovalRepository
	generator ReportGenerator
	audit     repository.AuditRepository
	log       *logrus.Entry
}

func NewReportService(removals repository.RemovalRepository, generator ReportGenerator, audit repository.AuditRepository) *ReportService {
	if generator == nil {
		generator = PathReportGenerator{}
	}
	return &ReportService{
		removals:  removals,
		generator: generator,
		audit:     audit,
		log:       logrus.WithField("component", "report_service"),
	}
}

// Generate produces a document reference for a removal the actor can see.
func (s *ReportService) Generate(ctx context.Context, actor *authz.Actor, removalID uuid.UUID, reportType ReportType) (*ReportResponse, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if !reportType.Valid() {
		return nil, fmt.Errorf("%w: unknown report type %q", ErrValidation, reportType)
	}
	if !actor.HasPermission(authz.CreateReport) && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: %s is required", ErrPermissionDenied, authz.CreateReport)
	}

	removal, err := s.removals.FindByID(ctx, removalID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: removal %s", ErrNotFound, removalID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load removal: %w", err)
	}
	if !authz.CanView(actor, removal) {
		return nil, fmt.Errorf("%w: removal %s is not visible to you", ErrPermissionDenied, removalID)
	}

	ref, err := s.generator.Generate(ctx, reportType, removal)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", reportType, err)
	}

	details, _ := json.Marshal(map[string]interface{}{"type": reportType, "reference": ref})
	userID := actor.ID
	if err := s.audit.Log(ctx, &model.AuditLog{
		UserID:     &userID,
		Action:     model.ActionGenerateReport,
		EntityID:   removalID.String(),
		EntityName: string(reportType),
		Details:    string(details),
	}); err != nil {
		s.log.WithError(err).WithField("removal_id", removalID).Warn("failed to audit report generation")
	}

	return &ReportResponse{Type: reportType, RemovalID: removalID, Reference: ref}, nil
}
