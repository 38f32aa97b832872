package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"removaltracker/internal/authz"
	"removaltracker/internal/model"
	"removaltracker/internal/repository"
	"removaltracker/internal/workflow"

	"github.com/google/uuid"
	"github.com/im7mortal/kmutex"
	"github.com/juju/clock"
	"github.com/sirupsen/logrus"
)

// --- DTOs ---

// ItemInput is one asset line of a removal.
type ItemInput struct {
	Description     string    `json:"description"`
	RemovalReasonID uuid.UUID `json:"removal_reason_id"`
	CustomReason    string    `json:"custom_reason,omitempty"`
}

type CreateRemovalInput struct {
	RemovalType  string      `json:"removal_type"`
	DateFrom     time.Time   `json:"date_from"`
	DateTo       *time.Time  `json:"date_to,omitempty"`
	Employee     string      `json:"employee,omitempty"`
	DepartmentID *uuid.UUID  `json:"department_id,omitempty"`
	Items        []ItemInput `json:"items"`
}

// UpdateRemovalInput carries a partial update. Nil fields are left alone;
// a non-nil Items replaces the whole list.
type UpdateRemovalInput struct {
	RemovalType  *string      `json:"removal_type,omitempty"`
	DateFrom     *time.Time   `json:"date_from,omitempty"`
	DateTo       *time.Time   `json:"date_to,omitempty"`
	Employee     *string      `json:"employee,omitempty"`
	DepartmentID *uuid.UUID   `json:"department_id,omitempty"`
	Items        *[]ItemInput `json:"items,omitempty"`
}

type ApproveInput struct {
	Level     int    `json:"level"`
	Signature string `json:"signature"`
	Comments  string `json:"comments,omitempty"`
}

type RejectInput struct {
	Level           int    `json:"level"`
	RejectionReason string `json:"rejection_reason"`
	Signature       string `json:"signature"`
	Comments        string `json:"comments,omitempty"`
}

type ReturnInput struct {
	ReturnDate time.Time `json:"return_date"`
	Condition  string    `json:"condition"`
	Notes      string    `json:"notes,omitempty"`
}

type ExtensionInput struct {
	NewDate time.Time `json:"new_date"`
}

// --- Collaborators ---

// ReferenceLookup resolves the reference data a removal points at.
type ReferenceLookup interface {
	FindDepartment(ctx context.Context, id uuid.UUID) (*model.Department, error)
	FindReason(ctx context.Context, id uuid.UUID) (*model.RemovalReason, error)
}

// EventPublisher receives a notification after every committed change.
type EventPublisher interface {
	PublishRemovalEvent(event model.RemovalEvent)
}

// RemovalService runs the removal lifecycle. Every mutation takes the
// removal's lock, re-reads it, validates against that fresh state, and
// persists it with a version check together with an audit entry.
type RemovalService struct {
	repo      repository.RemovalRepository
	refs      ReferenceLookup
	tx        repository.TransactionManager
	audit     repository.AuditRepository
	publisher EventPublisher
	clock     clock.Clock
	locks     *kmutex.Kmutex
	log       *logrus.Entry
}

// NewRemovalService wires the lifecycle service. publisher may be nil; a nil
// clock falls back to the wall clock.
func NewRemovalService(
	repo repository.RemovalRepository,
	refs ReferenceLookup,
	tx repository.TransactionManager,
	audit repository.AuditRepository,
	publisher EventPublisher,
	clk clock.Clock,
) *RemovalService {
	if clk == nil {
		clk = clock.WallClock
	}
	return &RemovalService{
		repo:      repo,
		refs:      refs,
		tx:        tx,
		audit:     audit,
		publisher: publisher,
		clock:     clk,
		locks:     kmutex.New(),
		log:       logrus.WithField("component", "removal_service"),
	}
}

// Create stores a new DRAFT removal owned by the actor.
func (s *RemovalService) Create(ctx context.Context, actor *authz.Actor, in CreateRemovalInput) (*model.Removal, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if !actor.HasPermission(authz.CreateRemoval) && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: %s is required", ErrPermissionDenied, authz.CreateRemoval)
	}

	removal := &model.Removal{
		ID:                uuid.New(),
		RequesterID:       actor.ID,
		RemovalType:       in.RemovalType,
		DateFrom:          in.DateFrom,
		DateTo:            in.DateTo,
		Employee:          strings.TrimSpace(in.Employee),
		DepartmentID:      in.DepartmentID,
		Status:            model.StatusDraft,
		Version:           1,
		Approvals:         []model.Approval{},
		ExtensionRequests: []model.ExtensionRequest{},
	}
	if err := validateFields(removal); err != nil {
		return nil, err
	}
	if err := s.checkDepartment(ctx, removal.DepartmentID); err != nil {
		return nil, err
	}
	items, err := s.buildItems(ctx, removal.ID, in.Items)
	if err != nil {
		return nil, err
	}
	removal.Items = items

	now := s.clock.Now()
	removal.CreatedAt = now
	removal.UpdatedAt = now

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Create(txCtx, removal); err != nil {
			return err
		}
		return s.writeAudit(txCtx, actor, model.ActionCreateRemoval, removal, map[string]interface{}{
			"removal_type": removal.RemovalType,
			"items":        len(removal.Items),
			"status":       removal.Status,
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create removal: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"removal_id": removal.ID,
		"actor_id":   actor.ID,
		"type":       removal.RemovalType,
	}).Info("removal created")
	s.publish(model.ActionCreateRemoval, "", removal, actor.ID, now)

	return removal, nil
}

// Update changes a DRAFT removal. Field invariants are not checked here;
// Submit re-validates them.
func (s *RemovalService) Update(ctx context.Context, actor *authz.Actor, id uuid.UUID, in UpdateRemovalInput) (*model.Removal, error) {
	return s.mutate(ctx, actor, id, model.ActionUpdateRemoval, func(r *model.Removal, _ time.Time) (map[string]interface{}, error) {
		if r.Status != model.StatusDraft {
			return nil, fmt.Errorf("%w: only DRAFT removals can be edited, removal is %s", ErrInvalidState, r.Status)
		}
		if !authz.IsOwnerOrAdmin(actor, r) {
			return nil, fmt.Errorf("%w: only the requester can edit a draft", ErrPermissionDenied)
		}

		// Resolve everything that can fail before touching r.
		if in.RemovalType != nil && !validRemovalType(*in.RemovalType) {
			return nil, fmt.Errorf("%w: unknown removal type %q", ErrValidation, *in.RemovalType)
		}
		if in.DepartmentID != nil {
			if err := s.checkDepartment(ctx, in.DepartmentID); err != nil {
				return nil, err
			}
		}
		var items []model.RemovalItem
		if in.Items != nil {
			var err error
			if items, err = s.buildItems(ctx, r.ID, *in.Items); err != nil {
				return nil, err
			}
		}

		var changed []string
		if in.RemovalType != nil {
			r.RemovalType = *in.RemovalType
			changed = append(changed, "removal_type")
		}
		if in.DateFrom != nil {
			r.DateFrom = *in.DateFrom
			changed = append(changed, "date_from")
		}
		if in.DateTo != nil {
			dateTo := *in.DateTo
			r.DateTo = &dateTo
			changed = append(changed, "date_to")
		}
		if in.Employee != nil {
			r.Employee = strings.TrimSpace(*in.Employee)
			changed = append(changed, "employee")
		}
		if in.DepartmentID != nil {
			dept := *in.DepartmentID
			r.DepartmentID = &dept
			changed = append(changed, "department_id")
		}
		if in.Items != nil {
			r.Items = items
			changed = append(changed, "items")
		}

		return map[string]interface{}{"changed": changed}, nil
	})
}

// Submit moves a DRAFT removal into the approval pipeline.
func (s *RemovalService) Submit(ctx context.Context, actor *authz.Actor, id uuid.UUID) (*model.Removal, error) {
	return s.mutate(ctx, actor, id, model.ActionSubmitRemoval, func(r *model.Removal, _ time.Time) (map[string]interface{}, error) {
		if len(r.Items) == 0 {
			return nil, fmt.Errorf("%w: a removal needs at least one item to be submitted", ErrValidation)
		}
		edge, _ := workflow.EdgeOf(workflow.KindSubmit)
		if r.Status != edge.FromStep {
			return nil, fmt.Errorf("%w: only DRAFT removals can be submitted, removal is %s", ErrInvalidState, r.Status)
		}
		if !authz.IsOwnerOrAdmin(actor, r) {
			return nil, fmt.Errorf("%w: only the requester can submit a draft", ErrPermissionDenied)
		}
		if err := validateFields(r); err != nil {
			return nil, err
		}

		r.Status = edge.ToStep
		return map[string]interface{}{"transition": edge.ID}, nil
	})
}

// Approve records an approval at a pipeline level and advances the removal.
// An actor holding override_workflow may approve at any level from any
// pending status; off-step approvals take the override shortcut to APPROVED.
func (s *RemovalService) Approve(ctx context.Context, actor *authz.Actor, id uuid.UUID, in ApproveInput) (*model.Removal, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	edge, ok := workflow.ApprovalEdge(in.Level)
	if !ok {
		return nil, fmt.Errorf("%w: unknown approval level %d", ErrValidation, in.Level)
	}
	signature := strings.TrimSpace(in.Signature)
	if signature == "" {
		return nil, fmt.Errorf("%w: signature is required", ErrValidation)
	}

	return s.mutate(ctx, actor, id, model.ActionApproveRemoval, func(r *model.Removal, now time.Time) (map[string]interface{}, error) {
		overridden, err := authorizeLevel(actor, edge)
		if err != nil {
			return nil, err
		}

		next, transition := edge.ToStep, edge.ID
		if r.Status != edge.FromStep {
			if !actor.CanOverride() {
				return nil, fmt.Errorf("%w: level %d approves %s removals, removal is %s", ErrInvalidState, in.Level, edge.FromStep, r.Status)
			}
			shortcut, ok := workflow.OverrideEdge(r.Status)
			if !ok {
				return nil, fmt.Errorf("%w: no override path from %s", ErrInvalidState, r.Status)
			}
			next, transition = shortcut.ToStep, shortcut.ID
			overridden = true
		}

		if !authz.WithinDepartment(actor, r, edge.RequiredPermission) {
			if !actor.CanOverride() {
				return nil, fmt.Errorf("%w: approver is not a member of the removal's department", ErrPermissionDenied)
			}
			overridden = true
		}

		approval := model.Approval{
			ID:            uuid.New(),
			Level:         in.Level,
			Approved:      true,
			Comments:      strings.TrimSpace(in.Comments),
			Signature:     signature,
			SignatureDate: now,
			ApprovedByID:  actor.ID,
			CreatedAt:     now,
		}
		if overridden {
			markOverride(&approval, actor.ID, now)
		}

		r.AppendApproval(approval)
		r.Status = next

		return map[string]interface{}{
			"level":      in.Level,
			"transition": transition,
			"override":   overridden,
		}, nil
	})
}

// Reject records a rejection at a pipeline level. The current status is not
// compared with the level: any level may reject at any time.
func (s *RemovalService) Reject(ctx context.Context, actor *authz.Actor, id uuid.UUID, in RejectInput) (*model.Removal, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	edge, ok := workflow.RejectionEdge(in.Level)
	if !ok {
		return nil, fmt.Errorf("%w: unknown approval level %d", ErrValidation, in.Level)
	}
	reason := strings.TrimSpace(in.RejectionReason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", ErrValidation)
	}
	signature := strings.TrimSpace(in.Signature)
	if signature == "" {
		return nil, fmt.Errorf("%w: signature is required", ErrValidation)
	}

	return s.mutate(ctx, actor, id, model.ActionRejectRemoval, func(r *model.Removal, now time.Time) (map[string]interface{}, error) {
		overridden, err := authorizeLevel(actor, edge)
		if err != nil {
			return nil, err
		}

		rejection := model.Approval{
			ID:              uuid.New(),
			Level:           in.Level,
			Approved:        false,
			RejectionReason: reason,
			Comments:        strings.TrimSpace(in.Comments),
			Signature:       signature,
			SignatureDate:   now,
			ApprovedByID:    actor.ID,
			CreatedAt:       now,
		}
		if overridden {
			markOverride(&rejection, actor.ID, now)
		}

		r.AppendApproval(rejection)
		r.Status = edge.ToStep
		r.RejectionReason = reason

		return map[string]interface{}{
			"level":      in.Level,
			"transition": edge.ID,
			"reason":     reason,
			"override":   overridden,
		}, nil
	})
}

// RecordReturn closes an approved returnable removal.
func (s *RemovalService) RecordReturn(ctx context.Context, actor *authz.Actor, id uuid.UUID, in ReturnInput) (*model.Removal, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if in.ReturnDate.IsZero() {
		return nil, fmt.Errorf("%w: return date is required", ErrValidation)
	}
	condition := strings.TrimSpace(in.Condition)
	if condition == "" {
		return nil, fmt.Errorf("%w: condition is required", ErrValidation)
	}

	return s.mutate(ctx, actor, id, model.ActionRecordReturn, func(r *model.Removal, now time.Time) (map[string]interface{}, error) {
		if !actor.HasPermission(authz.RecordReturn) && !actor.IsAdmin() {
			return nil, fmt.Errorf("%w: %s is required", ErrPermissionDenied, authz.RecordReturn)
		}
		edge, _ := workflow.EdgeOf(workflow.KindReturn)
		if r.Status != edge.FromStep || !r.IsReturnable() {
			return nil, fmt.Errorf("%w: returns can only be recorded for approved returnable removals", ErrInvalidState)
		}
		if r.ReturnRecord != nil {
			return nil, fmt.Errorf("%w: return already recorded", ErrInvalidState)
		}

		r.ReturnRecord = &model.ReturnRecord{
			ID:           uuid.New(),
			RemovalID:    r.ID,
			ReturnDate:   in.ReturnDate,
			Condition:    condition,
			Notes:        strings.TrimSpace(in.Notes),
			RecordedByID: actor.ID,
			CreatedAt:    now,
		}
		r.Status = edge.ToStep

		return map[string]interface{}{
			"transition":  edge.ID,
			"return_date": in.ReturnDate,
			"condition":   condition,
		}, nil
	})
}

// RequestExtension asks for a later return date. The removal's date_to only
// changes once the extension is approved.
func (s *RemovalService) RequestExtension(ctx context.Context, actor *authz.Actor, id uuid.UUID, in ExtensionInput) (*model.Removal, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}
	if in.NewDate.IsZero() {
		return nil, fmt.Errorf("%w: new date is required", ErrValidation)
	}

	return s.mutate(ctx, actor, id, model.ActionRequestExtension, func(r *model.Removal, now time.Time) (map[string]interface{}, error) {
		if !actor.HasPermission(authz.ManageExtension) && !actor.IsAdmin() {
			return nil, fmt.Errorf("%w: %s is required", ErrPermissionDenied, authz.ManageExtension)
		}
		edge, _ := workflow.EdgeOf(workflow.KindExtensionRequest)
		if r.Status != edge.FromStep || !r.IsReturnable() {
			return nil, fmt.Errorf("%w: extensions can only be requested for approved returnable removals", ErrInvalidState)
		}
		if r.DateTo == nil {
			return nil, fmt.Errorf("%w: removal has no return date to extend", ErrPreconditionFailed)
		}
		if r.PendingExtension() != nil {
			return nil, fmt.Errorf("%w: an extension is already pending", ErrInvalidState)
		}
		if !in.NewDate.After(*r.DateTo) {
			return nil, fmt.Errorf("%w: new date must be after the current return date", ErrValidation)
		}

		ext := model.ExtensionRequest{
			ID:            uuid.New(),
			RemovalID:     r.ID,
			OriginalDate:  *r.DateTo,
			NewDate:       in.NewDate,
			Status:        model.ExtensionPending,
			RequestedByID: actor.ID,
			CreatedAt:     now,
		}
		r.ExtensionRequests = append(r.ExtensionRequests, ext)
		r.Status = edge.ToStep

		return map[string]interface{}{
			"transition":    edge.ID,
			"extension_id":  ext.ID,
			"original_date": ext.OriginalDate,
			"new_date":      ext.NewDate,
		}, nil
	})
}

// ApproveExtension accepts the pending extension and moves date_to.
func (s *RemovalService) ApproveExtension(ctx context.Context, actor *authz.Actor, id, extensionID uuid.UUID) (*model.Removal, error) {
	return s.resolveExtension(ctx, actor, id, extensionID, true)
}

// RejectExtension declines the pending extension; date_to stands.
func (s *RemovalService) RejectExtension(ctx context.Context, actor *authz.Actor, id, extensionID uuid.UUID) (*model.Removal, error) {
	return s.resolveExtension(ctx, actor, id, extensionID, false)
}

func (s *RemovalService) resolveExtension(ctx context.Context, actor *authz.Actor, id, extensionID uuid.UUID, approve bool) (*model.Removal, error) {
	action, outcome := model.ActionRejectExtension, model.ExtensionRejected
	if approve {
		action, outcome = model.ActionApproveExtension, model.ExtensionApproved
	}

	return s.mutate(ctx, actor, id, action, func(r *model.Removal, now time.Time) (map[string]interface{}, error) {
		if !actor.HasPermission(authz.RecheckExtension) && !actor.IsAdmin() {
			return nil, fmt.Errorf("%w: %s is required", ErrPermissionDenied, authz.RecheckExtension)
		}
		edge, _ := workflow.EdgeOf(workflow.KindExtensionRecheck)
		if r.Status != edge.FromStep {
			return nil, fmt.Errorf("%w: removal is %s, not awaiting an extension re-check", ErrInvalidState, r.Status)
		}
		ext := r.FindExtension(extensionID)
		if ext == nil {
			return nil, fmt.Errorf("%w: extension request %s", ErrNotFound, extensionID)
		}
		if ext.Status != model.ExtensionPending {
			return nil, fmt.Errorf("%w: extension request is already %s", ErrInvalidState, ext.Status)
		}

		recheckStatus := outcome
		recheckBy := actor.ID
		recheckAt := now
		ext.Status = outcome
		ext.RecheckStatus = &recheckStatus
		ext.RecheckByID = &recheckBy
		ext.RecheckAt = &recheckAt

		if approve {
			newDate := ext.NewDate
			r.DateTo = &newDate
		}
		r.Status = edge.ToStep

		return map[string]interface{}{
			"transition":   edge.ID,
			"extension_id": extensionID,
			"outcome":      outcome,
		}, nil
	})
}

// --- internals ---

type mutation func(r *model.Removal, now time.Time) (map[string]interface{}, error)

func (s *RemovalService) mutate(ctx context.Context, actor *authz.Actor, id uuid.UUID, action string, apply mutation) (*model.Removal, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	key := id.String()
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	removal, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: removal %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load removal: %w", err)
	}

	from := removal.Status
	now := s.clock.Now()
	details, err := apply(removal, now)
	if err != nil {
		return nil, err
	}
	if details == nil {
		details = map[string]interface{}{}
	}
	details["from_status"] = from
	details["status"] = removal.Status
	removal.UpdatedAt = now

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.repo.Update(txCtx, removal); err != nil {
			return err
		}
		return s.writeAudit(txCtx, actor, action, removal, details)
	})
	if errors.Is(err, repository.ErrVersionConflict) {
		s.log.WithFields(logrus.Fields{"removal_id": id, "action": action}).Warn("removal changed concurrently")
		return nil, fmt.Errorf("%w: removal %s", ErrConflict, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save removal: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"removal_id": id,
		"action":     action,
		"from":       from,
		"to":         removal.Status,
		"actor_id":   actor.ID,
	}).Info("removal updated")
	s.publish(action, from, removal, actor.ID, now)

	return removal, nil
}

func (s *RemovalService) writeAudit(ctx context.Context, actor *authz.Actor, action string, r *model.Removal, details map[string]interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("failed to encode audit details: %w", err)
	}
	userID := actor.ID
	entry := &model.AuditLog{
		UserID:     &userID,
		Action:     action,
		EntityID:   r.ID.String(),
		EntityName: "removal",
		Details:    string(payload),
		CreatedAt:  s.clock.Now(),
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *RemovalService) publish(action, from string, r *model.Removal, actorID uuid.UUID, at time.Time) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishRemovalEvent(model.RemovalEvent{
		Action:     action,
		RemovalID:  r.ID,
		FromStatus: from,
		Status:     r.Status,
		ActorID:    actorID,
		At:         at,
	})
}

func (s *RemovalService) checkDepartment(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	_, err := s.refs.FindDepartment(ctx, *id)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: unknown department %s", ErrValidation, *id)
	}
	if err != nil {
		return fmt.Errorf("failed to load department: %w", err)
	}
	return nil
}

func (s *RemovalService) buildItems(ctx context.Context, removalID uuid.UUID, inputs []ItemInput) ([]model.RemovalItem, error) {
	items := make([]model.RemovalItem, 0, len(inputs))
	for i, in := range inputs {
		description := strings.TrimSpace(in.Description)
		if description == "" {
			return nil, fmt.Errorf("%w: item %d: description is required", ErrValidation, i+1)
		}
		if in.RemovalReasonID == uuid.Nil {
			return nil, fmt.Errorf("%w: item %d: removal reason is required", ErrValidation, i+1)
		}
		reason, err := s.refs.FindReason(ctx, in.RemovalReasonID)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: item %d: unknown removal reason %s", ErrValidation, i+1, in.RemovalReasonID)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load removal reason: %w", err)
		}

		item := model.RemovalItem{
			ID:              uuid.New(),
			RemovalID:       removalID,
			Position:        i,
			Description:     description,
			RemovalReasonID: reason.ID,
		}
		if reason.AllowCustom {
			item.CustomReason = strings.TrimSpace(in.CustomReason)
		}
		items = append(items, item)
	}
	return items, nil
}

// authorizeLevel checks the level's approval permission. It reports whether
// the actor only got through on override_workflow.
func authorizeLevel(actor *authz.Actor, edge workflow.Transition) (bool, error) {
	if actor.HasPermission(edge.RequiredPermission) {
		return false, nil
	}
	if actor.CanOverride() {
		return true, nil
	}
	return false, fmt.Errorf("%w: %s is required for level %d", ErrPermissionDenied, edge.RequiredPermission, edge.Level)
}

func markOverride(a *model.Approval, actorID uuid.UUID, at time.Time) {
	by := actorID
	when := at
	a.OverrideByID = &by
	a.OverrideAt = &when
}

func validRemovalType(t string) bool {
	return t == model.RemovalTypeReturnable || t == model.RemovalTypeNonReturnable
}

// validateFields checks the type-dependent field invariants.
func validateFields(r *model.Removal) error {
	if !validRemovalType(r.RemovalType) {
		return fmt.Errorf("%w: unknown removal type %q", ErrValidation, r.RemovalType)
	}
	if r.DateFrom.IsZero() {
		return fmt.Errorf("%w: date_from is required", ErrValidation)
	}
	if r.DateTo != nil && r.DateTo.Before(r.DateFrom) {
		return fmt.Errorf("%w: date_to is before date_from", ErrValidation)
	}

	switch r.RemovalType {
	case model.RemovalTypeReturnable:
		if r.DateTo == nil || r.DepartmentID == nil {
			return fmt.Errorf("%w: returnable removals require date_to and department_id", ErrValidation)
		}
	case model.RemovalTypeNonReturnable:
		if strings.TrimSpace(r.Employee) == "" {
			return fmt.Errorf("%w: non-returnable removals require employee", ErrValidation)
		}
	}
	return nil
}
