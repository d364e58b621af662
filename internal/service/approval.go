package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dtroode/greenhouse-admin/internal/logger"
	"github.com/dtroode/greenhouse-admin/internal/model"
)

const tracerName = "github.com/dtroode/greenhouse-admin/internal/service"

// Coordinator drives requests to an approved or declined outcome across the
// document store and the tree store.
type Coordinator struct {
	documents  model.DocumentStore
	trees      model.TreeStore
	logger     *logger.Logger
	deviceRoot string
	now        func() time.Time
	tracer     trace.Tracer
}

func NewCoordinator(
	documents model.DocumentStore,
	trees model.TreeStore,
	logger *logger.Logger,
	deviceRoot string,
) *Coordinator {
	if deviceRoot == "" {
		deviceRoot = model.DefaultDeviceRoot
	}
	return &Coordinator{
		documents:  documents,
		trees:      trees,
		logger:     logger,
		deviceRoot: deviceRoot,
		now:        time.Now,
		tracer:     otel.Tracer(tracerName),
	}
}

// Approve commits the client and removes the request in one transaction, then
// provisions and verifies the device state. Errors after the commit are
// *model.ProvisioningError and the returned result shows which step stopped.
func (s *Coordinator) Approve(ctx context.Context, requestID string) (model.ApprovalResult, error) {
	result := model.NewApprovalResult(uuid.NewString(), requestID)

	ctx, span := s.tracer.Start(ctx, "Coordinator.Approve", trace.WithAttributes(
		attribute.String("saga.id", result.SagaID),
		attribute.String("request.id", requestID),
	))
	defer span.End()

	request, err := s.loadRequest(ctx, requestID)
	if err != nil {
		markSpanError(span, err)
		return result, err
	}
	result.AuthUID = request.AuthUID
	span.SetAttributes(attribute.String("auth.uid", request.AuthUID))

	client, err := s.commit(ctx, request)
	if err != nil {
		result.Commit = model.OutcomeFailed
		markSpanError(span, err)
		s.logger.Info("Coordinator: approval not committed",
			"saga_id", result.SagaID,
			"request_id", requestID,
			"auth_uid", request.AuthUID,
			"error", err)
		return result, err
	}
	result.Commit = model.OutcomeCommitted

	result, err = s.provision(ctx, result, model.NewDeviceState(client.Name, client.EC))
	if err != nil {
		markSpanError(span, err)
		s.logger.Error("Coordinator: client committed without verified device state",
			"saga_id", result.SagaID,
			"request_id", requestID,
			"auth_uid", client.AuthUID,
			"resume_from", result.ResumeFrom(),
			"error", err)
		return result, err
	}

	s.logger.Info("Coordinator: request approved",
		"saga_id", result.SagaID,
		"request_id", requestID,
		"auth_uid", client.AuthUID)

	return result, nil
}

// Decline removes the request. A request already gone yields model.ErrNotFound.
func (s *Coordinator) Decline(ctx context.Context, requestID string) error {
	ctx, span := s.tracer.Start(ctx, "Coordinator.Decline", trace.WithAttributes(
		attribute.String("request.id", requestID),
	))
	defer span.End()

	err := s.documents.Delete(ctx, model.CollectionRequests, requestID)
	if errors.Is(err, model.ErrNotFound) {
		s.logger.Info("Coordinator: request already handled", "request_id", requestID)
		return fmt.Errorf("request %q: %w", requestID, model.ErrNotFound)
	}
	if err != nil {
		markSpanError(span, err)
		return fmt.Errorf("failed to delete request: %w", err)
	}

	s.logger.Info("Coordinator: request declined", "request_id", requestID)
	return nil
}

// Provision re-runs the device state write and verification for an existing
// client, using the persisted client record as the source of truth.
func (s *Coordinator) Provision(ctx context.Context, authUID string) (model.ApprovalResult, error) {
	result := model.NewApprovalResult(uuid.NewString(), "")
	result.AuthUID = authUID

	ctx, span := s.tracer.Start(ctx, "Coordinator.Provision", trace.WithAttributes(
		attribute.String("saga.id", result.SagaID),
		attribute.String("auth.uid", authUID),
	))
	defer span.End()

	client, err := s.loadClient(ctx, authUID)
	if err != nil {
		markSpanError(span, err)
		return result, err
	}
	result.Commit = model.OutcomeCommitted

	result, err = s.provision(ctx, result, model.NewDeviceState(client.Name, client.EC))
	if err != nil {
		markSpanError(span, err)
		return result, err
	}

	s.logger.Info("Coordinator: device state provisioned", "saga_id", result.SagaID, "auth_uid", authUID)
	return result, nil
}

// EditClient changes a client's name and email, then mirrors the name into the
// device state when one exists.
func (s *Coordinator) EditClient(ctx context.Context, authUID, name, email string) error {
	ctx, span := s.tracer.Start(ctx, "Coordinator.EditClient", trace.WithAttributes(
		attribute.String("auth.uid", authUID),
	))
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return &model.InvalidRequestError{RequestID: authUID, Fields: []string{model.FieldName}}
	}

	err := s.documents.RunTransaction(ctx, func(ctx context.Context, tx model.DocumentTx) error {
		return tx.Update(ctx, model.CollectionClients, authUID, map[string]any{
			model.FieldName:  name,
			model.FieldEmail: strings.TrimSpace(email),
		})
	})
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("client %q: %w", authUID, model.ErrNotFound)
	}
	if err != nil {
		markSpanError(span, err)
		return fmt.Errorf("failed to update client: %w", err)
	}

	path := model.DeviceStatePath(s.deviceRoot, authUID)
	if _, err := s.trees.Get(ctx, path); errors.Is(err, model.ErrNotFound) {
		// Provisioning will pick up the new name from the client record.
		s.logger.Warn("Coordinator: edited client has no device state", "auth_uid", authUID)
		return nil
	}

	if err := s.trees.Set(ctx, model.JoinPath(path, model.DeviceFieldName), name); err != nil {
		perr := &model.ProvisioningError{AuthUID: authUID, Step: model.StepProvision, Err: model.ErrProvisioningFailed, Cause: err}
		markSpanError(span, perr)
		return perr
	}

	s.logger.Info("Coordinator: client edited", "auth_uid", authUID)
	return nil
}

// DecommissionClient deletes the client and then its device state. A failed
// tree removal leaves an orphan for the reconciler and is reported.
func (s *Coordinator) DecommissionClient(ctx context.Context, authUID string) error {
	ctx, span := s.tracer.Start(ctx, "Coordinator.DecommissionClient", trace.WithAttributes(
		attribute.String("auth.uid", authUID),
	))
	defer span.End()

	err := s.documents.Delete(ctx, model.CollectionClients, authUID)
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("client %q: %w", authUID, model.ErrNotFound)
	}
	if err != nil {
		markSpanError(span, err)
		return fmt.Errorf("failed to delete client: %w", err)
	}

	if err := s.trees.Remove(ctx, model.DeviceStatePath(s.deviceRoot, authUID)); err != nil {
		perr := &model.ProvisioningError{AuthUID: authUID, Step: model.StepProvision, Err: model.ErrProvisioningFailed, Cause: err}
		markSpanError(span, perr)
		s.logger.Error("Coordinator: device state left behind", "auth_uid", authUID, "error", err)
		return perr
	}

	s.logger.Info("Coordinator: client decommissioned", "auth_uid", authUID)
	return nil
}

func (s *Coordinator) loadRequest(ctx context.Context, requestID string) (model.Request, error) {
	doc, err := s.documents.Get(ctx, model.CollectionRequests, requestID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Request{}, fmt.Errorf("request %q: %w", requestID, model.ErrNotFound)
	}
	if err != nil {
		return model.Request{}, fmt.Errorf("failed to get request: %w", err)
	}

	request, err := model.RequestFromDocument(doc)
	if err != nil {
		return model.Request{}, &model.InvalidRequestError{RequestID: requestID, Fields: []string{model.FieldEC}}
	}
	if err := request.Validate(); err != nil {
		return model.Request{}, err
	}

	return request, nil
}

func (s *Coordinator) loadClient(ctx context.Context, authUID string) (model.Client, error) {
	doc, err := s.documents.Get(ctx, model.CollectionClients, authUID)
	if errors.Is(err, model.ErrNotFound) {
		return model.Client{}, fmt.Errorf("client %q: %w", authUID, model.ErrNotFound)
	}
	if err != nil {
		return model.Client{}, fmt.Errorf("failed to get client: %w", err)
	}

	client, err := model.ClientFromDocument(doc)
	if err != nil {
		return model.Client{}, err
	}
	return client, nil
}

// commit is the document store step. The request is re-read inside the
// transaction; the client existence check is the serialization point.
func (s *Coordinator) commit(ctx context.Context, request model.Request) (model.Client, error) {
	ctx, span := s.tracer.Start(ctx, "Coordinator.commit")
	defer span.End()

	acceptedAt := s.now()
	var client model.Client

	err := s.documents.RunTransaction(ctx, func(ctx context.Context, tx model.DocumentTx) error {
		doc, err := tx.Get(ctx, model.CollectionRequests, request.ID)
		if err != nil {
			return err
		}
		current, err := model.RequestFromDocument(doc)
		if err != nil {
			return &model.InvalidRequestError{RequestID: request.ID, Fields: []string{model.FieldEC}}
		}
		if err := current.Validate(); err != nil {
			return err
		}

		_, err = tx.Get(ctx, model.CollectionClients, current.AuthUID)
		if err == nil {
			return model.ErrAlreadyApproved
		}
		if !errors.Is(err, model.ErrNotFound) {
			return err
		}

		client = model.NewClientFromRequest(current, acceptedAt)
		if err := tx.Create(ctx, model.CollectionClients, client.AuthUID, client.Fields()); err != nil {
			if errors.Is(err, model.ErrAlreadyExists) {
				return model.ErrAlreadyApproved
			}
			return err
		}

		return tx.Delete(ctx, model.CollectionRequests, current.ID)
	})
	switch {
	case err == nil:
		return client, nil
	case errors.Is(err, model.ErrAlreadyApproved):
		return model.Client{}, fmt.Errorf("principal %q: %w", request.AuthUID, model.ErrAlreadyApproved)
	case errors.Is(err, model.ErrNotFound):
		return model.Client{}, fmt.Errorf("request %q: %w", request.ID, model.ErrNotFound)
	case errors.Is(err, model.ErrInvalidRequest):
		return model.Client{}, err
	default:
		markSpanError(span, err)
		return model.Client{}, fmt.Errorf("failed to commit approval: %w", err)
	}
}

// provision writes state and reads it back. Both are idempotent full-subtree
// operations, so they are safe to repeat for a committed client.
func (s *Coordinator) provision(ctx context.Context, result model.ApprovalResult, state model.DeviceState) (model.ApprovalResult, error) {
	path := model.DeviceStatePath(s.deviceRoot, result.AuthUID)

	writeCtx, span := s.tracer.Start(ctx, "Coordinator.provision", trace.WithAttributes(
		attribute.String("tree.path", path),
	))
	err := s.trees.Set(writeCtx, path, state.Tree())
	if err != nil {
		markSpanError(span, err)
		span.End()
		result.Provision = model.OutcomeFailed
		return result, &model.ProvisioningError{
			AuthUID: result.AuthUID,
			Step:    model.StepProvision,
			Err:     model.ErrProvisioningFailed,
			Cause:   err,
		}
	}
	span.End()
	result.Provision = model.OutcomeCommitted

	if err := s.verify(ctx, path, state); err != nil {
		result.Verify = model.OutcomeUnverified
		return result, &model.ProvisioningError{
			AuthUID: result.AuthUID,
			Step:    model.StepVerify,
			Err:     model.ErrProvisioningUnverified,
			Cause:   err,
		}
	}
	result.Verify = model.OutcomeCommitted

	return result, nil
}

func (s *Coordinator) verify(ctx context.Context, path string, want model.DeviceState) error {
	ctx, span := s.tracer.Start(ctx, "Coordinator.verify", trace.WithAttributes(
		attribute.String("tree.path", path),
	))
	defer span.End()

	v, err := s.trees.Get(ctx, path)
	if err != nil {
		markSpanError(span, err)
		return fmt.Errorf("failed to read back device state: %w", err)
	}

	got, err := model.DeviceStateFromTree(v)
	if err != nil {
		markSpanError(span, err)
		return err
	}
	// Sensors may already be reporting, so only the seeded fields are compared.
	if got.Name != want.Name || got.Environment.EC != want.Environment.EC {
		err := fmt.Errorf("device state at %q does not carry the provisioned name and ec", path)
		markSpanError(span, err)
		return err
	}

	return nil
}

func markSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
