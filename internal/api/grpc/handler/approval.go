package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/dtroode/greenhouse-admin/internal/api/grpc/approvalpb"
	"github.com/dtroode/greenhouse-admin/internal/logger"
	"github.com/dtroode/greenhouse-admin/internal/model"
	"github.com/dtroode/greenhouse-admin/internal/roster"
)

// ApprovalService defines the approval workflow operations.
type ApprovalService interface {
	Approve(ctx context.Context, requestID string) (model.ApprovalResult, error)
	Decline(ctx context.Context, requestID string) error
	Provision(ctx context.Context, authUID string) (model.ApprovalResult, error)
	EditClient(ctx context.Context, authUID, name, email string) error
	DecommissionClient(ctx context.Context, authUID string) error
}

// RosterReader serves the display-ready lists.
type RosterReader interface {
	Requests(locale string) []roster.RequestView
	Clients(locale string) []roster.ClientView
}

// Request struct field names.
const (
	fieldAuthUID = "auth_uid"
	fieldName    = "name"
	fieldEmail   = "email"
	fieldLocale  = "locale"
)

// Approval handles gRPC endpoints for the approval workflow.
type Approval struct {
	approvalpb.UnimplementedApprovalsServer
	service        ApprovalService
	roster         RosterReader
	contextManager model.ContextManager
	logger         *logger.Logger
	timeout        time.Duration
}

// NewApproval creates a new Approval handler. Every call runs under timeout
// when it is positive.
func NewApproval(
	service ApprovalService,
	roster RosterReader,
	contextManager model.ContextManager,
	logger *logger.Logger,
	timeout time.Duration,
) *Approval {
	return &Approval{
		service:        service,
		roster:         roster,
		contextManager: contextManager,
		logger:         logger,
		timeout:        timeout,
	}
}

func (h *Approval) Approve(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	requestID := strings.TrimSpace(req.GetValue())
	if requestID == "" {
		return nil, status.Error(codes.InvalidArgument, "request id is required")
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	operator := h.operator(ctx)
	result, err := h.service.Approve(ctx, requestID)
	if err != nil {
		h.logger.Error("Approval handler: approve failed",
			"operator", operator,
			"request_id", requestID,
			"saga_id", result.SagaID,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Approval handler: request approved",
		"operator", operator,
		"request_id", requestID,
		"auth_uid", result.AuthUID)

	return resultToStruct(result)
}

func (h *Approval) Decline(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	requestID := strings.TrimSpace(req.GetValue())
	if requestID == "" {
		return nil, status.Error(codes.InvalidArgument, "request id is required")
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	operator := h.operator(ctx)
	if err := h.service.Decline(ctx, requestID); err != nil {
		h.logger.Warn("Approval handler: decline failed",
			"operator", operator,
			"request_id", requestID,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Approval handler: request declined", "operator", operator, "request_id", requestID)
	return &emptypb.Empty{}, nil
}

func (h *Approval) RetryProvisioning(ctx context.Context, req *wrapperspb.StringValue) (*structpb.Struct, error) {
	authUID := strings.TrimSpace(req.GetValue())
	if authUID == "" {
		return nil, status.Error(codes.InvalidArgument, "auth uid is required")
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	operator := h.operator(ctx)
	result, err := h.service.Provision(ctx, authUID)
	if err != nil {
		h.logger.Error("Approval handler: retry provisioning failed",
			"operator", operator,
			"auth_uid", authUID,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Approval handler: provisioning retried", "operator", operator, "auth_uid", authUID)
	return resultToStruct(result)
}

func (h *Approval) EditClient(ctx context.Context, req *structpb.Struct) (*emptypb.Empty, error) {
	fields := req.GetFields()
	authUID := strings.TrimSpace(fields[fieldAuthUID].GetStringValue())
	if authUID == "" {
		return nil, status.Error(codes.InvalidArgument, "auth uid is required")
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	operator := h.operator(ctx)
	err := h.service.EditClient(ctx, authUID, fields[fieldName].GetStringValue(), fields[fieldEmail].GetStringValue())
	if err != nil {
		h.logger.Error("Approval handler: edit client failed",
			"operator", operator,
			"auth_uid", authUID,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Approval handler: client edited", "operator", operator, "auth_uid", authUID)
	return &emptypb.Empty{}, nil
}

func (h *Approval) DecommissionClient(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	authUID := strings.TrimSpace(req.GetValue())
	if authUID == "" {
		return nil, status.Error(codes.InvalidArgument, "auth uid is required")
	}

	ctx, cancel := h.withTimeout(ctx)
	defer cancel()

	operator := h.operator(ctx)
	if err := h.service.DecommissionClient(ctx, authUID); err != nil {
		h.logger.Error("Approval handler: decommission failed",
			"operator", operator,
			"auth_uid", authUID,
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("Approval handler: client decommissioned", "operator", operator, "auth_uid", authUID)
	return &emptypb.Empty{}, nil
}

func (h *Approval) ListRequests(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	views := h.roster.Requests(req.GetFields()[fieldLocale].GetStringValue())

	items := make([]any, 0, len(views))
	for _, v := range views {
		items = append(items, map[string]any{
			"id":          v.ID,
			"cin":         v.CIN,
			"name":        v.Name,
			"email":       v.Email,
			"phone":       v.Phone,
			"requestType": v.RequestType,
			"date":        v.Date,
			"status":      v.Status,
			"authUid":     v.AuthUID,
			"ec":          v.EC,
		})
	}

	resp, err := structpb.NewStruct(map[string]any{"requests": items})
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode requests: %v", err))
	}
	return resp, nil
}

func (h *Approval) ListClients(_ context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	views := h.roster.Clients(req.GetFields()[fieldLocale].GetStringValue())

	items := make([]any, 0, len(views))
	for _, v := range views {
		items = append(items, map[string]any{
			"id":           v.ID,
			"name":         v.Name,
			"email":        v.Email,
			"cin":          v.CIN,
			"requestType":  v.RequestType,
			"dateAccepted": v.DateAccepted,
		})
	}

	resp, err := structpb.NewStruct(map[string]any{"clients": items})
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode clients: %v", err))
	}
	return resp, nil
}

func (h *Approval) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}

func (h *Approval) operator(ctx context.Context) string {
	if op, ok := h.contextManager.GetOperatorFromContext(ctx); ok {
		return op
	}
	return "unknown"
}

func resultToStruct(r model.ApprovalResult) (*structpb.Struct, error) {
	resp, err := structpb.NewStruct(map[string]any{
		"saga_id":    r.SagaID,
		"request_id": r.RequestID,
		"auth_uid":   r.AuthUID,
		"steps": map[string]any{
			"commit":    string(r.Commit),
			"provision": string(r.Provision),
			"verify":    string(r.Verify),
		},
	})
	if err != nil {
		return nil, status.Error(codes.Internal, fmt.Sprintf("failed to encode result: %v", err))
	}
	return resp, nil
}
