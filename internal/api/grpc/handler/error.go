package handler

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/dtroode/greenhouse-admin/internal/model"
)

// errorDomain is the ErrorInfo domain attached to approval failures.
const errorDomain = "greenhouse.admin"

// Error reasons, stable for clients.
const (
	ReasonInvalidRequest         = "INVALID_REQUEST"
	ReasonAlreadyApproved        = "ALREADY_APPROVED"
	ReasonNotFound               = "NOT_FOUND"
	ReasonProvisioningFailed     = "PROVISIONING_FAILED"
	ReasonProvisioningUnverified = "PROVISIONING_UNVERIFIED"
)

func handleError(err error) error {
	var (
		code   codes.Code
		reason string
		msg    string
	)

	switch {
	case errors.Is(err, model.ErrProvisioningUnverified):
		code, reason, msg = codes.Aborted, ReasonProvisioningUnverified, "device state could not be verified"
	case errors.Is(err, model.ErrProvisioningFailed):
		code, reason, msg = codes.Unavailable, ReasonProvisioningFailed, "device state could not be written"
	case errors.Is(err, model.ErrInvalidRequest):
		code, reason, msg = codes.InvalidArgument, ReasonInvalidRequest, err.Error()
	case errors.Is(err, model.ErrAlreadyApproved):
		code, reason, msg = codes.AlreadyExists, ReasonAlreadyApproved, "client already approved"
	case errors.Is(err, model.ErrNotFound):
		code, reason, msg = codes.NotFound, ReasonNotFound, "not found"
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	default:
		return status.Error(codes.Internal, "internal server error")
	}

	info := &errdetails.ErrorInfo{
		Reason: reason,
		Domain: errorDomain,
	}
	var perr *model.ProvisioningError
	if errors.As(err, &perr) {
		info.Metadata = map[string]string{
			"auth_uid": perr.AuthUID,
			"step":     string(perr.Step),
		}
	}

	st, detailErr := status.New(code, msg).WithDetails(info)
	if detailErr != nil {
		return status.Error(code, msg)
	}
	return st.Err()
}
