package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"user_admin/internal/domain"

	"github.com/sirupsen/logrus"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

type UserHandler struct {
	useCase domain.UserUseCase
	log     *logrus.Logger
}

func NewUserHandler(uc domain.UserUseCase, logger *logrus.Logger) *UserHandler {
	return &UserHandler{
		useCase: uc,
		log:     logger,
	}
}

func (h *UserHandler) AddUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	h.log.Infof("gRPC Handler: Received AddUser request for user: %s", req.GetFields()["userName"].GetStringValue())

	result, err := h.useCase.AddUser(ctx, principalFromContext(ctx), userFromStruct(req))
	return h.respond("AddUser", result, err)
}

func (h *UserHandler) EditUser(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	h.log.Infof("gRPC Handler: Received EditUser request for User ID: %d", req.GetValue())

	result, err := h.useCase.EditUser(ctx, principalFromContext(ctx), req.GetValue())
	return h.respond("EditUser", result, err)
}

func (h *UserHandler) UpdateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, err := userIDFromValue(req.GetFields()["id"])
	if err != nil {
		h.log.Warnf("gRPC Handler: UpdateUser rejected: %v", err)
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	h.log.Infof("gRPC Handler: Received UpdateUser request for User ID: %d", id)

	result, err := h.useCase.UpdateUser(ctx, principalFromContext(ctx), id, userFromStruct(req))
	return h.respond("UpdateUser", result, err)
}

func (h *UserHandler) ListUsers(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	h.log.Info("gRPC Handler: Received ListUsers request")

	result, err := h.useCase.ListUsers(ctx, principalFromContext(ctx))
	return h.respond("ListUsers", result, err)
}

func (h *UserHandler) DeleteUser(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	h.log.Infof("gRPC Handler: Received DeleteUser request for User ID: %d", req.GetValue())

	result, err := h.useCase.DeleteUser(ctx, principalFromContext(ctx), req.GetValue())
	return h.respond("DeleteUser", result, err)
}

func (h *UserHandler) respond(method string, result *domain.OperationResult, err error) (*structpb.Struct, error) {
	if err != nil {
		st := statusFromError(err)
		h.log.Warnf("gRPC Handler: %s failed (Code: %s): %v", method, st.Code(), err)
		return nil, st.Err()
	}

	switch result.Kind {
	case domain.ResultValidationFailure:
		h.log.Warnf("gRPC Handler: %s validation failed: %v", method, result.FieldErrors)
		return nil, validationStatus(result.FieldErrors).Err()
	case domain.ResultAuthorizationFailure:
		h.log.Warnf("gRPC Handler: %s denied: %s", method, result.Reason)
		return nil, status.Error(codes.PermissionDenied, result.Reason)
	}

	resp, err := successStruct(result)
	if err != nil {
		h.log.Errorf("gRPC Handler: %s failed to encode response: %v", method, err)
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	h.log.Infof("gRPC Handler: %s successful", method)
	return resp, nil
}

func statusFromError(err error) *status.Status {
	switch {
	case errors.Is(err, domain.ErrUserNotFound):
		return status.New(codes.NotFound, err.Error())
	case errors.Is(err, domain.ErrUserAlreadyExists):
		return status.New(codes.AlreadyExists, err.Error())
	case errors.Is(err, domain.ErrInvalidUserID), errors.Is(err, domain.ErrRoleNotFound):
		return status.New(codes.InvalidArgument, err.Error())
	default:
		return status.New(codes.Internal, "internal server error")
	}
}

// validationStatus carries one FieldViolation per invalid field, in field order.
func validationStatus(fieldErrors map[string]string) *status.Status {
	fields := make([]string, 0, len(fieldErrors))
	for f := range fieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	br := &errdetails.BadRequest{}
	for _, f := range fields {
		br.FieldViolations = append(br.FieldViolations, &errdetails.BadRequest_FieldViolation{
			Field:       f,
			Description: fieldErrors[f],
		})
	}

	st := status.New(codes.InvalidArgument, "validation failed: "+strings.Join(fields, ", "))
	detailed, err := st.WithDetails(br)
	if err != nil {
		return st
	}
	return detailed
}

// successStruct encodes {message, data}; data goes through JSON so field names match the HTTP API.
func successStruct(result *domain.OperationResult) (*structpb.Struct, error) {
	fields := map[string]interface{}{"message": result.Message}
	if result.Payload != nil {
		raw, err := json.Marshal(result.Payload)
		if err != nil {
			return nil, fmt.Errorf("marshal payload: %w", err)
		}
		var data interface{}
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("unmarshal payload: %w", err)
		}
		fields["data"] = data
	}
	return structpb.NewStruct(fields)
}

// maxExactID is the largest integer a JSON number carries without rounding.
const maxExactID = 1 << 53

// userIDFromValue reads a numeric id. A missing id yields 0, which the use case rejects.
func userIDFromValue(v *structpb.Value) (int64, error) {
	if v == nil {
		return 0, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok {
		return 0, fmt.Errorf("%w: id must be a number", domain.ErrInvalidUserID)
	}
	f := n.NumberValue
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxExactID {
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidUserID, f)
	}
	return int64(f), nil
}

func userFromStruct(s *structpb.Struct) *domain.User {
	fields := s.GetFields()
	user := &domain.User{
		UserName: fields["userName"].GetStringValue(),
		Password: fields["password"].GetStringValue(),
		Email:    fields["email"].GetStringValue(),
	}
	for _, v := range fields["roles"].GetListValue().GetValues() {
		user.Roles = append(user.Roles, domain.Role{Name: domain.RoleName(v.GetStringValue())})
	}
	return user
}
