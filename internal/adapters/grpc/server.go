package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/gradlink/accounts-service/internal/application"
)

// AccountsInternalService is the service-to-service surface. Sibling services
// call it to validate session tokens and to resolve account state without
// going through the public HTTP API.
type AccountsInternalService interface {
	ValidateToken(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetAccountStatus(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type AccountsInternalServer struct {
	service *application.Service
}

func NewAccountsInternalServer(service *application.Service) *AccountsInternalServer {
	return &AccountsInternalServer{service: service}
}

func Register(server grpc.ServiceRegistrar, svc AccountsInternalService) {
	server.RegisterService(&grpc.ServiceDesc{
		ServiceName: "gradlink.accounts.v1.AccountsInternalService",
		HandlerType: (*AccountsInternalService)(nil),
		Methods: []grpc.MethodDesc{
			{
				MethodName: "ValidateToken",
				Handler:    structHandler(svc, "ValidateToken", AccountsInternalService.ValidateToken),
			},
			{
				MethodName: "GetAccountStatus",
				Handler:    structHandler(svc, "GetAccountStatus", AccountsInternalService.GetAccountStatus),
			},
		},
		Streams:  []grpc.StreamDesc{},
		Metadata: "gradlink/accounts/v1/accounts_internal.proto",
	}, svc)
}

func (s *AccountsInternalServer) ValidateToken(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	token := req.GetFields()["token"].GetStringValue()
	if token == "" {
		return nil, status.Error(codes.InvalidArgument, "missing token")
	}

	claims, err := s.service.ValidateToken(ctx, token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	resp, err := structpb.NewStruct(map[string]any{
		"valid":      true,
		"user_id":    claims.UserID.String(),
		"email":      claims.Email,
		"role":       string(claims.Role),
		"expires_at": claims.ExpiresAt.Unix(),
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func (s *AccountsInternalServer) GetAccountStatus(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	rawID := req.GetFields()["user_id"].GetStringValue()
	if rawID == "" {
		return nil, status.Error(codes.InvalidArgument, "missing user_id")
	}

	account, err := s.service.GetAccountStatus(ctx, rawID)
	if err != nil {
		return nil, status.Error(codes.NotFound, "account not found")
	}

	fields := map[string]any{
		"user_id":   account.UserID.String(),
		"email":     account.Email,
		"role":      string(account.Role),
		"is_active": account.IsActive,
	}
	if account.OrganizationID != nil {
		fields["organization_id"] = account.OrganizationID.String()
	}
	resp, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "build response: %v", err)
	}
	return resp, nil
}

func structHandler(
	svc AccountsInternalService,
	method string,
	call func(AccountsInternalService, context.Context, *structpb.Struct) (*structpb.Struct, error),
) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/gradlink.accounts.v1.AccountsInternalService/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		req := &structpb.Struct{}
		if err := dec(req); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(svc, ctx, req)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			typed, ok := req.(*structpb.Struct)
			if !ok {
				return nil, status.Error(codes.InvalidArgument, "invalid request type")
			}
			return call(svc, ctx, typed)
		}
		return interceptor(ctx, req, info, handler)
	}
}
