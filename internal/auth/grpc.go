package auth

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"depotChangeManagement/models"
)

// NewUnaryAuthInterceptor returns a gRPC unary interceptor that extracts and validates
// a Bearer JWT from incoming metadata and injects the Principal into the context.
// Methods listed in allowUnauthenticated will bypass authentication (e.g., health checks).
func NewUnaryAuthInterceptor(secret string, allowUnauthenticated ...string) grpc.UnaryServerInterceptor {
	allow := make(map[string]struct{}, len(allowUnauthenticated))
	for _, m := range allowUnauthenticated {
		allow[strings.TrimSpace(m)] = struct{}{}
	}
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if _, ok := allow[info.FullMethod]; ok {
			return handler(ctx, req)
		}
		p, err := ParseFromMD(ctx, secret)
		if err != nil {
			return nil, status.Errorf(codes.Unauthenticated, "auth error: %v", err)
		}
		return handler(WithPrincipal(ctx, p), req)
	}
}

// RequirePrincipal ensures a principal is present in context.
func RequirePrincipal(ctx context.Context) (*Principal, error) {
	p, ok := FromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing principal")
	}
	return p, nil
}

// UserDirectory resolves users and their organizations.
type UserDirectory interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetOrganization(ctx context.Context, id string) (*models.Organization, error)
}

// ResolveActor loads the caller from the users table. The token role must match
// the stored role, so a forged role claim is rejected.
func ResolveActor(ctx context.Context, users UserDirectory) (*models.Actor, error) {
	p, err := RequirePrincipal(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		return nil, status.Error(codes.Internal, "users repository not configured")
	}
	u, err := users.GetByUsername(ctx, p.Name)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get user: %v", err)
	}
	if u == nil {
		return nil, status.Error(codes.PermissionDenied, "unknown user")
	}
	if !strings.EqualFold(strings.TrimSpace(string(u.Role)), p.Role) {
		return nil, status.Error(codes.PermissionDenied, "token role does not match user role")
	}
	org, err := users.GetOrganization(ctx, u.OrganizationID)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "get organization: %v", err)
	}
	if org == nil {
		return nil, status.Error(codes.PermissionDenied, "user has no organization")
	}
	return &models.Actor{
		UserID:   u.ID,
		Username: u.Username,
		Role:     u.Role,
		OrgID:    org.ID,
		OrgName:  org.Name,
	}, nil
}
