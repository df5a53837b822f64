package client

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
	"github.com/golang-jwt/jwt/v5"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName = "fieldvisits.v1.FieldVisits"

	MethodSession     = "/" + ServiceName + "/Session"
	MethodLogin       = "/" + ServiceName + "/Login"
	MethodLogout      = "/" + ServiceName + "/Logout"
	MethodListClients = "/" + ServiceName + "/ListClients"
	MethodUpdateVisit = "/" + ServiceName + "/UpdateVisit"

	AuthorizationHeader = "authorization"
)

type GRPCClient struct {
	endpointURL string
	dialOpts    []grpc.DialOption
	conn        *grpc.ClientConn

	mu    sync.RWMutex
	token string
}

var _ Client = (*GRPCClient)(nil)

func withToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(AuthorizationHeader)
	md.Set(AuthorizationHeader, "Bearer "+token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if token := s.currentToken(); token != "" {
		ctx = withToken(ctx, token)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewFieldVisitsClient connects lazily to endpointURL. Extra dial options
// are appended after the defaults.
func NewFieldVisitsClient(endpointURL string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, dialOpts: opts}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient() error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.tokenInterceptor),
	}, s.dialOpts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) currentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *GRPCClient) setToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Probe asks the backend whether the current session is valid. A rejected
// token is reported as an invalid session, not as an error.
func (s *GRPCClient) Probe(ctx context.Context) (models.ProbeResult, error) {
	resp := &structpb.Struct{}
	if err := s.conn.Invoke(ctx, MethodSession, &emptypb.Empty{}, resp); err != nil {
		mapped := s.mapError(err)
		if errors.Is(mapped, ErrUnauthorized) {
			return models.ProbeResult{Success: false}, nil
		}
		return models.ProbeResult{}, mapped
	}

	var dto sessionDTO
	if err := decodeStruct(resp, &dto); err != nil {
		return models.ProbeResult{}, err
	}
	return models.ProbeResult{Success: dto.Success, User: dto.User.toModel()}, nil
}

func (s *GRPCClient) Login(ctx context.Context, username, password string) (bool, error) {
	req, err := structpb.NewStruct(map[string]any{
		"username": username,
		"password": password,
	})
	if err != nil {
		return false, err
	}

	resp := &structpb.Struct{}
	if err := s.conn.Invoke(ctx, MethodLogin, req, resp); err != nil {
		return false, s.mapError(err)
	}

	var dto loginDTO
	if err := decodeStruct(resp, &dto); err != nil {
		return false, err
	}
	if dto.Success && dto.Token != "" {
		s.setToken(dto.Token)
	}
	return dto.Success, nil
}

// Logout ends the backend session. The local token is dropped even when the
// call fails.
func (s *GRPCClient) Logout(ctx context.Context) error {
	defer s.setToken("")

	if err := s.conn.Invoke(ctx, MethodLogout, &emptypb.Empty{}, &emptypb.Empty{}); err != nil {
		return s.mapError(err)
	}
	return nil
}

func (s *GRPCClient) ListClients(ctx context.Context) ([]models.Client, error) {
	resp := &structpb.Struct{}
	if err := s.conn.Invoke(ctx, MethodListClients, &emptypb.Empty{}, resp); err != nil {
		return nil, s.mapError(err)
	}

	var dto clientsDTO
	if err := decodeStruct(resp, &dto); err != nil {
		return nil, err
	}

	clients := make([]models.Client, 0, len(dto.Clients))
	for _, c := range dto.Clients {
		clients = append(clients, c.toModel())
	}
	return clients, nil
}

func (s *GRPCClient) UpdateVisit(ctx context.Context, v models.Visit) error {
	req, err := visitToStruct(v)
	if err != nil {
		return err
	}

	resp := &structpb.Struct{}
	if err := s.conn.Invoke(ctx, MethodUpdateVisit, req, resp); err != nil {
		return s.mapError(err)
	}

	var dto resultDTO
	if err := decodeStruct(resp, &dto); err != nil {
		return err
	}
	if !dto.Success {
		return ErrRejected
	}
	return nil
}

// TokenExpiry returns the exp claim of the session token. The token is not
// verified; the value is for display only.
func (s *GRPCClient) TokenExpiry() (time.Time, bool) {
	token := s.currentToken()
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}
