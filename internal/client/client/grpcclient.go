package client

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/darktrack/internal/api"
	"github.com/dmitrijs2005/darktrack/internal/common"
	"github.com/dmitrijs2005/darktrack/internal/server/models"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type GRPCClient struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      *api.ScanServiceClient
	accessToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply interface{},
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

// NewScanClient connects to the DarkTrack gRPC endpoint. The connection is
// established lazily on the first call.
func NewScanClient(endpointURL, accessToken string, opts ...grpc.DialOption) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken}
	if err := c.initGRPCClient(opts...); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) initGRPCClient(extra ...grpc.DialOption) error {
	opts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, extra...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewScanServiceClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return s.mapError(err)
	}

	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

func (s *GRPCClient) Scan(ctx context.Context, email string) (*models.ScanWithBreaches, error) {
	resp, err := s.client.Scan(ctx, &api.ScanRequest{Email: email})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Scan, nil
}

func (s *GRPCClient) ScanSelf(ctx context.Context) (*models.ScanWithBreaches, error) {
	resp, err := s.client.ScanSelf(ctx, &api.ScanSelfRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Scan, nil
}

func (s *GRPCClient) QuickLookup(ctx context.Context, email string) (*models.ScanResult, error) {
	resp, err := s.client.QuickLookup(ctx, &api.QuickLookupRequest{Email: email})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Result, nil
}

func (s *GRPCClient) SaveLookup(ctx context.Context, result *models.ScanResult) (*models.ScanWithBreaches, error) {
	resp, err := s.client.SaveLookup(ctx, &api.SaveLookupRequest{Result: result})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Scan, nil
}

func (s *GRPCClient) ListScans(ctx context.Context, limit int) ([]*models.ScanWithBreaches, error) {
	resp, err := s.client.ListScans(ctx, &api.ListScansRequest{Limit: limit})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Scans, nil
}

func (s *GRPCClient) LatestScan(ctx context.Context) (*models.ScanWithBreaches, error) {
	resp, err := s.client.LatestScan(ctx, &api.LatestScanRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Scan, nil
}

func (s *GRPCClient) GetBreaches(ctx context.Context, scanID string) ([]*models.Breach, error) {
	resp, err := s.client.GetBreaches(ctx, &api.GetBreachesRequest{ScanID: scanID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Breaches, nil
}

func (s *GRPCClient) RegenerateAnalysis(ctx context.Context, scanID string) (*models.Scan, error) {
	resp, err := s.client.RegenerateAnalysis(ctx, &api.RegenerateAnalysisRequest{ScanID: scanID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Scan, nil
}

func (s *GRPCClient) ExportReport(ctx context.Context, scanID string) (*Export, error) {
	resp, err := s.client.ExportReport(ctx, &api.ExportReportRequest{ScanID: scanID})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &Export{Key: resp.Key, URL: resp.URL, ExpiresAt: resp.ExpiresAt}, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, _ := status.FromError(err)
	switch st.Code() {
	case codes.Unauthenticated, codes.PermissionDenied:
		if st.Message() == common.ErrTokenExpired.Error() {
			return ErrTokenExpired
		}
		return ErrUnauthorized
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	case codes.InvalidArgument:
		return validationFromStatus(st)
	case codes.ResourceExhausted:
		if rl := rateLimitFromStatus(st); rl != nil {
			return rl
		}
		return fmt.Errorf("rpc error: %w", err)
	case codes.NotFound:
		return common.ErrorNotFound
	default:
		return fmt.Errorf("rpc error: %w", err)
	}
}

func validationFromStatus(st *status.Status) error {
	for _, d := range st.Details() {
		if br, ok := d.(*errdetails.BadRequest); ok && len(br.GetFieldViolations()) > 0 {
			v := br.GetFieldViolations()[0]
			return common.NewValidationError(v.GetField(), v.GetDescription())
		}
	}
	return common.NewValidationError("", st.Message())
}

// rateLimitFromStatus prefers the absolute instant from ErrorInfo and falls
// back to RetryInfo relative to the local clock.
func rateLimitFromStatus(st *status.Status) *common.RateLimitError {
	var retry *errdetails.RetryInfo
	for _, d := range st.Details() {
		switch info := d.(type) {
		case *errdetails.ErrorInfo:
			if info.GetReason() != common.RateLimitReason {
				continue
			}
			at, err := time.Parse(time.RFC3339, info.GetMetadata()[common.MetaNextAvailableAt])
			if err == nil {
				return common.NewRateLimitError(at)
			}
		case *errdetails.RetryInfo:
			retry = info
		}
	}
	if retry != nil && retry.GetRetryDelay() != nil {
		return common.NewRateLimitError(time.Now().Add(retry.GetRetryDelay().AsDuration()))
	}
	return nil
}
