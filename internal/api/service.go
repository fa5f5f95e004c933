package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "darktrack.ScanService"

const (
	MethodPing               = "/" + ServiceName + "/Ping"
	MethodScan               = "/" + ServiceName + "/Scan"
	MethodScanSelf           = "/" + ServiceName + "/ScanSelf"
	MethodQuickLookup        = "/" + ServiceName + "/QuickLookup"
	MethodSaveLookup         = "/" + ServiceName + "/SaveLookup"
	MethodListScans          = "/" + ServiceName + "/ListScans"
	MethodLatestScan         = "/" + ServiceName + "/LatestScan"
	MethodGetBreaches        = "/" + ServiceName + "/GetBreaches"
	MethodRegenerateAnalysis = "/" + ServiceName + "/RegenerateAnalysis"
	MethodExportReport       = "/" + ServiceName + "/ExportReport"
)

// ScanServiceServer is implemented by the gRPC transport.
type ScanServiceServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	Scan(context.Context, *ScanRequest) (*ScanResponse, error)
	ScanSelf(context.Context, *ScanSelfRequest) (*ScanResponse, error)
	QuickLookup(context.Context, *QuickLookupRequest) (*QuickLookupResponse, error)
	SaveLookup(context.Context, *SaveLookupRequest) (*ScanResponse, error)
	ListScans(context.Context, *ListScansRequest) (*ListScansResponse, error)
	LatestScan(context.Context, *LatestScanRequest) (*ScanResponse, error)
	GetBreaches(context.Context, *GetBreachesRequest) (*GetBreachesResponse, error)
	RegenerateAnalysis(context.Context, *RegenerateAnalysisRequest) (*RegenerateAnalysisResponse, error)
	ExportReport(context.Context, *ExportReportRequest) (*ExportReportResponse, error)
}

func unary[Req, Resp any](fullMethod string, call func(ScanServiceServer, context.Context, *Req) (*Resp, error)) func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ScanServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(ScanServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ServiceDesc describes darktrack.ScanService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ScanServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Ping", Handler: unary(MethodPing, ScanServiceServer.Ping)},
		{MethodName: "Scan", Handler: unary(MethodScan, ScanServiceServer.Scan)},
		{MethodName: "ScanSelf", Handler: unary(MethodScanSelf, ScanServiceServer.ScanSelf)},
		{MethodName: "QuickLookup", Handler: unary(MethodQuickLookup, ScanServiceServer.QuickLookup)},
		{MethodName: "SaveLookup", Handler: unary(MethodSaveLookup, ScanServiceServer.SaveLookup)},
		{MethodName: "ListScans", Handler: unary(MethodListScans, ScanServiceServer.ListScans)},
		{MethodName: "LatestScan", Handler: unary(MethodLatestScan, ScanServiceServer.LatestScan)},
		{MethodName: "GetBreaches", Handler: unary(MethodGetBreaches, ScanServiceServer.GetBreaches)},
		{MethodName: "RegenerateAnalysis", Handler: unary(MethodRegenerateAnalysis, ScanServiceServer.RegenerateAnalysis)},
		{MethodName: "ExportReport", Handler: unary(MethodExportReport, ScanServiceServer.ExportReport)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "darktrack/scan_service",
}

func RegisterScanServiceServer(s grpc.ServiceRegistrar, srv ScanServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// ScanServiceClient calls darktrack.ScanService with the JSON codec.
type ScanServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewScanServiceClient(cc grpc.ClientConnInterface) *ScanServiceClient {
	return &ScanServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ScanServiceClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, MethodPing, in, opts)
}

func (c *ScanServiceClient) Scan(ctx context.Context, in *ScanRequest, opts ...grpc.CallOption) (*ScanResponse, error) {
	return invoke[ScanResponse](ctx, c.cc, MethodScan, in, opts)
}

func (c *ScanServiceClient) ScanSelf(ctx context.Context, in *ScanSelfRequest, opts ...grpc.CallOption) (*ScanResponse, error) {
	return invoke[ScanResponse](ctx, c.cc, MethodScanSelf, in, opts)
}

func (c *ScanServiceClient) QuickLookup(ctx context.Context, in *QuickLookupRequest, opts ...grpc.CallOption) (*QuickLookupResponse, error) {
	return invoke[QuickLookupResponse](ctx, c.cc, MethodQuickLookup, in, opts)
}

func (c *ScanServiceClient) SaveLookup(ctx context.Context, in *SaveLookupRequest, opts ...grpc.CallOption) (*ScanResponse, error) {
	return invoke[ScanResponse](ctx, c.cc, MethodSaveLookup, in, opts)
}

func (c *ScanServiceClient) ListScans(ctx context.Context, in *ListScansRequest, opts ...grpc.CallOption) (*ListScansResponse, error) {
	return invoke[ListScansResponse](ctx, c.cc, MethodListScans, in, opts)
}

func (c *ScanServiceClient) LatestScan(ctx context.Context, in *LatestScanRequest, opts ...grpc.CallOption) (*ScanResponse, error) {
	return invoke[ScanResponse](ctx, c.cc, MethodLatestScan, in, opts)
}

func (c *ScanServiceClient) GetBreaches(ctx context.Context, in *GetBreachesRequest, opts ...grpc.CallOption) (*GetBreachesResponse, error) {
	return invoke[GetBreachesResponse](ctx, c.cc, MethodGetBreaches, in, opts)
}

func (c *ScanServiceClient) RegenerateAnalysis(ctx context.Context, in *RegenerateAnalysisRequest, opts ...grpc.CallOption) (*RegenerateAnalysisResponse, error) {
	return invoke[RegenerateAnalysisResponse](ctx, c.cc, MethodRegenerateAnalysis, in, opts)
}

func (c *ScanServiceClient) ExportReport(ctx context.Context, in *ExportReportRequest, opts ...grpc.CallOption) (*ExportReportResponse, error) {
	return invoke[ExportReportResponse](ctx, c.cc, MethodExportReport, in, opts)
}
