package grpc

import (
	"context"

	"github.com/dmitrijs2005/darktrack/internal/api"
)

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Scan(ctx context.Context, req *api.ScanRequest) (*api.ScanResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	scan, err := s.scans.ScanEmail(ctx, userID, req.Email)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodScan, err)
	}
	return &api.ScanResponse{Scan: scan}, nil
}

func (s *GRPCServer) ScanSelf(ctx context.Context, req *api.ScanSelfRequest) (*api.ScanResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	scan, err := s.scans.ScanSelf(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodScanSelf, err)
	}
	return &api.ScanResponse{Scan: scan}, nil
}

func (s *GRPCServer) QuickLookup(ctx context.Context, req *api.QuickLookupRequest) (*api.QuickLookupResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	result, err := s.scans.QuickLookup(ctx, userID, req.Email)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodQuickLookup, err)
	}
	return &api.QuickLookupResponse{Result: result}, nil
}

func (s *GRPCServer) SaveLookup(ctx context.Context, req *api.SaveLookupRequest) (*api.ScanResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	scan, err := s.scans.SaveLookup(ctx, userID, req.Result)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodSaveLookup, err)
	}
	return &api.ScanResponse{Scan: scan}, nil
}

func (s *GRPCServer) ListScans(ctx context.Context, req *api.ListScansRequest) (*api.ListScansResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	scans, err := s.scans.ListScans(ctx, userID, req.Limit)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodListScans, err)
	}
	return &api.ListScansResponse{Scans: scans}, nil
}

func (s *GRPCServer) LatestScan(ctx context.Context, req *api.LatestScanRequest) (*api.ScanResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	scan, err := s.scans.LatestScan(ctx, userID)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodLatestScan, err)
	}
	return &api.ScanResponse{Scan: scan}, nil
}

func (s *GRPCServer) GetBreaches(ctx context.Context, req *api.GetBreachesRequest) (*api.GetBreachesResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var resp api.GetBreachesResponse
	if req.ScanID == "" {
		resp.Breaches, err = s.scans.GetLatestBreaches(ctx, userID)
	} else {
		resp.Breaches, err = s.scans.GetBreachesForScan(ctx, userID, req.ScanID)
	}
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodGetBreaches, err)
	}
	return &resp, nil
}

func (s *GRPCServer) RegenerateAnalysis(ctx context.Context, req *api.RegenerateAnalysisRequest) (*api.RegenerateAnalysisResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	scan, err := s.scans.RegenerateAnalysis(ctx, userID, req.ScanID)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodRegenerateAnalysis, err)
	}
	return &api.RegenerateAnalysisResponse{Scan: scan}, nil
}

func (s *GRPCServer) ExportReport(ctx context.Context, req *api.ExportReportRequest) (*api.ExportReportResponse, error) {
	userID, err := userIDFromContext(ctx)
	if err != nil {
		return nil, err
	}

	exp, err := s.reports.Export(ctx, userID, req.ScanID)
	if err != nil {
		return nil, s.toStatus(ctx, api.MethodExportReport, err)
	}
	return &api.ExportReportResponse{Key: exp.Key, URL: exp.URL, ExpiresAt: exp.ExpiresAt}, nil
}
