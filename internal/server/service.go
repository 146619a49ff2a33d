package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/invoice-tracker/constants"
	"github.com/joseph-ayodele/invoice-tracker/internal/common"
	"github.com/joseph-ayodele/invoice-tracker/internal/extractor"
	"github.com/joseph-ayodele/invoice-tracker/internal/pipeline"
)

const defaultRecent = 10

// MaxUploadBytes bounds a decoded ProcessInvoice payload. The daemon raises the
// gRPC receive limit to fit it.
const MaxUploadBytes = 20 << 20

// InvoiceService exposes the pipeline over gRPC.
type InvoiceService struct {
	proc    *pipeline.Processor
	factory *extractor.Factory
	logger  *zap.Logger
}

var _ InvoiceServiceServer = (*InvoiceService)(nil)

// NewInvoiceService uses proc.Factory for provider listings, or a factory with
// no credentials when proc has none.
func NewInvoiceService(proc *pipeline.Processor, logger *zap.Logger) *InvoiceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	f := proc.Factory
	if f == nil {
		f = extractor.NewFactory(nil, nil)
	}
	return &InvoiceService{proc: proc, factory: f, logger: logger}
}

// ProcessInvoice expects {filename, content (base64), provider?} and returns
// {request_id, filename, provider, result}.
func (s *InvoiceService) ProcessInvoice(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields := req.GetFields()
	data, err := base64.StdEncoding.DecodeString(fields["content"].GetStringValue())
	if err != nil {
		return nil, common.InvalidArgumentError("content must be base64")
	}
	provider := strings.ToLower(strings.TrimSpace(fields["provider"].GetStringValue()))

	v := common.NewValidator().
		Field("content", data, common.Required, common.MaxBytes(MaxUploadBytes)).
		Field("provider", provider, common.OneOf(constants.SelectorPriority...))
	if err := v.Err(); err != nil {
		s.logger.Warn("process invoice rejected", zap.Error(err))
		return nil, common.ToStatus(err)
	}

	filename, err := uploadName(fields["filename"].GetStringValue(), data)
	if err != nil {
		s.logger.Warn("process invoice rejected", zap.Error(err))
		return nil, common.ToStatus(err)
	}

	proc, err := s.proc.ProcessorFor(provider)
	if err != nil {
		s.logger.Warn("provider override failed", zap.String("provider", provider), zap.Error(err))
		return nil, common.ToStatus(err)
	}

	ctx, rid := common.EnsureRequestID(ctx)
	result, err := proc.ProcessInvoiceFile(ctx, data, filename)
	if err != nil {
		s.logger.Warn("process invoice failed",
			zap.String("request_id", rid),
			zap.String("filename", filename),
			zap.Error(err))
		return nil, common.ToStatus(err)
	}

	body, err := toValue(result)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode result failed")
	}
	s.logger.Info("invoice processed",
		zap.String("request_id", rid),
		zap.String("filename", filename),
		zap.String("provider", proc.Extractor.ProviderName()),
		zap.Bool("valid", result.Validation.IsValid))

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"request_id": structpb.NewStringValue(rid),
		"filename":   structpb.NewStringValue(filename),
		"provider":   structpb.NewStringValue(proc.Extractor.ProviderName()),
		"result":     body,
	}}, nil
}

func (s *InvoiceService) ListProviders(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	avail := s.factory.AvailableProviders()
	list := make([]*structpb.Value, 0, len(avail))
	for _, p := range avail {
		list = append(list, structpb.NewStringValue(p))
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"available":   structpb.NewListValue(&structpb.ListValue{Values: list}),
		"recommended": structpb.NewStringValue(s.factory.RecommendedProvider()),
	}}, nil
}

// GetMetrics returns {stats, recent}. An optional "limit" overrides the
// number of recent records.
func (s *InvoiceService) GetMetrics(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit := defaultRecent
	if v, ok := req.GetFields()["limit"]; ok {
		if n := int(v.GetNumberValue()); n > 0 {
			limit = n
		}
	}
	stats, err := s.proc.Sink.StatsByProvider(ctx)
	if err != nil {
		s.logger.Warn("metrics stats failed", zap.Error(err))
		return nil, status.Error(codes.Internal, "metrics stats failed")
	}
	recent, err := s.proc.Sink.Recent(ctx, limit)
	if err != nil {
		s.logger.Warn("metrics recent failed", zap.Error(err))
		return nil, status.Error(codes.Internal, "metrics recent failed")
	}

	statsVal, err := toValue(stats)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode metrics failed")
	}
	recentVal, err := toValue(recent)
	if err != nil {
		return nil, status.Error(codes.Internal, "encode metrics failed")
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"stats":  statsVal,
		"recent": recentVal,
	}}, nil
}

// uploadName keeps a supported filename and otherwise derives the extension
// from the content.
func uploadName(name string, data []byte) (string, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		name = ""
	}
	if _, ok := constants.FormatForExt(filepath.Ext(name)); ok {
		return name, nil
	}
	mt := mimetype.Detect(data)
	var ext string
	switch {
	case mt.Is("application/pdf"):
		ext = ".pdf"
	case mt.Is("image/png"):
		ext = ".png"
	case mt.Is("image/jpeg"):
		ext = ".jpg"
	default:
		return "", common.UnsupportedFormatError(mt.Extension())
	}
	if name == "" {
		name = "upload"
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ext, nil
}

// toValue converts v to a protobuf Value through its JSON form so the json tags
// of the entity types define the wire names.
func toValue(v any) (*structpb.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, err
	}
	return structpb.NewValue(generic)
}

// UnaryLogger logs every unary call with its status code and latency.
func UnaryLogger(logger *zap.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		logger.Info("grpc call",
			zap.String("method", info.FullMethod),
			zap.String("code", status.Code(err).String()),
			zap.Duration("elapsed", time.Since(start)))
		return resp, err
	}
}
