package server

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "invoices.v1.InvoiceService"

const (
	processInvoiceMethod = "/" + ServiceName + "/ProcessInvoice"
	listProvidersMethod  = "/" + ServiceName + "/ListProviders"
	getMetricsMethod     = "/" + ServiceName + "/GetMetrics"
)

// InvoiceServiceServer is the server API. Messages are google.protobuf.Struct
// so the service needs no generated code.
type InvoiceServiceServer interface {
	ProcessInvoice(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListProviders(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetMetrics(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

func RegisterInvoiceServiceServer(s grpc.ServiceRegistrar, srv InvoiceServiceServer) {
	s.RegisterService(&InvoiceService_ServiceDesc, srv)
}

func unaryHandler(method string, call func(InvoiceServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)) grpc.MethodHandler {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InvoiceServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: method}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(InvoiceServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var InvoiceService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*InvoiceServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "ProcessInvoice",
			Handler:    unaryHandler(processInvoiceMethod, InvoiceServiceServer.ProcessInvoice),
		},
		{
			MethodName: "ListProviders",
			Handler:    unaryHandler(listProvidersMethod, InvoiceServiceServer.ListProviders),
		},
		{
			MethodName: "GetMetrics",
			Handler:    unaryHandler(getMetricsMethod, InvoiceServiceServer.GetMetrics),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "invoices/v1/invoices.proto",
}

// InvoiceServiceClient is the client API for InvoiceService.
type InvoiceServiceClient interface {
	ProcessInvoice(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	ListProviders(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	GetMetrics(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type invoiceServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewInvoiceServiceClient(cc grpc.ClientConnInterface) InvoiceServiceClient {
	return &invoiceServiceClient{cc}
}

func (c *invoiceServiceClient) invoke(ctx context.Context, method string, in *structpb.Struct, opts []grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *invoiceServiceClient) ProcessInvoice(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, processInvoiceMethod, in, opts)
}

func (c *invoiceServiceClient) ListProviders(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, listProvidersMethod, in, opts)
}

func (c *invoiceServiceClient) GetMetrics(ctx context.Context, in *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error) {
	return c.invoke(ctx, getMetricsMethod, in, opts)
}
