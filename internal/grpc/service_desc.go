package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"depotChangeManagement/internal/cod"
)

const serviceName = "cod.v1.CodService"

// CodServiceServer is the server API of cod.v1.CodService.
type CodServiceServer interface {
	CreateRequest(context.Context, *cod.CreateInput) (*ActionResult, error)
	DecideRequest(context.Context, *cod.DecideInput) (*ActionResult, error)
	RequestMoreInfo(context.Context, *cod.RequestInfoInput) (*ActionResult, error)
	SubmitAdditionalInfo(context.Context, *cod.SubmitInfoInput) (*ActionResult, error)
	CancelRequest(context.Context, *RequestRef) (*ActionResult, error)
	ConfirmPayment(context.Context, *ContainerRef) (*ActionResult, error)
	StartDepotProcessing(context.Context, *ContainerRef) (*ActionResult, error)
	ConfirmDelivery(context.Context, *ContainerRef) (*ActionResult, error)
	CompleteDepotProcessing(context.Context, *ContainerRef) (*ActionResult, error)
	CompleteCodProcess(context.Context, *ContainerRef) (*ActionResult, error)
	QuoteFee(context.Context, *QuoteFeeRequest) (*ActionResult, error)
	GetRequest(context.Context, *RequestRef) (*ActionResult, error)
	ListRequests(context.Context, *cod.ListInput) (*ActionResult, error)
	GetAuditTrail(context.Context, *cod.AuditQuery) (*ActionResult, error)
}

// unary builds the method descriptor of one RPC from a CodServiceServer method expression.
func unary[Req any](name string, call func(CodServiceServer, context.Context, *Req) (*ActionResult, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(CodServiceServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + name}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

// CodServiceDesc describes cod.v1.CodService. Messages use the json codec.
var CodServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CodServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("CreateRequest", CodServiceServer.CreateRequest),
		unary("DecideRequest", CodServiceServer.DecideRequest),
		unary("RequestMoreInfo", CodServiceServer.RequestMoreInfo),
		unary("SubmitAdditionalInfo", CodServiceServer.SubmitAdditionalInfo),
		unary("CancelRequest", CodServiceServer.CancelRequest),
		unary("ConfirmPayment", CodServiceServer.ConfirmPayment),
		unary("StartDepotProcessing", CodServiceServer.StartDepotProcessing),
		unary("ConfirmDelivery", CodServiceServer.ConfirmDelivery),
		unary("CompleteDepotProcessing", CodServiceServer.CompleteDepotProcessing),
		unary("CompleteCodProcess", CodServiceServer.CompleteCodProcess),
		unary("QuoteFee", CodServiceServer.QuoteFee),
		unary("GetRequest", CodServiceServer.GetRequest),
		unary("ListRequests", CodServiceServer.ListRequests),
		unary("GetAuditTrail", CodServiceServer.GetAuditTrail),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cod/v1/cod.proto",
}

// RegisterCodServiceServer registers srv on s.
func RegisterCodServiceServer(s grpc.ServiceRegistrar, srv CodServiceServer) {
	s.RegisterService(&CodServiceDesc, srv)
}

// CodClient calls cod.v1.CodService with the json codec.
type CodClient struct {
	cc grpc.ClientConnInterface
}

func NewCodClient(cc grpc.ClientConnInterface) *CodClient {
	return &CodClient{cc: cc}
}

// Call invokes method (for example "CreateRequest") with in and returns the envelope.
func (c *CodClient) Call(ctx context.Context, method string, in any, opts ...grpc.CallOption) (*ActionResult, error) {
	out := new(ActionResult)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(codecName)}, opts...)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
