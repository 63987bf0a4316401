package productsv1

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/orders/api/jsoncodec"
)

const ProductService_ValidateProducts_FullMethodName = "/products.v1.ProductService/ValidateProducts"

// ProductServiceClient — клиентский API сервиса товаров.
type ProductServiceClient interface {
	ValidateProducts(ctx context.Context, in *ValidateProductsRequest, opts ...grpc.CallOption) (*ValidateProductsResponse, error)
}

type productServiceClient struct {
	cc grpc.ClientConnInterface
}

func NewProductServiceClient(cc grpc.ClientConnInterface) ProductServiceClient {
	return &productServiceClient{cc: cc}
}

func (c *productServiceClient) ValidateProducts(ctx context.Context, in *ValidateProductsRequest, opts ...grpc.CallOption) (*ValidateProductsResponse, error) {
	out := new(ValidateProductsResponse)
	cOpts := append([]grpc.CallOption{jsoncodec.CallOption()}, opts...)
	if err := c.cc.Invoke(ctx, ProductService_ValidateProducts_FullMethodName, in, out, cOpts...); err != nil {
		return nil, err
	}
	return out, nil
}

// ProductServiceServer — серверный API сервиса товаров.
type ProductServiceServer interface {
	ValidateProducts(context.Context, *ValidateProductsRequest) (*ValidateProductsResponse, error)
	mustEmbedUnimplementedProductServiceServer()
}

type UnimplementedProductServiceServer struct{}

func (UnimplementedProductServiceServer) ValidateProducts(context.Context, *ValidateProductsRequest) (*ValidateProductsResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ValidateProducts not implemented")
}

func (UnimplementedProductServiceServer) mustEmbedUnimplementedProductServiceServer() {}

func RegisterProductServiceServer(s grpc.ServiceRegistrar, srv ProductServiceServer) {
	s.RegisterService(&ProductService_ServiceDesc, srv)
}

func validateProductsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(ValidateProductsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ProductServiceServer).ValidateProducts(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ProductService_ValidateProducts_FullMethodName}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ProductServiceServer).ValidateProducts(ctx, req.(*ValidateProductsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ProductService_ServiceDesc — дескриптор products.v1.ProductService.
var ProductService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "products.v1.ProductService",
	HandlerType: (*ProductServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ValidateProducts", Handler: validateProductsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "products/v1/product_service",
}
