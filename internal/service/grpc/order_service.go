package grpcsvc

import (
	"context"
	"errors"

	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/orders/api/ordersv1"
	"github.com/vladislavdragonenkov/orders/internal/domain"
	"github.com/vladislavdragonenkov/orders/internal/service/orders"
)

const internalErrorMessage = "internal server error"

// OrderManager — сценарии жизненного цикла заказа, которые обслуживает транспорт.
type OrderManager interface {
	Create(ctx context.Context, in orders.CreateOrderInput) (domain.Order, error)
	FindAll(ctx context.Context, req domain.PaginationRequest) (domain.PaginationResult, error)
	FindOne(ctx context.Context, id string) (domain.Order, error)
	ChangeStatus(ctx context.Context, id string, status domain.OrderStatus) (domain.Order, error)
}

var _ OrderManager = (*orders.Orchestrator)(nil)

// OrderService реализует gRPC API orders.v1 поверх оркестратора заказов.
type OrderService struct {
	ordersv1.UnimplementedOrderServiceServer

	orders OrderManager
	logger *log.Entry
}

// NewOrderService конструирует сервис с зависимостями.
func NewOrderService(manager OrderManager, logger *log.Entry) *OrderService {
	if logger == nil {
		logger = log.WithField("component", "order-service")
	}
	return &OrderService{
		orders: manager,
		logger: logger.WithField("layer", "grpc"),
	}
}

// CreateOrder создаёт заказ по списку позиций.
func (s *OrderService) CreateOrder(ctx context.Context, req *ordersv1.CreateOrderRequest) (*ordersv1.Order, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in := orders.CreateOrderInput{Items: make([]orders.CreateItem, 0, len(req.GetItems()))}
	for idx, item := range req.GetItems() {
		if item == nil {
			return nil, status.Errorf(codes.InvalidArgument, "items[%d] is required", idx)
		}
		in.Items = append(in.Items, orders.CreateItem{
			ProductID: domain.ProductID(item.GetProductID()),
			Quantity:  item.GetQuantity(),
		})
	}

	order, err := s.orders.Create(ctx, in)
	if err != nil {
		return nil, s.toStatus(err, "CreateOrder", "")
	}
	return toWireOrder(order), nil
}

// FindAllOrders возвращает страницу заказов без позиций.
func (s *OrderService) FindAllOrders(ctx context.Context, req *ordersv1.FindAllOrdersRequest) (*ordersv1.FindAllOrdersResponse, error) {
	if req == nil {
		req = &ordersv1.FindAllOrdersRequest{}
	}

	page := domain.PaginationRequest{
		Page:  int(req.GetPage()),
		Limit: int(req.GetLimit()),
	}
	if raw := req.GetStatus(); raw != "" {
		st, err := domain.ParseOrderStatus(raw)
		if err != nil {
			return nil, s.toStatus(err, "FindAllOrders", "")
		}
		page.Status = st
	}

	result, err := s.orders.FindAll(ctx, page)
	if err != nil {
		return nil, s.toStatus(err, "FindAllOrders", "")
	}

	resp := &ordersv1.FindAllOrdersResponse{
		Data: make([]*ordersv1.Order, 0, len(result.Data)),
		Meta: &ordersv1.PageMeta{
			Total:    result.Meta.Total,
			Page:     int32(result.Meta.Page),     //nolint:gosec // page comes from an int32 request field.
			LastPage: int32(result.Meta.LastPage), //nolint:gosec // bounded by total/limit.
		},
	}
	for _, order := range result.Data {
		resp.Data = append(resp.Data, toWireOrder(order))
	}
	return resp, nil
}

// FindOneOrder возвращает заказ с позициями и названиями товаров.
func (s *OrderService) FindOneOrder(ctx context.Context, req *ordersv1.FindOneOrderRequest) (*ordersv1.Order, error) {
	if req == nil || req.GetID() == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	order, err := s.orders.FindOne(ctx, req.GetID())
	if err != nil {
		return nil, s.toStatus(err, "FindOneOrder", req.GetID())
	}
	return toWireOrder(order), nil
}

// ChangeOrderStatus меняет статус заказа. Повтор с тем же статусом возвращает заказ без изменений.
func (s *OrderService) ChangeOrderStatus(ctx context.Context, req *ordersv1.ChangeOrderStatusRequest) (*ordersv1.Order, error) {
	if req == nil || req.GetID() == "" {
		return nil, status.Error(codes.InvalidArgument, "id is required")
	}

	st, err := domain.ParseOrderStatus(req.GetStatus())
	if err != nil {
		return nil, s.toStatus(err, "ChangeOrderStatus", req.GetID())
	}

	order, err := s.orders.ChangeStatus(ctx, req.GetID(), st)
	if err != nil {
		return nil, s.toStatus(err, "ChangeOrderStatus", req.GetID())
	}
	return toWireOrder(order), nil
}

// toStatus переводит доменную ошибку в gRPC-статус. Внутренние причины наружу не отдаются.
func (s *OrderService) toStatus(err error, operation, orderID string) error {
	code, message := classify(err)

	entry := s.logger.WithError(err).WithField("operation", operation)
	if orderID != "" {
		entry = entry.WithField("order_id", orderID)
	}
	if code == codes.Internal || code == codes.Unavailable {
		entry.WithField("code", code.String()).Error("order operation failed")
	} else {
		entry.WithField("code", code.String()).Warn("order operation rejected")
	}

	return status.Error(code, message)
}

func classify(err error) (codes.Code, string) {
	switch {
	case errors.Is(err, domain.ErrOrderNotFound):
		return codes.NotFound, domain.ErrOrderNotFound.Error()
	case errors.Is(err, domain.ErrUnknownProduct):
		return codes.FailedPrecondition, err.Error()
	case domain.IsValidation(err):
		return codes.InvalidArgument, err.Error()
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return codes.Unavailable, domain.ErrUpstreamUnavailable.Error()
	case errors.Is(err, domain.ErrUpstreamRejected):
		return codes.FailedPrecondition, domain.ErrUpstreamRejected.Error()
	default:
		return codes.Internal, internalErrorMessage
	}
}

func toWireOrder(order domain.Order) *ordersv1.Order {
	out := &ordersv1.Order{
		ID:          order.ID,
		Status:      order.Status.String(),
		TotalAmount: order.TotalAmount,
		TotalItems:  order.TotalItems,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
	if len(order.Items) == 0 {
		return out
	}

	out.Items = make([]*ordersv1.OrderItem, 0, len(order.Items))
	for _, item := range order.Items {
		out.Items = append(out.Items, &ordersv1.OrderItem{
			ProductID: int64(item.ProductID),
			Quantity:  item.Quantity,
			Price:     item.Price,
			Name:      item.Name,
		})
	}
	return out
}
