// Пакет ordersv1 описывает RPC-контракт сервиса заказов (orders.v1.OrderService).
//
// Сообщения передаются JSON-кодеком из пакета jsoncodec; имена полей совпадают
// с командами create-order, find-all-orders, find-one-order и change-order-status.
package ordersv1

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderItem — позиция во входящей команде create-order.
type CreateOrderItem struct {
	ProductID int64 `json:"productId"`
	Quantity  int32 `json:"quantity"`
}

// CreateOrderRequest — команда create-order.
type CreateOrderRequest struct {
	Items []*CreateOrderItem `json:"items"`
}

// FindAllOrdersRequest — команда find-all-orders. Нулевые page/limit заменяются значениями по умолчанию.
type FindAllOrdersRequest struct {
	Page   int32  `json:"page,omitempty"`
	Limit  int32  `json:"limit,omitempty"`
	Status string `json:"status,omitempty"`
}

// FindOneOrderRequest — команда find-one-order.
type FindOneOrderRequest struct {
	ID string `json:"id"`
}

// ChangeOrderStatusRequest — команда change-order-status.
type ChangeOrderStatusRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// OrderItem — позиция заказа в ответе. Name заполняется только для одиночного заказа.
type OrderItem struct {
	ProductID int64           `json:"productId"`
	Quantity  int32           `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
	Name      string          `json:"name,omitempty"`
}

// Order — заказ в ответе.
type Order struct {
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	TotalItems  int32           `json:"totalItems"`
	Items       []*OrderItem    `json:"items,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// PageMeta — метаданные страницы.
type PageMeta struct {
	Total    int64 `json:"total"`
	Page     int32 `json:"page"`
	LastPage int32 `json:"lastPage"`
}

// FindAllOrdersResponse — ответ find-all-orders.
type FindAllOrdersResponse struct {
	Data []*Order  `json:"data"`
	Meta *PageMeta `json:"meta"`
}

func (x *CreateOrderRequest) GetItems() []*CreateOrderItem {
	if x == nil {
		return nil
	}
	return x.Items
}

func (x *CreateOrderItem) GetProductID() int64 {
	if x == nil {
		return 0
	}
	return x.ProductID
}

func (x *CreateOrderItem) GetQuantity() int32 {
	if x == nil {
		return 0
	}
	return x.Quantity
}

func (x *FindAllOrdersRequest) GetPage() int32 {
	if x == nil {
		return 0
	}
	return x.Page
}

func (x *FindAllOrdersRequest) GetLimit() int32 {
	if x == nil {
		return 0
	}
	return x.Limit
}

func (x *FindAllOrdersRequest) GetStatus() string {
	if x == nil {
		return ""
	}
	return x.Status
}

func (x *FindOneOrderRequest) GetID() string {
	if x == nil {
		return ""
	}
	return x.ID
}

func (x *ChangeOrderStatusRequest) GetID() string {
	if x == nil {
		return ""
	}
	return x.ID
}

func (x *ChangeOrderStatusRequest) GetStatus() string {
	if x == nil {
		return ""
	}
	return x.Status
}

func (x *Order) GetID() string {
	if x == nil {
		return ""
	}
	return x.ID
}

func (x *Order) GetStatus() string {
	if x == nil {
		return ""
	}
	return x.Status
}

func (x *Order) GetItems() []*OrderItem {
	if x == nil {
		return nil
	}
	return x.Items
}

func (x *FindAllOrdersResponse) GetData() []*Order {
	if x == nil {
		return nil
	}
	return x.Data
}

func (x *FindAllOrdersResponse) GetMeta() *PageMeta {
	if x == nil {
		return nil
	}
	return x.Meta
}
