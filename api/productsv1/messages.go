// Пакет productsv1 описывает контракт внешнего сервиса товаров (products.v1.ProductService),
// которым сервис заказов пользуется для проверки позиций.
package productsv1

import "github.com/shopspring/decimal"

// ValidateProductsRequest — команда validate-product.
type ValidateProductsRequest struct {
	IDs []int64 `json:"ids"`
}

// Product — снимок товара в каталоге.
type Product struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// ValidateProductsResponse содержит найденные товары.
type ValidateProductsResponse struct {
	Products []*Product `json:"products"`
}

func (x *ValidateProductsRequest) GetIDs() []int64 {
	if x == nil {
		return nil
	}
	return x.IDs
}

func (x *ValidateProductsResponse) GetProducts() []*Product {
	if x == nil {
		return nil
	}
	return x.Products
}
