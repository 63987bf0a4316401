package domain

import "github.com/shopspring/decimal"

// ProductID — идентификатор товара во внешнем каталоге.
type ProductID int64

// ProductSnapshot — состояние товара, полученное от сервиса товаров. Ядро его не изменяет.
type ProductSnapshot struct {
	ID    ProductID
	Name  string
	Price decimal.Decimal
}

// ProductIndex индексирует снимки по идентификатору.
func ProductIndex(products []ProductSnapshot) map[ProductID]ProductSnapshot {
	index := make(map[ProductID]ProductSnapshot, len(products))
	for _, p := range products {
		index[p.ID] = p
	}
	return index
}
