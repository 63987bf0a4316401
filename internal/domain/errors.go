package domain

import "errors"

var (
	// ErrUpstreamUnavailable — сервис товаров недоступен (таймаут, транспортная ошибка).
	ErrUpstreamUnavailable = errors.New("product service unavailable")
	// ErrUpstreamRejected — сервис товаров вернул прикладную ошибку.
	ErrUpstreamRejected = errors.New("product service rejected request")
	// ErrUnknownProduct — товар из заказа отсутствует в ответе сервиса товаров.
	ErrUnknownProduct = errors.New("unknown product")
	// ErrOrderNotFound возвращается, если заказ не найден в хранилище.
	ErrOrderNotFound = errors.New("order not found")
	// ErrOrderAlreadyExists — заказ с таким идентификатором уже сохранён.
	ErrOrderAlreadyExists = errors.New("order already exists")
	// ErrOrderCreationFailed — непрозрачная серверная ошибка при создании заказа или смене статуса.
	ErrOrderCreationFailed = errors.New("order creation failed")
	// ErrStoreUnavailable — хранилище заказов не ответило на чтение.
	ErrStoreUnavailable = errors.New("order store unavailable")

	// Ошибка отсутствия хотя бы одного товара в заказе.
	ErrItemsRequired = errors.New("order must contain at least one item")
	// Ошибка при некорректном количестве товара (<= 0).
	ErrItemQtyInvalid = errors.New("item quantity must be greater than zero")
	// Ошибка некорректного идентификатора товара.
	ErrProductIDInvalid = errors.New("product id must be positive")
	// Ошибка, если цена позиции отрицательная.
	ErrItemPriceInvalid = errors.New("item price must be non-negative")
	// Ошибка, если общее количество единиц не помещается в int32.
	ErrTotalItemsOverflow = errors.New("total item quantity is too large")
	// Ошибка несоответствия итогов заказа и позиций.
	ErrAmountMismatch = errors.New("order totals do not match items")
	// Ошибка отсутствующего идентификатора заказа.
	ErrOrderIDRequired = errors.New("order id is required")
	// Ошибка статуса вне перечисления.
	ErrInvalidStatus = errors.New("invalid order status")
	// Ошибка page/limit < 1.
	ErrInvalidPagination = errors.New("page and limit must be greater than zero")

	// ErrOutboxPublish — ошибка при публикации сообщения из outbox.
	ErrOutboxPublish = errors.New("outbox publish failed")
)

var validationErrors = []error{
	ErrItemsRequired,
	ErrItemQtyInvalid,
	ErrProductIDInvalid,
	ErrItemPriceInvalid,
	ErrTotalItemsOverflow,
	ErrAmountMismatch,
	ErrOrderIDRequired,
	ErrInvalidStatus,
	ErrInvalidPagination,
}

// IsValidation проверяет, что ошибка относится к проверке входных данных.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsClientFault сообщает, что повтор без изменения запроса не поможет.
func IsClientFault(err error) bool {
	return errors.Is(err, ErrOrderNotFound) ||
		errors.Is(err, ErrUnknownProduct) ||
		IsValidation(err)
}

// IsRetriable сообщает, что вызывающая сторона может безопасно повторить запрос.
func IsRetriable(err error) bool {
	if err == nil || IsClientFault(err) || errors.Is(err, ErrUpstreamRejected) {
		return false
	}
	return errors.Is(err, ErrUpstreamUnavailable) ||
		errors.Is(err, ErrOrderCreationFailed) ||
		errors.Is(err, ErrStoreUnavailable)
}
