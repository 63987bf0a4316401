package domain

const (
	// DefaultPage — номер страницы по умолчанию.
	DefaultPage = 1
	// DefaultLimit — размер страницы по умолчанию.
	DefaultLimit = 10
)

// PaginationRequest задаёт окно выборки и необязательный фильтр по статусу.
type PaginationRequest struct {
	Page   int
	Limit  int
	Status OrderStatus
}

// WithDefaults подставляет значения по умолчанию вместо нулевых page/limit.
func (p PaginationRequest) WithDefaults() PaginationRequest {
	if p.Page == 0 {
		p.Page = DefaultPage
	}
	if p.Limit == 0 {
		p.Limit = DefaultLimit
	}
	return p
}

// Validate проверяет page >= 1, limit >= 1 и допустимость статуса.
func (p PaginationRequest) Validate() error {
	if p.Page < 1 || p.Limit < 1 {
		return ErrInvalidPagination
	}
	if p.Status != "" && !p.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Offset возвращает количество пропускаемых записей.
func (p PaginationRequest) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Filter возвращает фильтр хранилища для запроса.
func (p PaginationRequest) Filter() OrderFilter {
	return OrderFilter{Status: p.Status}
}

// PageMeta — метаданные страницы.
type PageMeta struct {
	Total    int64
	Page     int
	LastPage int
}

// PaginationResult — страница заказов.
type PaginationResult struct {
	Data []Order
	Meta PageMeta
}

// LastPage возвращает ceil(total / limit); для пустой выборки это 0.
func LastPage(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	l := int64(limit)
	return int((total + l - 1) / l)
}

// NewPaginationResult собирает страницу из данных и общего количества.
func NewPaginationResult(data []Order, total int64, req PaginationRequest) PaginationResult {
	if data == nil {
		data = []Order{}
	}
	return PaginationResult{
		Data: data,
		Meta: PageMeta{
			Total:    total,
			Page:     req.Page,
			LastPage: LastPage(total, req.Limit),
		},
	}
}
