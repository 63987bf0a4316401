// Пакет product содержит клиента сервиса товаров и статический каталог для локального запуска.
package product

import (
	"context"
	"errors"
	"fmt"
	"time"

	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/orders/api/jsoncodec"
	"github.com/vladislavdragonenkov/orders/api/productsv1"
	"github.com/vladislavdragonenkov/orders/internal/domain"
)

const defaultTimeout = 5 * time.Second

// Результаты вызова для метрик.
const (
	ResultOK          = "ok"
	ResultUnavailable = "unavailable"
	ResultRejected    = "rejected"
)

// Observer получает длительность каждого вызова validate-product.
type Observer interface {
	ObserveProductValidation(result string, duration time.Duration)
}

// ClientOptions задаёт параметры клиента.
type ClientOptions struct {
	Logger   *log.Entry
	Timeout  time.Duration
	Observer Observer
}

// Option настраивает Client.
type Option func(*ClientOptions)

// WithLogger задаёт logger клиента.
func WithLogger(logger *log.Entry) Option {
	return func(o *ClientOptions) {
		o.Logger = logger
	}
}

// WithTimeout ограничивает длительность одного вызова. Ноль отключает собственный таймаут.
func WithTimeout(timeout time.Duration) Option {
	return func(o *ClientOptions) {
		o.Timeout = timeout
	}
}

// WithObserver подключает сбор метрик.
func WithObserver(observer Observer) Option {
	return func(o *ClientOptions) {
		o.Observer = observer
	}
}

// Client вызывает validate-product у сервиса товаров.
type Client struct {
	rpc      productsv1.ProductServiceClient
	conn     *grpc.ClientConn
	logger   *log.Entry
	timeout  time.Duration
	observer Observer
}

// NewClient создаёт клиента поверх готового соединения.
func NewClient(cc grpc.ClientConnInterface, options ...Option) *Client {
	opts := ClientOptions{Timeout: defaultTimeout}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "product-client")
	}
	if opts.Timeout < 0 {
		opts.Timeout = 0
	}

	client := &Client{
		rpc:      productsv1.NewProductServiceClient(cc),
		logger:   logger,
		timeout:  opts.Timeout,
		observer: opts.Observer,
	}
	if conn, ok := cc.(*grpc.ClientConn); ok {
		client.conn = conn
	}
	return client
}

// Dial открывает соединение с сервисом товаров. Соединение ленивое: адрес не проверяется до первого вызова.
func Dial(addr string, options ...Option) (*Client, error) {
	if addr == "" {
		return nil, errors.New("product service address is empty")
	}

	conn, err := grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(grpc_prometheus.UnaryClientInterceptor),
		jsoncodec.DialOption(),
	)
	if err != nil {
		return nil, fmt.Errorf("dial product service %s: %w", addr, err)
	}

	return NewClient(conn, options...), nil
}

// Validate запрашивает снимки товаров одним вызовом.
func (c *Client) Validate(ctx context.Context, ids []domain.ProductID) ([]domain.ProductSnapshot, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req := &productsv1.ValidateProductsRequest{IDs: make([]int64, 0, len(ids))}
	for _, id := range ids {
		req.IDs = append(req.IDs, int64(id))
	}

	started := time.Now()
	resp, err := c.rpc.ValidateProducts(ctx, req)
	if err != nil {
		mapped := classify(err)
		c.observe(resultOf(mapped), started)
		c.logger.WithError(err).WithField("product_ids", req.IDs).Warn("validate-product call failed")
		return nil, mapped
	}
	c.observe(ResultOK, started)

	products := make([]domain.ProductSnapshot, 0, len(resp.GetProducts()))
	for _, p := range resp.GetProducts() {
		if p == nil {
			continue
		}
		products = append(products, domain.ProductSnapshot{
			ID:    domain.ProductID(p.ID),
			Name:  p.Name,
			Price: p.Price,
		})
	}
	return products, nil
}

// Check сообщает об ошибке, если соединение в состоянии TransientFailure или закрыто.
func (c *Client) Check(context.Context) error {
	if c.conn == nil {
		return nil
	}
	switch state := c.conn.GetState(); state {
	case connectivity.TransientFailure, connectivity.Shutdown:
		return fmt.Errorf("%w: connection state %s", domain.ErrUpstreamUnavailable, state)
	case connectivity.Idle:
		c.conn.Connect()
	}
	return nil
}

// Close закрывает соединение, если клиент им владеет.
func (c *Client) Close() error {
	if c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

func (c *Client) observe(result string, started time.Time) {
	if c.observer != nil {
		c.observer.ObserveProductValidation(result, time.Since(started))
	}
}

// classify сводит ошибку вызова к ErrUpstreamUnavailable или ErrUpstreamRejected.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}

	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%w: %w", domain.ErrUpstreamUnavailable, err)
	}
	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled, codes.ResourceExhausted, codes.Aborted:
		return fmt.Errorf("%w: %s", domain.ErrUpstreamUnavailable, st.Message())
	default:
		return fmt.Errorf("%w: %s: %s", domain.ErrUpstreamRejected, st.Code(), st.Message())
	}
}

func resultOf(err error) string {
	if errors.Is(err, domain.ErrUpstreamRejected) {
		return ResultRejected
	}
	return ResultUnavailable
}

var _ domain.ProductValidator = (*Client)(nil)
