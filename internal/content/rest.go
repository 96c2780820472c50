package content

import (
	"context"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"contentadmin/internal/apiclient"
	"contentadmin/internal/jsonutil"
	"contentadmin/internal/resource"
)

// Transport is the subset of *apiclient.Client the REST clients use.
type Transport interface {
	Get(ctx context.Context, path string, opts ...apiclient.RequestOption) (*apiclient.Response, error)
	Post(ctx context.Context, path string, body apiclient.Body, opts ...apiclient.RequestOption) (*apiclient.Response, error)
	Put(ctx context.Context, path string, body apiclient.Body, opts ...apiclient.RequestOption) (*apiclient.Response, error)
	Delete(ctx context.Context, path string, opts ...apiclient.RequestOption) (*apiclient.Response, error)
}

var _ Transport = (*apiclient.Client)(nil)

// contract is one resource's wire contract: paths and the envelope
// normalization for its responses.
type contract[T resource.Identifiable, P Payload] struct {
	name string

	listPath  string
	listQuery func(page, limit int) url.Values
	// decodeList turns a list response into a page. page and limit are the
	// requested values.
	decodeList func(body []byte, page, limit int) (resource.Page[T], error)

	getPath    func(id string) string
	createPath string
	updatePath func(id string) string
	deletePath func(id string) string

	// onePaths are the envelope locations of a single item, tried in order.
	onePaths []string

	// prepare adjusts a payload before it is validated and sent.
	prepare func(P) P
}

// RESTClient implements resource.Client over a wire contract.
type RESTClient[T resource.Identifiable, P Payload] struct {
	transport Transport
	contract  contract[T, P]
	logger    *zap.Logger
}

var (
	_ resource.Client[Category, CategoryInput]       = (*RESTClient[Category, CategoryInput])(nil)
	_ resource.Client[SubCategory, SubCategoryInput] = (*RESTClient[SubCategory, SubCategoryInput])(nil)
	_ resource.Client[Blog, BlogInput]               = (*RESTClient[Blog, BlogInput])(nil)
)

func (c *RESTClient[T, P]) List(ctx context.Context, page, limit int) (resource.Page[T], error) {
	var opts []apiclient.RequestOption
	if c.contract.listQuery != nil {
		opts = append(opts, apiclient.WithQuery(c.contract.listQuery(page, limit)))
	}
	resp, err := c.transport.Get(ctx, c.contract.listPath, opts...)
	if err != nil {
		return resource.Page[T]{}, err
	}
	p, err := c.contract.decodeList(resp.Body, page, limit)
	if err != nil {
		c.logger.Warn("malformed list response", zap.String("resource", c.contract.name), zap.Error(err))
		return resource.Page[T]{}, resource.ServerError(resp.Status, "malformed "+c.contract.name+" list response")
	}
	return p.Clamp(), nil
}

func (c *RESTClient[T, P]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	resp, err := c.transport.Get(ctx, c.contract.getPath(id))
	if err != nil {
		return zero, err
	}
	var item T
	if err := jsonutil.DecodeFirst(resp.Body, &item, c.contract.name, c.contract.onePaths...); err != nil {
		c.logger.Warn("malformed item response", zap.String("resource", c.contract.name), zap.Error(err))
		return zero, resource.ServerError(resp.Status, "malformed "+c.contract.name+" response")
	}
	return item, nil
}

func (c *RESTClient[T, P]) Create(ctx context.Context, payload P) (T, error) {
	var zero T
	if c.contract.prepare != nil {
		payload = c.contract.prepare(payload)
	}
	if err := payload.Validate(true); err != nil {
		return zero, err
	}
	resp, err := c.transport.Post(ctx, c.contract.createPath, apiclient.FormBody(payload.Form()))
	if err != nil {
		return zero, err
	}
	return c.decodeMutation(resp), nil
}

func (c *RESTClient[T, P]) Update(ctx context.Context, id string, payload P) (T, error) {
	var zero T
	if c.contract.prepare != nil {
		payload = c.contract.prepare(payload)
	}
	if err := payload.Validate(false); err != nil {
		return zero, err
	}
	resp, err := c.transport.Put(ctx, c.contract.updatePath(id), apiclient.FormBody(payload.Form()))
	if err != nil {
		return zero, err
	}
	item := c.decodeMutation(resp)
	return item, nil
}

func (c *RESTClient[T, P]) Delete(ctx context.Context, id string) error {
	_, err := c.transport.Delete(ctx, c.contract.deletePath(id))
	return err
}

// decodeMutation reads the created or updated item. Servers that answer a
// mutation with only a message yield the zero value.
func (c *RESTClient[T, P]) decodeMutation(resp *apiclient.Response) T {
	var item T
	if err := jsonutil.DecodeFirst(resp.Body, &item, c.contract.name, c.contract.onePaths...); err != nil {
		c.logger.Debug("mutation response without item", zap.String("resource", c.contract.name))
	}
	return item
}

// pageQuery is the page/limit query used by the paginated list endpoints.
func pageQuery(page, limit int) url.Values {
	return url.Values{
		"page":  {strconv.Itoa(page)},
		"limit": {strconv.Itoa(limit)},
	}
}

// decodeServerPage normalizes {data: {<itemsKey>: [...], total, page, limit}}.
// The server's totalPages is ignored; metadata is always derived. When total
// is missing it is inferred from the page position.
func decodeServerPage[T any](body []byte, itemsKey string, page, limit int) (resource.Page[T], error) {
	raw, _, ok := jsonutil.FirstOf(body, "data."+itemsKey, "data.data", "data", itemsKey)
	if !ok {
		return resource.Page[T]{Items: []T{}, PageNumber: page, PageSize: limit}, nil
	}
	items, err := jsonutil.UnmarshalArrayAllowEmpty[T](raw, itemsKey)
	if err != nil {
		return resource.Page[T]{}, err
	}
	total, ok := jsonutil.IntAt(body, "data.total")
	if !ok {
		total, ok = jsonutil.IntAt(body, "pagination.total")
	}
	if !ok {
		total = (page-1)*limit + len(items)
	}
	return resource.Page[T]{Items: items, PageNumber: page, PageSize: limit, TotalItems: total}, nil
}

// Option configures a REST client.
type Option func(*clientOptions)

type clientOptions struct {
	logger *zap.Logger
}

func WithLogger(l *zap.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

func newRESTClient[T resource.Identifiable, P Payload](t Transport, c contract[T, P], opts []Option) *RESTClient[T, P] {
	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return &RESTClient[T, P]{transport: t, contract: c, logger: o.logger}
}
