// Package api is the terminal's HTTP client for the restaurant api.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	cartRequest "github.com/jhamir14/restaurant/cart/pkg/request"
	cartResponse "github.com/jhamir14/restaurant/cart/pkg/response"
	inErrors "github.com/jhamir14/restaurant/internal/errors"
	inHttp "github.com/jhamir14/restaurant/internal/http"
	"github.com/jhamir14/restaurant/internal/log"
	inOtel "github.com/jhamir14/restaurant/internal/otel"
	orderRequest "github.com/jhamir14/restaurant/order/pkg/request"
	orderResponse "github.com/jhamir14/restaurant/order/pkg/response"
	productResponse "github.com/jhamir14/restaurant/product/pkg/response"
	"github.com/jhamir14/restaurant/terminal/internal/otel"
	userResponse "github.com/jhamir14/restaurant/user/pkg/response"
)

// TokenSource supplies the bearer token of the current session. An empty
// token sends no Authorization header.
type TokenSource interface {
	Token() string
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

func NewClient(baseURL string, timeout time.Duration, tokens TokenSource) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   timeout,
		},
		tokens: tokens,
	}
}

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"statusCode"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
}

// do sends body as JSON and decodes the envelope data into out. Non 2xx
// answers come back as *errors.ResponseError carrying the server message.
func (cl *Client) do(c context.Context, method string, path string, body any, out any) error {
	c, span := otel.Tracer.Start(c, "Client do", trace.WithAttributes(
		attribute.String(log.KeyMethod, method),
		attribute.String(log.KeyPath, path),
	))
	defer span.End()

	requestID := log.RequestIDFromContext(c)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	logger := zerolog.Ctx(c).With().
		Str(log.KeyTag, "Client do").
		Str(log.KeyMethod, method).
		Str(log.KeyPath, path).
		Str(log.KeyRequestID, requestID).
		Logger()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			err = fmt.Errorf("failed encoding request body with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return err
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(c, method, cl.baseURL+path, reader)
	if err != nil {
		err = fmt.Errorf("failed creating request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	req.Header.Set(inHttp.KeyHeaderRequestID, requestID)
	if body != nil {
		req.Header.Set(inHttp.KeyHeaderContentType, inHttp.ValueHeaderApplicationJson)
	}
	if cl.tokens != nil {
		if token := cl.tokens.Token(); token != "" {
			req.Header.Set(inHttp.KeyHeaderAuthorization, inHttp.BearerPrefix+token)
		}
	}

	logger.Trace().Msg("sending request")
	res, err := cl.http.Do(req)
	if err != nil {
		err = fmt.Errorf("failed sending request with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer res.Body.Close()
	logger = logger.With().Int(log.KeyStatusCode, res.StatusCode).Logger()
	logger.Trace().Msg("received response")

	env := envelope{}
	decodeErr := json.NewDecoder(res.Body).Decode(&env)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		err = &inErrors.ResponseError{StatusCode: res.StatusCode, Message: env.Message}
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if out == nil {
		return nil
	}
	if decodeErr != nil {
		err = fmt.Errorf("failed decoding response with error=%w", decodeErr)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err = json.Unmarshal(env.Data, out); err != nil {
		err = fmt.Errorf("failed decoding response data with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}

func (cl *Client) GetCart(c context.Context) (cartResponse.Cart, error) {
	cart := cartResponse.Cart{}
	err := cl.do(c, http.MethodGet, "/api/cart/", nil, &cart)
	return cart, err
}

func (cl *Client) AddCartItem(c context.Context, param cartRequest.AddCartItem) (cartResponse.AddedItem, error) {
	added := cartResponse.AddedItem{}
	err := cl.do(c, http.MethodPost, "/api/cart/", param, &added)
	return added, err
}

func (cl *Client) UpdateCartItem(c context.Context, itemID int64, param cartRequest.UpdateCartItem) error {
	return cl.do(c, http.MethodPut, fmt.Sprintf("/api/cart/%d", itemID), param, nil)
}

func (cl *Client) RemoveCartItem(c context.Context, itemID int64) error {
	return cl.do(c, http.MethodDelete, fmt.Sprintf("/api/cart/%d", itemID), nil, nil)
}

func (cl *Client) Checkout(c context.Context, param cartRequest.Checkout) (cartResponse.CheckoutResult, error) {
	result := cartResponse.CheckoutResult{}
	err := cl.do(c, http.MethodPost, "/api/cart/checkout", param, &result)
	return result, err
}

func (cl *Client) FindOrders(c context.Context) ([]orderResponse.Order, error) {
	orders := []orderResponse.Order{}
	err := cl.do(c, http.MethodGet, "/api/orders/", nil, &orders)
	return orders, err
}

func (cl *Client) FindOrderHistory(c context.Context) ([]orderResponse.Order, error) {
	orders := []orderResponse.Order{}
	err := cl.do(c, http.MethodGet, "/api/orders/history", nil, &orders)
	return orders, err
}

func (cl *Client) UpdateOrderStatus(c context.Context, orderID int64, param orderRequest.UpdateStatus) (orderResponse.StatusUpdated, error) {
	updated := orderResponse.StatusUpdated{}
	err := cl.do(c, http.MethodPut, fmt.Sprintf("/api/orders/%d/status", orderID), param, &updated)
	return updated, err
}

func (cl *Client) CreateOrder(c context.Context, param orderRequest.CreateOrder) (orderResponse.Created, error) {
	created := orderResponse.Created{}
	err := cl.do(c, http.MethodPost, "/api/admin/orders", param, &created)
	return created, err
}

func (cl *Client) FindProducts(c context.Context) ([]productResponse.Product, error) {
	products := []productResponse.Product{}
	err := cl.do(c, http.MethodGet, "/api/products/", nil, &products)
	return products, err
}

func (cl *Client) FindMenuToday(c context.Context) ([]productResponse.Product, error) {
	products := []productResponse.Product{}
	err := cl.do(c, http.MethodGet, "/api/menu/today", nil, &products)
	return products, err
}

func (cl *Client) FindCustomers(c context.Context) ([]userResponse.Customer, error) {
	customers := []userResponse.Customer{}
	err := cl.do(c, http.MethodGet, "/api/admin/users/", nil, &customers)
	return customers, err
}
