package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	inErrors "github.com/jhamir14/restaurant/internal/errors"
	"github.com/jhamir14/restaurant/internal/log"
	inOtel "github.com/jhamir14/restaurant/internal/otel"
	"github.com/jhamir14/restaurant/internal/repository"
	"github.com/jhamir14/restaurant/product/internal/otel"
	"github.com/jhamir14/restaurant/product/pkg/response"
)

const productTTL = 10 * time.Minute

type ProductService struct {
	queries *repository.Queries
	cache   *redis.Client
	now     func() time.Time
}

func NewProductService(queries *repository.Queries, cache *redis.Client) ProductService {
	return ProductService{queries: queries, cache: cache, now: time.Now}
}

func productKey(id int64) string {
	return fmt.Sprintf("products:%d", id)
}

func (svc ProductService) FindProducts(c context.Context) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProducts")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "ProductService FindProducts").Logger()

	logger = logger.With().Str(log.KeyProcess, "finding products in database").Logger()
	logger.Trace().Msg("finding products in database")
	products, err := svc.queries.FindProducts(c)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("count", len(products)).Msg("found products in database")

	return responses(products), nil
}

func (svc ProductService) FindProductById(c context.Context, id int64) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById", trace.WithAttributes(attribute.Int64(log.KeyProductID, id)))
	defer span.End()

	cacheKey := productKey(id)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyCacheKey, cacheKey).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product in cache").Logger()
	logger.Trace().Msg("finding product in cache")
	cached, err := svc.cache.Get(c, cacheKey).Bytes()
	if err == nil {
		product := response.Product{}
		if err = json.Unmarshal(cached, &product); err == nil {
			span.AddEvent("found product in cache")
			logger.Trace().Msg("found product in cache")
			return product, nil
		}
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn().Err(err).Msg("failed finding product in cache")
	}

	logger = logger.With().Str(log.KeyProcess, "finding product in database").Logger()
	logger.Trace().Msg("finding product in database")
	found, err := svc.queries.FindProductById(c, id)
	if errors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed finding product with error=%w", inErrors.New(inErrors.ErrNotFound, "Producto no existe"))
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	product := found.Response()
	logger.Info().Msg("found product in database")

	if encoded, err := json.Marshal(product); err == nil {
		if err = svc.cache.Set(c, cacheKey, encoded, productTTL).Err(); err != nil {
			logger.Warn().Err(err).Msg("failed caching product")
		}
	}

	return product, nil
}

// FindMenuToday lists the products on the menu for the current local date.
func (svc ProductService) FindMenuToday(c context.Context) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindMenuToday")
	defer span.End()

	now := svc.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindMenuToday").
		Str("menu_date", today.Format(time.DateOnly)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding menu in database").Logger()
	logger.Trace().Msg("finding menu in database")
	products, err := svc.queries.FindMenuByDate(c, pgtype.Date{Time: today, Valid: true})
	if err != nil {
		err = fmt.Errorf("failed finding menu with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Info().Int("count", len(products)).Msg("found menu in database")

	return responses(products), nil
}

func responses(products []repository.Product) []response.Product {
	result := make([]response.Product, 0, len(products))
	for _, product := range products {
		result = append(result, product.Response())
	}
	return result
}
