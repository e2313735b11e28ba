package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	inErrors "github.com/jhamir14/restaurant/internal/errors"
	"github.com/jhamir14/restaurant/internal/testutil"
)

func TestProductService(t *testing.T) {
	c := context.Background()
	pool, queries := testutil.RunPostgres(t, c)
	cache := testutil.RunRedis(t, c)
	svc := NewProductService(queries, cache)

	var today time.Time
	require.NoError(t, pool.QueryRow(c, "SELECT CURRENT_DATE::timestamp").Scan(&today))
	svc.now = func() time.Time { return today }

	t.Run("products newest first", func(t *testing.T) {
		products, err := svc.FindProducts(c)
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, []int64{3, 2, 1}, []int64{products[0].ID, products[1].ID, products[2].ID})
	})

	t.Run("product by id is cached", func(t *testing.T) {
		product, err := svc.FindProductById(c, 2)
		require.NoError(t, err)
		assert.Equal(t, "Ceviche", product.Name)
		assert.True(t, decimal.NewFromInt(5).Equal(product.Price))

		exists, err := cache.Exists(c, productKey(2)).Result()
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)

		cached, err := svc.FindProductById(c, 2)
		require.NoError(t, err)
		assert.Equal(t, product.Name, cached.Name)
		assert.True(t, product.Price.Equal(cached.Price))
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := svc.FindProductById(c, 404)
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
	})

	t.Run("menu of the day", func(t *testing.T) {
		menu, err := svc.FindMenuToday(c)
		require.NoError(t, err)
		require.Len(t, menu, 2)
		assert.Equal(t, "Lomo saltado", menu[0].Name)
		assert.Equal(t, "Chicha morada", menu[1].Name)

		svc.now = func() time.Time { return today.AddDate(0, 0, 1) }
		menu, err = svc.FindMenuToday(c)
		require.NoError(t, err)
		assert.Empty(t, menu)
	})
}
