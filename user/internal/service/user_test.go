package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhamir14/restaurant/internal"
	inErrors "github.com/jhamir14/restaurant/internal/errors"
	"github.com/jhamir14/restaurant/internal/testutil"
)

func TestUserService(t *testing.T) {
	c := context.Background()
	pool, queries := testutil.RunPostgres(t, c)
	svc := NewUserService(queries, "secret")

	_, err := pool.Exec(c, "INSERT INTO orders (user_id, total) VALUES (2, 10.00), (2, 5.00)")
	require.NoError(t, err)

	t.Run("customers exclude admins", func(t *testing.T) {
		customers, err := svc.FindCustomers(c)
		require.NoError(t, err)
		require.Len(t, customers, 2)

		assert.Equal(t, "ana", customers[0].Username)
		assert.Equal(t, int64(2), customers[0].Orders)
		require.NotNil(t, customers[0].Address)
		assert.Equal(t, "Av. Arequipa 123", *customers[0].Address)

		assert.Equal(t, "luis", customers[1].Username)
		assert.Equal(t, int64(0), customers[1].Orders)
		assert.Nil(t, customers[1].Phone)
	})

	t.Run("issued token carries the admin claim", func(t *testing.T) {
		token, err := svc.IssueToken(c, 1, time.Hour)
		require.NoError(t, err)

		identity, err := internal.VerifyToken(c, token, "secret")
		require.NoError(t, err)
		assert.Equal(t, internal.Identity{UserID: 1, Username: "admin", IsAdmin: true}, identity)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.IssueToken(c, 99, time.Hour)
		assert.ErrorIs(t, err, inErrors.ErrNotFound)
	})
}
