package internal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	inErrors "github.com/jhamir14/restaurant/internal/errors"
)

func TestVerifyToken(t *testing.T) {
	secret := "secret"
	admin := Identity{UserID: 1, Username: "admin", IsAdmin: true}

	tests := []struct {
		name        string
		token       func() string
		secret      string
		expected    Identity
		expectedErr error
	}{
		{
			name: "given valid token should return identity",
			token: func() string {
				token, err := SignToken(admin, secret, time.Hour)
				assert.NoError(t, err)
				return token
			},
			secret:   secret,
			expected: admin,
		},
		{
			name: "given token signed with another secret should return invalid token",
			token: func() string {
				token, err := SignToken(admin, "other", time.Hour)
				assert.NoError(t, err)
				return token
			},
			secret:      secret,
			expectedErr: inErrors.ErrTokenInvalid,
		},
		{
			name: "given expired token should return invalid token",
			token: func() string {
				token, err := SignToken(admin, secret, -time.Hour)
				assert.NoError(t, err)
				return token
			},
			secret:      secret,
			expectedErr: inErrors.ErrTokenInvalid,
		},
		{
			name:        "given garbage should return invalid token",
			token:       func() string { return "not-a-token" },
			secret:      secret,
			expectedErr: inErrors.ErrTokenInvalid,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			identity, err := VerifyToken(context.Background(), test.token(), test.secret)
			assert.ErrorIs(t, err, test.expectedErr)
			assert.EqualValues(t, test.expected, identity)
		})
	}
}

func TestDecodeToken(t *testing.T) {
	customer := Identity{UserID: 7, Username: "ana"}
	token, err := SignToken(customer, "whatever", time.Hour)
	assert.NoError(t, err)

	identity, err := DecodeToken(token)
	assert.NoError(t, err)
	assert.EqualValues(t, customer, identity)

	_, err = DecodeToken("x.y.z")
	assert.ErrorIs(t, err, inErrors.ErrTokenInvalid)
}

func TestIdentityFromContext(t *testing.T) {
	_, err := IdentityFromContext(context.Background())
	assert.ErrorIs(t, err, inErrors.ErrUnauthenticated)

	c := AttachIdentity(context.Background(), Identity{UserID: 3})
	identity, err := IdentityFromContext(c)
	assert.NoError(t, err)
	assert.EqualValues(t, 3, identity.UserID)
}
