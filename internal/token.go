package internal

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/jhamir14/restaurant/internal/constants"
	inErrors "github.com/jhamir14/restaurant/internal/errors"
	"github.com/jhamir14/restaurant/internal/log"
	"github.com/jhamir14/restaurant/internal/otel"
)

// Claims is the bearer token payload. Subject holds the user id.
type Claims struct {
	jwt.RegisteredClaims
	IsAdmin  bool   `json:"is_admin"`
	Username string `json:"username"`
}

type Identity struct {
	UserID   int64
	Username string
	IsAdmin  bool
}

func (c Claims) Identity() (Identity, error) {
	userID, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil || userID <= 0 {
		return Identity{}, fmt.Errorf("failed parsing subject=%s with error=%w", c.Subject, inErrors.ErrTokenInvalid)
	}
	return Identity{UserID: userID, Username: c.Username, IsAdmin: c.IsAdmin}, nil
}

func NewClaims(identity Identity, ttl time.Duration) Claims {
	now := time.Now()
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.UserID, 10),
			Issuer:    constants.Issuer,
			Audience:  jwt.ClaimStrings{constants.AudienceUser},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		IsAdmin:  identity.IsAdmin,
		Username: identity.Username,
	}
}

func SignToken(identity Identity, secret string, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, NewClaims(identity, ttl))
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed signing token with error=%w", err)
	}
	return signed, nil
}

func VerifyToken(c context.Context, token string, secret string) (Identity, error) {
	c, span := otel.Tracer.Start(c, "VerifyToken")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "VerifyToken").
		Str(log.KeyProcess, "parsing claims").
		Logger()

	logger.Trace().Msg("parsing claims")
	claims := Claims{}
	jwtToken, err := jwt.ParseWithClaims(token,
		&claims,
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		},
		jwt.WithAudience(constants.AudienceUser),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(constants.Issuer),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing claims with error=%w", inErrors.ErrTokenInvalid)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Identity{}, err
	}
	if !jwtToken.Valid {
		err = fmt.Errorf("failed validating token with error=%w", inErrors.ErrTokenInvalid)
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Identity{}, err
	}
	logger.Trace().Msg("parsed claims")

	identity, err := claims.Identity()
	if err != nil {
		otel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return Identity{}, err
	}
	return identity, nil
}

// DecodeToken reads the claims without checking the signature. The terminal
// uses it to know who is logged in. The api still verifies every request.
func DecodeToken(token string) (Identity, error) {
	claims := Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(token, &claims)
	if err != nil {
		return Identity{}, fmt.Errorf("failed decoding token with error=%w", inErrors.ErrTokenInvalid)
	}
	return claims.Identity()
}

type identityKey struct{}

func AttachIdentity(c context.Context, identity Identity) context.Context {
	return context.WithValue(c, identityKey{}, identity)
}

func IdentityFromContext(c context.Context) (Identity, error) {
	identity, ok := c.Value(identityKey{}).(Identity)
	if !ok {
		return Identity{}, inErrors.ErrUnauthenticated
	}
	return identity, nil
}
