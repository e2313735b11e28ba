package remotetest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jhamir14/restaurant/internal"
	"github.com/jhamir14/restaurant/terminal/internal/session"
)

// Login signs a token for the known user id, logs s in with it and makes the
// remote act as that user.
func Login(t testing.TB, s *session.Session, r *Remote, userID int64) session.Identity {
	t.Helper()

	r.mu.Lock()
	u, ok := r.users[userID]
	r.mu.Unlock()
	require.True(t, ok, "unknown user %d", userID)

	token, err := internal.SignToken(internal.Identity{UserID: userID, Username: u.name, IsAdmin: u.isAdmin}, "remotetest", time.Hour)
	require.NoError(t, err)
	identity, err := s.Login(token)
	require.NoError(t, err)
	r.ActAs(userID)
	return identity
}

// Seeded returns a remote with the restaurant's demo catalog, an admin (1) and
// two customers, Ana (2) and Luis (3).
func Seeded() *Remote {
	r := New()
	r.AddUser(1, "admin", true)
	r.AddUser(2, "Ana Quispe", false)
	r.AddUser(3, "Luis Rojas", false)
	r.AddProduct(1, "Lomo saltado", "10.50")
	r.AddProduct(2, "Ají de gallina", "12.00")
	r.AddProduct(3, "Chicha morada", "4.00")
	return r
}
