package confirm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(ttl time.Duration) (*Store, *time.Time) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	s := NewStore(ttl)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestConfirmWithinTTL(t *testing.T) {
	s, now := newTestStore(5 * time.Minute)

	token, err := s.Begin("user:1")
	require.NoError(t, err)
	assert.Len(t, token, 16)
	state, left := s.Status("user:1")
	assert.Equal(t, StateAwaiting, state)
	assert.Equal(t, 5*time.Minute, left)

	*now = now.Add(4 * time.Minute)
	_, left = s.Status("user:1")
	assert.Equal(t, time.Minute, left)
	assert.Equal(t, StateConfirmed, s.Confirm("user:1", token))
	state, _ = s.Status("user:1")
	assert.Equal(t, StateExpired, state, "token is single use")
	assert.Equal(t, StateExpired, s.Confirm("user:1", token))
}

func TestConfirmAfterTTL(t *testing.T) {
	s, now := newTestStore(time.Minute)

	token, err := s.Begin("user:1")
	require.NoError(t, err)

	*now = now.Add(time.Minute)
	state, _ := s.Status("user:1")
	assert.Equal(t, StateExpired, state)
	assert.Equal(t, StateExpired, s.Confirm("user:1", token))
}

func TestConfirmWrongToken(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	_, err := s.Begin("user:1")
	require.NoError(t, err)

	assert.Equal(t, StateExpired, s.Confirm("user:1", "deadbeef"))
	state, _ := s.Status("user:1")
	assert.Equal(t, StateExpired, state, "a wrong token restarts the flow")
}

func TestBeginReplacesPendingToken(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	first, err := s.Begin("user:1")
	require.NoError(t, err)
	second, err := s.Begin("user:1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	assert.Equal(t, StateExpired, s.Confirm("user:1", first))
}

func TestKeysAreIndependent(t *testing.T) {
	s, _ := newTestStore(time.Minute)

	a, err := s.Begin("user:1")
	require.NoError(t, err)
	_, err = s.Begin("user:2")
	require.NoError(t, err)

	assert.Equal(t, StateConfirmed, s.Confirm("user:1", a))
	state, _ := s.Status("user:2")
	assert.Equal(t, StateAwaiting, state)
}

func TestExpiredEntriesEvicted(t *testing.T) {
	s := NewStore(10 * time.Millisecond)

	_, err := s.Begin("user:1")
	require.NoError(t, err)
	time.Sleep(30 * time.Millisecond)

	_, err = s.Begin("user:2")
	require.NoError(t, err)
	assert.Equal(t, 1, s.pending.Len())
	assert.Nil(t, s.pending.Get("user:1"))
}
