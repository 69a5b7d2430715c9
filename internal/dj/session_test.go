package dj_test

import (
	"errors"
	"sync"
	"testing"

	"djbot/internal/dj"
	"djbot/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSession(t *testing.T) {
	s := dj.NewSession(7, 700, "user_0123456789abc", domain.Preferences{Tone: "friendly", VoiceSpeed: 1.25})

	assert.Equal(t, int64(7), s.UserID())
	assert.Equal(t, int64(700), s.ChatID())
	assert.Equal(t, "user_0123456789abc", s.DJUserID())
	assert.Equal(t, domain.ActiveStatus(), s.Status())
	assert.Empty(t, s.Queue())
	assert.False(t, s.Pending())
	assert.Nil(t, s.Profile())
	assert.Equal(t, "friendly", s.Preferences().Tone)
}

func TestSession_QueueIsCopy(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.drainer.Submit(f.session, "a"))

	q := f.session.Queue()
	q[0] = "mutated"

	assert.Equal(t, []string{"a"}, f.session.Queue())
}

func TestSession_EntriesHaveUniqueIDs(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.drainer.Submit(f.session, "a"))
	require.NoError(t, f.drainer.Submit(f.session, "b"))
	first := f.session.Entries()
	require.True(t, f.drainer.RemoveByID(f.session, first[1].ID))
	require.NoError(t, f.drainer.Submit(f.session, "c"))

	entries := f.session.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, first[0], entries[0])
	assert.Equal(t, "c", entries[1].Text)
	assert.Greater(t, entries[1].ID, first[1].ID, "ids are never reused")

	entries[0].Text = "mutated"
	assert.Equal(t, []string{"a", "c"}, f.session.Queue())
}

func TestRegistry_GetOrCreate(t *testing.T) {
	r := dj.NewRegistry()
	calls := 0
	create := func() (*dj.Session, error) {
		calls++
		return dj.NewSession(1, 1, "user_a", domain.Preferences{}), nil
	}

	first, err := r.GetOrCreate(1, create)
	require.NoError(t, err)
	second, err := r.GetOrCreate(1, create)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, r.Len())

	got, ok := r.Get(1)
	assert.True(t, ok)
	assert.Same(t, first, got)
}

func TestRegistry_GetOrCreate_Error(t *testing.T) {
	r := dj.NewRegistry()

	s, err := r.GetOrCreate(1, func() (*dj.Session, error) { return nil, errors.New("db down") })

	assert.Error(t, err)
	assert.Nil(t, s)
	assert.Equal(t, 0, r.Len())
}

func TestRegistry_GetOrCreate_Concurrent(t *testing.T) {
	r := dj.NewRegistry()

	var wg sync.WaitGroup
	results := make([]*dj.Session, 20)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, _ := r.GetOrCreate(5, func() (*dj.Session, error) {
				return dj.NewSession(5, 5, "user_x", domain.Preferences{}), nil
			})
			results[i] = s
		}(i)
	}
	wg.Wait()

	for _, s := range results {
		assert.Same(t, results[0], s)
	}
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_SnapshotAndRemove(t *testing.T) {
	r := dj.NewRegistry()
	for _, id := range []int64{3, 1, 2} {
		id := id
		_, err := r.GetOrCreate(id, func() (*dj.Session, error) {
			return dj.NewSession(id, id, "user", domain.Preferences{}), nil
		})
		require.NoError(t, err)
	}

	snap := r.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, int64(1), snap[0].UserID())
	assert.Equal(t, int64(2), snap[1].UserID())
	assert.Equal(t, int64(3), snap[2].UserID())

	r.Remove(2)
	_, ok := r.Get(2)
	assert.False(t, ok)
	assert.Equal(t, 2, r.Len())
}
