package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(Options{MaxUsers: 100})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s
}

func ptr(s string) *string { return &s }

func TestGetReturnsIdleForUnknownUser(t *testing.T) {
	s := newTestStore(t)

	sess := s.Get(1)
	assert.Equal(t, Idle, sess.State)
	assert.True(t, sess.Draft.Empty())
	assert.False(t, sess.AwaitingAnswer)
	assert.Equal(t, 0, s.Len())
}

func TestSetGetClear(t *testing.T) {
	s := newTestStore(t)

	s.Set(1, Session{State: AwaitingProject, Draft: Draft{Name: ptr("Ann")}})
	got := s.Get(1)
	require.Equal(t, AwaitingProject, got.State)
	require.NotNil(t, got.Draft.Name)
	assert.Equal(t, "Ann", *got.Draft.Name)
	assert.Equal(t, Idle, s.Get(2).State)

	s.Clear(1)
	assert.Equal(t, Session{State: Idle}, s.Get(1))
}

func TestNewStoreValidatesOptions(t *testing.T) {
	_, err := NewStore(Options{})
	require.Error(t, err)

	_, err = NewStore(Options{MaxUsers: 1, IdleTTL: -time.Second})
	require.Error(t, err)

	s, err := NewStore(Options{MaxUsers: 10, IdleTTL: time.Minute})
	require.NoError(t, err)
	s.Close()
}

func TestStateHelpers(t *testing.T) {
	for _, st := range []State{Idle, AwaitingName, AwaitingProject, AwaitingBudget, AwaitingAnswer} {
		assert.True(t, st.Valid(), st)
	}
	assert.False(t, State("done").Valid())
	assert.True(t, AwaitingBudget.InDialog())
	assert.False(t, Idle.InDialog())
	assert.False(t, AwaitingAnswer.InDialog())
}

func TestLockSerializesSameUser(t *testing.T) {
	s := newTestStore(t)

	const workers = 50
	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := s.Lock(7)
			defer unlock()
			sess := s.Get(7)
			counter++
			sess.UpdatedAt = time.Unix(int64(counter), 0)
			s.Set(7, sess)
		}()
	}
	wg.Wait()
	assert.Equal(t, workers, counter)
	assert.Equal(t, int64(workers), s.Get(7).UpdatedAt.Unix())
}

func TestLockDoesNotBlockOtherUsers(t *testing.T) {
	s := newTestStore(t)

	unlock := s.Lock(1)
	defer unlock()

	done := make(chan struct{})
	go func() {
		release := s.Lock(257)
		release()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("user 257 waited for user 1")
	}
}

func TestLockReleasesIdleEntries(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(uid int64) {
			defer wg.Done()
			s.Lock(uid)()
		}(int64(i % 4))
	}
	wg.Wait()
	assert.Zero(t, s.lockCount())
}
