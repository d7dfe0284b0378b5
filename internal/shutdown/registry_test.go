package shutdown

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("order", func(t *testing.T) {
		r := NewRegistry()
		var order []int
		for i := range 3 {
			_, err := r.Register(func() {
				order = append(order, i)
			})
			require.NoError(t, err)
		}

		require.Equal(t, 3, r.Len())
		require.Equal(t, 3, r.Execute())
		require.Equal(t, []int{0, 1, 2}, order)
		require.Zero(t, r.Len())
	})

	t.Run("twice", func(t *testing.T) {
		r := NewRegistry()
		calls := 0
		_, err := r.Register(func() { calls++ })
		require.NoError(t, err)
		require.Equal(t, 1, r.Execute())
		require.Zero(t, r.Execute())
		require.Equal(t, 1, calls)
	})

	t.Run("register after execute", func(t *testing.T) {
		r := NewRegistry()
		r.Execute()
		deregister, err := r.Register(func() {})
		require.ErrorIs(t, err, ErrClosed)
		require.Nil(t, deregister)
		require.Zero(t, r.Len())
	})

	t.Run("register from callback", func(t *testing.T) {
		r := NewRegistry()
		var err error
		_, regErr := r.Register(func() {
			_, err = r.Register(func() {})
		})
		require.NoError(t, regErr)

		require.Equal(t, 1, r.Execute())
		require.ErrorIs(t, err, ErrClosed)
	})

	t.Run("concurrent", func(t *testing.T) {
		r := NewRegistry()
		var (
			wg       sync.WaitGroup
			mu       sync.Mutex
			accepted int
			executed int
		)

		for range 100 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := r.Register(func() {
					mu.Lock()
					executed++
					mu.Unlock()
				})
				if err == nil {
					mu.Lock()
					accepted++
					mu.Unlock()
				}
			}()
		}

		wg.Wait()
		require.Equal(t, 100, r.Execute())
		require.Equal(t, accepted, executed)
	})

	t.Run("deregister", func(t *testing.T) {
		r := NewRegistry()
		var called []string
		_, err := r.Register(func() { called = append(called, "first") })
		require.NoError(t, err)
		deregister, err := r.Register(func() { called = append(called, "second") })
		require.NoError(t, err)
		_, err = r.Register(func() { called = append(called, "third") })
		require.NoError(t, err)

		deregister()
		deregister()
		require.Equal(t, 2, r.Len())
		require.Equal(t, 2, r.Execute())
		require.Equal(t, []string{"first", "third"}, called)
	})

	t.Run("deregister from callback", func(t *testing.T) {
		r := NewRegistry()
		var deregister func()
		deregister, err := r.Register(func() { deregister() })
		require.NoError(t, err)
		require.Equal(t, 1, r.Execute())
		require.Zero(t, r.Len())
	})
}
