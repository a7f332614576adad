package registry

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	t.Run("lookup of unset name is absent", func(t *testing.T) {
		r := New()
		r.Track("conn-1")

		name, ok := r.Lookup("conn-1")
		require.False(t, ok)
		require.Empty(t, name)

		_, ok = r.Lookup("unknown")
		require.False(t, ok)
		require.Equal(t, 1, r.Len())
	})

	t.Run("last write wins", func(t *testing.T) {
		r := New()
		r.SetDisplayName("conn-1", "judge")
		r.SetDisplayName("conn-1", "magnus")

		name, ok := r.Lookup("conn-1")
		require.True(t, ok)
		require.Equal(t, "magnus", name)
	})

	t.Run("duplicate names across connections", func(t *testing.T) {
		r := New()
		r.SetDisplayName("conn-1", "judge")
		r.SetDisplayName("conn-2", "judge")

		a, _ := r.Lookup("conn-1")
		b, _ := r.Lookup("conn-2")
		require.Equal(t, a, b)
	})

	t.Run("track keeps an existing name", func(t *testing.T) {
		r := New()
		r.SetDisplayName("conn-1", "judge")
		r.Track("conn-1")

		name, ok := r.Lookup("conn-1")
		require.True(t, ok)
		require.Equal(t, "judge", name)
	})

	t.Run("remove is idempotent", func(t *testing.T) {
		r := New()
		r.SetDisplayName("conn-1", "judge")

		r.Remove("conn-1")
		r.Remove("conn-1")
		r.Remove("never-seen")

		_, ok := r.Lookup("conn-1")
		require.False(t, ok)
		require.Zero(t, r.Len())
	})
}

func TestRegistryConcurrentAccess(t *testing.T) {
	r := New()
	wg := sync.WaitGroup{}

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("conn-%d", i)
			r.SetDisplayName(id, id)
			name, ok := r.Lookup(id)
			require.True(t, ok)
			require.Equal(t, id, name)
			r.Remove(id)
		}(i)
	}

	wg.Wait()
	require.Zero(t, r.Len())
}
