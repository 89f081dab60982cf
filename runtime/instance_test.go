package runtime

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextUniqueIdStrictlyIncreasesUnderConcurrency(t *testing.T) {
	const n = 1000
	ids := make([]uint32, n)

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			ids[i] = NextUniqueId()
		}(i)
	}
	wg.Wait()

	next := NextUniqueId()
	seen := make(map[uint32]bool, n)
	for _, id := range ids {
		require.False(t, seen[id], "id %d produced twice", id)
		require.Less(t, id, next, "id %d not below a later call's id %d", id, next)
		seen[id] = true
	}
}

func TestInstanceShutdownOrder(t *testing.T) {
	var order []string
	inst, err := New(WithDebugServer(&recordingDebugServer{order: &order}))
	require.NoError(t, err)
	require.Equal(t, []string{"start"}, order)

	require.NoError(t, inst.Shutdown())
	require.Equal(t, []string{"start", "stop"}, order)

	// Idempotent: a second Shutdown must not re-invoke Stop.
	require.NoError(t, inst.Shutdown())
	require.Equal(t, []string{"start", "stop"}, order)
}

type recordingDebugServer struct {
	order *[]string
}

func (r *recordingDebugServer) Start() error {
	*r.order = append(*r.order, "start")
	return nil
}

func (r *recordingDebugServer) Stop() error {
	*r.order = append(*r.order, "stop")
	return nil
}
