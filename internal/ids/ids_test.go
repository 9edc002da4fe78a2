package ids

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewIsMonotonic(t *testing.T) {
	now := time.Now()
	got := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		got = append(got, NewAt(now))
	}
	require.True(t, sort.StringsAreSorted(got))
	require.Len(t, got[0], 26)
}
