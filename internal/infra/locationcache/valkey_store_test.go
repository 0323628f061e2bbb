package locationcache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFirstLiveSkipsExpiredEntries(t *testing.T) {
	entries := map[string]string{
		"far": `{"latitude":51.5009,"longitude":-0.1,"name":"Serpentine"}`,
	}
	var dropped []string

	body, ok, err := firstLive(
		[]string{"near", "far"},
		func(member string) (string, bool, error) {
			payload, found := entries[member]
			return payload, found, nil
		},
		func(member string) { dropped = append(dropped, member) },
	)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Serpentine", *body.Name)
	require.Equal(t, []string{"near"}, dropped)
}

func TestFirstLiveMissWhenAllExpired(t *testing.T) {
	var dropped []string
	_, ok, err := firstLive(
		[]string{"a", "b"},
		func(string) (string, bool, error) { return "", false, nil },
		func(member string) { dropped = append(dropped, member) },
	)
	require.NoError(t, err)
	require.False(t, ok)
	require.Equal(t, []string{"a", "b"}, dropped)

	_, ok, err = firstLive(nil, nil, nil)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestFirstLiveStopsOnLoadError(t *testing.T) {
	calls := 0
	_, ok, err := firstLive(
		[]string{"a", "b"},
		func(string) (string, bool, error) {
			calls++
			return "", false, errors.New("connection reset")
		},
		func(string) { t.Fatal("nothing should be dropped on error") },
	)
	require.Error(t, err)
	require.False(t, ok)
	require.Equal(t, 1, calls)
}
