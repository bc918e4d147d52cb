package assets

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_Resolve_cachesAfterFirstLookup(t *testing.T) {
	calls := 0
	p, err := New(func(name string) ([]byte, error) {
		calls++
		return []byte("icon-bytes"), nil
	})
	require.NoError(t, err)

	first, err := p.Resolve("chrome.exe")
	require.NoError(t, err)

	second, err := p.Resolve("chrome.exe")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("icon-bytes")), first)
}

func Test_Resolve_propagatesNotAvailable(t *testing.T) {
	p, err := New(func(name string) ([]byte, error) {
		return nil, &NotAvailableError{ProcessName: name}
	})
	require.NoError(t, err)

	_, err = p.Resolve("ghost.exe")
	require.Error(t, err)
	var notAvail *NotAvailableError
	assert.ErrorAs(t, err, &notAvail)
}

func Test_Resolve_evictsBeyondCacheSize(t *testing.T) {
	calls := map[string]int{}
	p, err := New(func(name string) ([]byte, error) {
		calls[name]++
		return []byte(name), nil
	})
	require.NoError(t, err)

	names := make([]string, cacheSize+8)
	for i := range names {
		names[i] = string(rune('A'+i%26)) + string(rune('0'+i/26))
	}
	for _, name := range names {
		_, err := p.Resolve(name)
		require.NoError(t, err)
	}

	// the very first name should have been evicted by now, so resolving it
	// again costs a second lookup call
	_, err = p.Resolve(names[0])
	require.NoError(t, err)
	assert.Equal(t, 2, calls[names[0]])
}
