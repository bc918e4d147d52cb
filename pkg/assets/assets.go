// Package assets is the icon asset provider (C11): it resolves a process
// name to base64-encoded icon bytes, backed by a bounded LRU cache in front
// of a pluggable, potentially slow OS lookup.
package assets

import (
	"encoding/base64"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheSize is the number of resolved icons kept in memory, per spec.md §4.11.
const cacheSize = 64

// NotAvailableError reports that no icon could be found for a process name.
// Callers distinguish this from transport/lookup failures so they can reply
// with AssetResponse{Success:false} rather than dropping the request.
type NotAvailableError struct {
	ProcessName string
}

func (e *NotAvailableError) Error() string {
	return fmt.Sprintf("assets: no icon available for %q", e.ProcessName)
}

// Lookup resolves a process name to raw (non-base64) icon bytes. A real
// implementation inspects the OS shell/icon cache; Lookup is expected to
// return *NotAvailableError when nothing can be found, not a bare error.
type Lookup func(processName string) ([]byte, error)

// Provider serves AssetResponse payloads with a bounded LRU cache in front
// of Lookup, so a slow OS icon lookup that succeeds runs at most once per
// process name between evictions. Failed lookups are not cached and run
// again on the next request for that name.
type Provider struct {
	lookup Lookup
	cache  *lru.Cache[string, []byte]
}

// New builds a Provider. lookup performs the actual, possibly slow,
// OS-specific resolution on a cache miss.
func New(lookup Lookup) (*Provider, error) {
	cache, err := lru.New[string, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Provider{lookup: lookup, cache: cache}, nil
}

// Resolve returns the base64-encoded icon for processName, consulting the
// cache before falling back to the underlying Lookup.
func (p *Provider) Resolve(processName string) (string, error) {
	if raw, ok := p.cache.Get(processName); ok {
		return base64.StdEncoding.EncodeToString(raw), nil
	}

	raw, err := p.lookup(processName)
	if err != nil {
		return "", err
	}

	p.cache.Add(processName, raw)
	return base64.StdEncoding.EncodeToString(raw), nil
}
