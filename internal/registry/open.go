package registry

import (
	"fmt"
	"strings"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Backends lists every supported backend.
var Backends = []string{BackendFile, BackendSQLite, BackendRedis, BackendMemory}

// StoreOptions selects and configures a Store.
type StoreOptions struct {
	Backend   string
	Path      string
	RedisAddr string
	Namespace string
}

// Open creates the Store described by opts.
func Open(opts StoreOptions) (Store, error) {
	switch strings.ToLower(opts.Backend) {
	case "", BackendFile:
		if opts.Path == "" {
			return nil, fmt.Errorf("file backend needs a path")
		}
		return NewFileStore(opts.Path), nil
	case BackendSQLite:
		if opts.Path == "" {
			return nil, fmt.Errorf("sqlite backend needs a path")
		}
		return OpenSQLite(opts.Path)
	case BackendRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis backend needs an address")
		}
		var addrs []string
		for _, a := range strings.Split(opts.RedisAddr, ",") {
			if a = strings.TrimSpace(a); a != "" {
				addrs = append(addrs, a)
			}
		}
		return NewRedisStore(addrs, opts.Namespace), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown registry backend %q (expected one of %s)", opts.Backend, strings.Join(Backends, ", "))
	}
}
