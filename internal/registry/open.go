package registry

import (
	"github.com/openhive-oss/openhive/internal/errors"
)

// Open selects an adapter by driver name. path is the sqlite database file,
// url and cred configure the remote driver; each is ignored by the other
// drivers. An empty driver means in-memory.
func Open(driver, path, url string, cred Credential) (Adapter, error) {
	switch driver {
	case "memory", "":
		return NewMemoryAdapter(), nil
	case "sqlite":
		if path == "" {
			return nil, errors.New(errors.CodeConfigInvalid, "sqlite driver requires a database path")
		}
		return NewSQLiteAdapter(path)
	case "remote":
		if url == "" {
			return nil, errors.New(errors.CodeConfigInvalid, "remote driver requires a registry url").
				WithSuggestion("Set registry.url in openhive.yaml")
		}
		return NewRemoteAdapter(url, cred), nil
	default:
		return nil, errors.Newf(errors.CodeConfigInvalid, "unsupported registry driver: %s", driver)
	}
}
