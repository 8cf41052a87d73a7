package provider

import (
	"hc/pkg/store"
)

// ConfigFileName is the encrypted provider config file in the hc
// directory.
const ConfigFileName = "providers.enc"

// Storage persists provider configurations encrypted with the vault's
// derived key, in the same envelope format as the vault itself.
type Storage struct {
	inner store.Store[map[string]Config]
}

// NewStorage returns a provider config store.
func NewStorage() *Storage {
	return &Storage{
		inner: store.Store[map[string]Config]{
			NewFunc: func() map[string]Config { return make(map[string]Config) },
		},
	}
}

// Load decrypts all provider configs, keyed by config name. A missing
// file yields an empty map.
func (s *Storage) Load(path string, key []byte) (map[string]Config, error) {
	configs, err := s.inner.LoadWithKey(path, key)
	if err != nil {
		return nil, err
	}
	if configs == nil {
		configs = make(map[string]Config)
	}
	return configs, nil
}

// Save encrypts and writes all provider configs.
func (s *Storage) Save(configs map[string]Config, path string, key, salt []byte) error {
	return s.inner.SaveWithKey(configs, path, key, salt)
}
