package config

import (
	"errors"
	"reflect"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

var (
	dotenvOnce sync.Once

	loadedMu sync.Mutex
	loaded   = make(map[reflect.Type]any)
)

// Load fills v from the environment using `env` struct tags, after loading
// a .env file from the working directory if one exists.
// The first successful load of a type is kept and handed to later callers;
// a failed load is not kept, so the next call parses again.
func Load[T any](v *T) error {
	if v == nil {
		return ErrNilPointer
	}
	dotenvOnce.Do(func() { _ = godotenv.Load() })

	key := reflect.TypeFor[T]()

	loadedMu.Lock()
	defer loadedMu.Unlock()

	if cached, ok := loaded[key]; ok {
		*v = cached.(T)
		return nil
	}

	var parsed T
	if err := env.Parse(&parsed); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	loaded[key] = parsed
	*v = parsed
	return nil
}
