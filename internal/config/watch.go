package config

import (
	"context"
	"fmt"

	"github.com/knadh/koanf/providers/file"
)

// Watch reloads the full configuration whenever the file at path changes and
// passes the result to onChange. A reload that fails validation is reported
// through err and the previous configuration stays in effect for the caller.
// Watching stops when ctx is done.
func Watch(ctx context.Context, path string, onChange func(cfg *Config, err error)) error {
	if path == "" {
		return fmt.Errorf("%w: watch path is empty", ErrLoadConfig)
	}
	fp := file.Provider(path)
	err := fp.Watch(func(_ interface{}, werr error) {
		if werr != nil {
			onChange(nil, fmt.Errorf("%w: %w", ErrLoadConfig, werr))
			return
		}
		onChange(Load(ctx))
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}
	go func() {
		<-ctx.Done()
		_ = fp.Unwatch()
	}()
	return nil
}
