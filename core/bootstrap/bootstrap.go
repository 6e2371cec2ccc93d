package bootstrap

import (
	"fmt"

	coreconfig "github.com/sh0von/cow/core/config"
	"github.com/sh0von/cow/core/logger"
)

// Options control the generic bootstrap pipeline shared between bots.
// The store type is left to the caller so file and database backed
// applications can share the same startup path.
type Options[S any] struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	OpenStore  func(*coreconfig.Config) (S, error)
}

// Result exposes infrastructure initialized by the bootstrap pipeline.
type Result[S any] struct {
	Store S
}

// Run initializes the logger and opens the configured storage backend.
func Run[S any](opts Options[S]) (*Result[S], error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}
	if opts.OpenStore == nil {
		return nil, fmt.Errorf("bootstrap: OpenStore is required")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	store, err := opts.OpenStore(opts.Config)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: storage initialization failed: %w", err)
	}

	return &Result[S]{Store: store}, nil
}
