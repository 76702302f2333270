// Package bootstrap runs the startup steps shared between bots: logger
// initialisation followed by construction of the bot's own services.
package bootstrap

import (
	"fmt"

	coreconfig "github.com/m3rciful/eventbot/core/config"
	"github.com/m3rciful/eventbot/core/logger"
)

// Options control the generic bootstrap pipeline. T is the bot's service set.
type Options[T any] struct {
	Config *coreconfig.Config

	LoggerInit func(*coreconfig.Config) error
	// Provide builds the bot's services once logging is available.
	Provide func(*coreconfig.Config) (T, error)
}

// Run initializes the logger and then the services returned by Provide.
func Run[T any](opts Options[T]) (T, error) {
	var zero T
	if opts.Config == nil {
		return zero, fmt.Errorf("bootstrap: nil config provided")
	}
	if opts.Provide == nil {
		return zero, fmt.Errorf("bootstrap: nil service provider")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return zero, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	services, err := opts.Provide(opts.Config)
	if err != nil {
		return zero, fmt.Errorf("bootstrap: services initialization failed: %w", err)
	}
	return services, nil
}
