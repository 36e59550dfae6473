//go:build wireinject
// +build wireinject

// The build tag makes sure the stubs are not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/turnpilot/turnpilot/internal/arena"
	"github.com/turnpilot/turnpilot/internal/core/bt"
	"github.com/turnpilot/turnpilot/internal/core/observability/log"
)

// newWarriorRegistry assembles the registry with the engine builtins and
// the arena catalog installed.
func newWarriorRegistry() *bt.Registry {
	reg := bt.NewRegistry()
	bt.RegisterBuiltins(reg)
	arena.Register(reg)
	return reg
}

func ProvideLogger() *log.Logger {
	wire.Build(log.Provide)
	return log.New(log.LevelDebug)
}

func ProvideRegistry() *bt.Registry {
	wire.Build(newWarriorRegistry)
	return nil
}
