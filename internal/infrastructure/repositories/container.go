package repositories

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/omnirun/internal/domain/entities"
	goRepo "github.com/rios0rios0/omnirun/internal/infrastructure/repositories/golang"
	javaRepo "github.com/rios0rios0/omnirun/internal/infrastructure/repositories/java"
	nodeRepo "github.com/rios0rios0/omnirun/internal/infrastructure/repositories/nodejs"
	phpRepo "github.com/rios0rios0/omnirun/internal/infrastructure/repositories/php"
	pyRepo "github.com/rios0rios0/omnirun/internal/infrastructure/repositories/python"
	rubyRepo "github.com/rios0rios0/omnirun/internal/infrastructure/repositories/ruby"
	rustRepo "github.com/rios0rios0/omnirun/internal/infrastructure/repositories/rust"
	tfRepo "github.com/rios0rios0/omnirun/internal/infrastructure/repositories/terraform"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	return container.Provide(func() *ManagerRegistry {
		reg := NewManagerRegistry()
		reg.Register(pyRepo.New())
		reg.Register(nodeRepo.New(entities.ManagerNpm))
		reg.Register(nodeRepo.New(entities.ManagerYarn))
		reg.Register(nodeRepo.New(entities.ManagerPnpm))
		reg.Register(goRepo.New())
		reg.Register(rustRepo.New())
		reg.Register(javaRepo.NewMaven())
		reg.Register(javaRepo.NewGradle())
		reg.Register(rubyRepo.New())
		reg.Register(phpRepo.New())
		reg.Register(tfRepo.New())
		return reg
	})
}
