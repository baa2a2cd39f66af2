package components

import (
	"github.com/bahooo22/HannaWhishlist/internal/infra/readstore"
	"github.com/bahooo22/HannaWhishlist/internal/infra/repository"
	"github.com/bahooo22/HannaWhishlist/internal/usecase/commands"
	"github.com/bahooo22/HannaWhishlist/internal/usecase/queries"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		// Write side
		fx.Annotate(
			repository.NewGiftRepository,
			fx.As(new(commands.GiftRepository)),
		),
		// Read side
		fx.Annotate(
			readstore.NewGiftReadStore,
			fx.As(new(queries.GiftReadStore)),
		),
	),
)
