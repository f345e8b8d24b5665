package sync

import (
	"github.com/smallbiznis/subsync/internal/sync/repository"
	"github.com/smallbiznis/subsync/internal/sync/service"
	"go.uber.org/fx"
)

var Module = fx.Module("sync.dispatcher",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
