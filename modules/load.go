package modules

import (
	"github.com/standin-hq/standin/modules/delegation"
	"github.com/standin-hq/standin/modules/document"
	"github.com/standin-hq/standin/modules/org"
	"github.com/standin-hq/standin/pkg/application"
)

// BuiltInModules lists every module in registration order; org must come
// first so later schemas can reference its tables.
var BuiltInModules = []application.Module{
	org.NewModule(),
	delegation.NewModule(),
	document.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range append(BuiltInModules, externalModules...) {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
