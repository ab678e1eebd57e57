package project

import (
	"github.com/inkwelldev/inkwell/internal/project/provider"
	"github.com/inkwelldev/inkwell/internal/service"
)

// Service names under which providers are exchanged on the hub.
const (
	// ServiceDirectoryProvider is the hub name for directory provider
	// offers.
	ServiceDirectoryProvider = "inkwell.directory-provider"

	// ServiceRepositoryProvider is the hub name for repository
	// provider offers.
	ServiceRepositoryProvider = "inkwell.repository-provider"
)

// providerRange is the version range of the provider contract this
// package understands.
const providerRange = "^1.0.0"

// ConsumeServices subscribes the project to provider offers on hub.
// Offers within the 1.x contract are type-asserted and registered;
// offers of the wrong type are skipped. Disposing the result retires
// both subscriptions, which deregisters every provider they accepted.
func (p *Project) ConsumeServices(hub *service.Hub) (service.Disposable, error) {
	dirs, err := hub.Consume(ServiceDirectoryProvider, providerRange, func(svc any) service.Disposable {
		dp, ok := svc.(provider.DirectoryProvider)
		if !ok {
			return nil
		}
		return p.RegisterDirectoryProvider(dp)
	})
	if err != nil {
		return nil, err
	}

	repos, err := hub.Consume(ServiceRepositoryProvider, providerRange, func(svc any) service.Disposable {
		rp, ok := svc.(provider.RepositoryProvider)
		if !ok {
			return nil
		}
		return p.RegisterRepositoryProvider(rp)
	})
	if err != nil {
		dirs.Dispose()
		return nil, err
	}

	return disposables{dirs, repos}, nil
}

// disposables disposes a fixed set of registrations together.
type disposables []service.Disposable

// Dispose disposes every member.
func (ds disposables) Dispose() {
	for _, d := range ds {
		d.Dispose()
	}
}
