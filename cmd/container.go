package cmd

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/bulkclone/application"
	"github.com/rios0rios0/bulkclone/infrastructure/provider"
)

// injectService wires the provider registry into the application service
// via the DIG container.
func injectService() (*application.Service, error) {
	container := dig.New()

	if err := container.Provide(provider.Default); err != nil {
		return nil, err
	}
	if err := container.Provide(application.NewService); err != nil {
		return nil, err
	}

	var service *application.Service
	if err := container.Invoke(func(s *application.Service) {
		service = s
	}); err != nil {
		return nil, err
	}

	return service, nil
}
