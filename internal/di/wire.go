//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/campusconnect/campus-connect-api/internal/app"
)

func InitializeApp() (*app.App, error) {
	panic(wire.Build(
		ConfigSet,
		ObservabilitySet,
		RuntimeInfraSet,
		RepositorySet,
		SecuritySet,
		NotificationSet,
		ServiceSet,
		HTTPSet,
		AppSet,
	))
}
