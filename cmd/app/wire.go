//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/StuFraser/aqua-ripple/internal/bootstrap"
	"github.com/StuFraser/aqua-ripple/internal/domain/aimodel"
	"github.com/StuFraser/aqua-ripple/internal/domain/imagery"
	"github.com/StuFraser/aqua-ripple/internal/domain/location"
	"github.com/StuFraser/aqua-ripple/internal/domain/report"
	"github.com/StuFraser/aqua-ripple/internal/domain/waterquality"
	"github.com/StuFraser/aqua-ripple/internal/infra/config"
	"github.com/StuFraser/aqua-ripple/internal/infra/llm/gemini"
	"github.com/StuFraser/aqua-ripple/internal/infra/stac/planetary"
	httpiface "github.com/StuFraser/aqua-ripple/internal/interface/http"
	"github.com/StuFraser/aqua-ripple/pkg/logger"
)

func initializeApp() (*bootstrap.App, error) {
	wire.Build(
		config.Load,
		logger.New,
		provideImageryConfig,
		provideCatalogClient,
		provideGeminiClient,
		provideLocationConfig,
		provideLocationCache,
		provideReportRepository,
		provideAnalysisArchive,
		imagery.NewSelector,
		waterquality.NewService,
		location.NewService,
		report.NewService,
		wire.Bind(new(imagery.Catalog), new(*planetary.Client)),
		wire.Bind(new(waterquality.ImageSource), new(*imagery.Selector)),
		wire.Bind(new(aimodel.Generator), new(*gemini.Client)),
		wire.Bind(new(httpiface.Analyzer), new(*waterquality.Service)),
		wire.Bind(new(httpiface.LocationLookup), new(*location.Service)),
		wire.Bind(new(httpiface.ReportService), new(*report.Service)),
		httpiface.NewHandler,
		httpiface.NewReportHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil
}
