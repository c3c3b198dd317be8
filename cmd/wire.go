package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	summaryadapter "github.com/bnema/sessionize/internal/adapters/render/summary"
	tomlrepo "github.com/bnema/sessionize/internal/adapters/repo/toml"
	"github.com/bnema/sessionize/internal/adapters/settings"
	"github.com/bnema/sessionize/internal/application"
	"github.com/bnema/sessionize/internal/domain"
	"github.com/bnema/sessionize/internal/ports"
	"github.com/spf13/viper"
)

type app struct {
	cfg             *viper.Viper
	configFile      string
	settings        settings.Settings
	logger          *slog.Logger
	service         *application.Service
	summaryRenderer func([]domain.RunReport, summaryadapter.RenderOptions) (string, error)
	now             func() time.Time
}

func newApp() *app {
	return &app{
		cfg:             viper.New(),
		summaryRenderer: summaryadapter.Render,
		now:             time.Now,
	}
}

// wire runs after flag parsing so bound flags take part in settings resolution.
func (a *app) wire(stderr io.Writer) error {
	loaded, err := settings.Load(a.cfg, a.configFile)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	level, err := loaded.LogLevel()
	if err != nil {
		return err
	}

	reports, err := tomlrepo.NewReportRepository(loaded.Reports.Path, tomlrepo.DefaultMaxReports)
	if err != nil {
		return fmt.Errorf("wire report repository: %w", err)
	}

	a.settings = loaded
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	a.service = application.NewService(reports, ports.SystemClock{}, a.logger)

	return nil
}
