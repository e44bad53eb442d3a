package bootstrap

import (
	"github.com/wailsapp/wails/v2/pkg/logger"

	"autosonic/internal/audio"
	"autosonic/internal/backend"
	"autosonic/internal/catalog"
	"autosonic/internal/config"
	"autosonic/internal/inbox"
	"autosonic/internal/ports"
	"autosonic/internal/usecase"
)

// Services is the assembled runtime graph.
type Services struct {
	Controller *usecase.ClientController
	Inbox      *inbox.Watcher
}

// Build wires the client dependencies for a loaded configuration.
func Build(cfg config.Config, eventSink ports.EventSink, log logger.Logger) (Services, error) {
	damageTypes, err := catalog.Load(cfg.Catalog.Path)
	if err != nil {
		return Services{}, err
	}

	controller := usecase.NewClientController(
		audio.NewFFMPEGCapture(cfg.Audio.RecorderCommand),
		backend.NewClient(backend.Config{
			BaseURL: cfg.Backend.BaseURL,
			Timeout: cfg.Backend.Timeout,
		}),
		damageTypes,
		eventSink,
		log,
		usecase.Config{
			Audio: ports.AudioConfig{
				SampleRate:  cfg.Audio.SampleRate,
				Channels:    cfg.Audio.Channels,
				InputFormat: cfg.Audio.InputFormat,
				InputDevice: cfg.Audio.InputDevice,
				MaxDuration: cfg.Audio.MaxDuration,
			},
			ChunkSize: cfg.Session.ChunkSize,
		},
	)

	return Services{
		Controller: controller,
		Inbox:      inbox.New(cfg.Inbox.Dir, controller, log, 0),
	}, nil
}
