package handlers

import (
	"context"
	"time"

	"video-converter/internal/catalog"
	"video-converter/internal/converter"
	"video-converter/internal/startup"
	"video-converter/internal/streaming"
)

// ConversionService is the part of *converter.Service the handlers use.
type ConversionService interface {
	Convert(ctx context.Context, req converter.Request, deliver converter.DeliverFunc) error
	Catalog() *catalog.Catalog
}

// EncoderProbe reports on the encoder backing conversions.
// *transcoder.Transcoder satisfies it.
type EncoderProbe interface {
	Available() error
	Active() int
}

type Handlers struct {
	converter      ConversionService
	encoder        EncoderProbe
	maxUploadBytes int64
	delivery       streaming.Config
	startTime      time.Time
}

func New(svc ConversionService, encoder EncoderProbe, config *startup.Config) *Handlers {
	return &Handlers{
		converter:      svc,
		encoder:        encoder,
		maxUploadBytes: config.MaxUploadBytes,
		delivery:       deliveryConfig(config),
		startTime:      time.Now(),
	}
}

func deliveryConfig(config *startup.Config) streaming.Config {
	cfg := streaming.DefaultConfig()
	if config.DeliveryWriteTimeout > 0 {
		cfg.WriteTimeout = config.DeliveryWriteTimeout
	}
	return cfg
}
