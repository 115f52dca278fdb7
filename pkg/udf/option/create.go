package option

import (
	"github.com/bgrewell/go-udf/pkg/logging"
)

// CreateOptions configures a new volume. Volume assembly is a non-goal of
// this codec; Create accepts these options without reading them and always
// returns an error.
type CreateOptions struct {
	VolumeIdentifier string
	Logger           *logging.Logger
}

type CreateOption func(*CreateOptions)

// WithVolumeIdentifier names the volume being created.
func WithVolumeIdentifier(id string) CreateOption {
	return func(o *CreateOptions) {
		o.VolumeIdentifier = id
	}
}

// WithCreateLogger attaches a logger to the volume under construction.
func WithCreateLogger(logger *logging.Logger) CreateOption {
	return func(o *CreateOptions) {
		o.Logger = logger
	}
}
