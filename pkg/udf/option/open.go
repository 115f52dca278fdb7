package option

import (
	"github.com/bgrewell/go-udf/pkg/logging"
)

// ExtractionProgressCallback reports progress while extracting a file from
// the volume to local disk.
type ExtractionProgressCallback func(
	currentFilename string,
	bytesTransferred int64,
	totalBytes int64,
	currentFileNumber int,
	totalFileCount int,
)

// OpenOptions configures how an existing volume is opened and parsed.
type OpenOptions struct {
	ParseOnOpen                bool
	ReadOnly                   bool
	PreloadDir                 bool
	ExtractionProgressCallback ExtractionProgressCallback
	Logger                     *logging.Logger
}

type OpenOption func(*OpenOptions)

// WithExtractionProgress sets a progress callback invoked while extracting files.
func WithExtractionProgress(callback ExtractionProgressCallback) OpenOption {
	return func(o *OpenOptions) {
		o.ExtractionProgressCallback = callback
	}
}

// WithLogger attaches a logger to the opened volume.
func WithLogger(logger *logging.Logger) OpenOption {
	return func(o *OpenOptions) {
		o.Logger = logger
	}
}

// WithParseOnOpen controls whether the file set descriptor and directory
// tree are parsed immediately on Open, or deferred until first use. The
// volume descriptor sequence is always parsed on Open.
func WithParseOnOpen(parseOnOpen bool) OpenOption {
	return func(o *OpenOptions) {
		o.ParseOnOpen = parseOnOpen
	}
}

// WithReadOnly marks the volume read-only, the only mode this codec supports.
func WithReadOnly(readOnly bool) OpenOption {
	return func(o *OpenOptions) {
		o.ReadOnly = readOnly
	}
}

// WithPreloadDir records the PreloadDir setting in OpenOptions. Open does
// not read it; whether the directory hierarchy is walked on Open is decided
// by ParseOnOpen alone.
func WithPreloadDir(preloadDir bool) OpenOption {
	return func(o *OpenOptions) {
		o.PreloadDir = preloadDir
	}
}
