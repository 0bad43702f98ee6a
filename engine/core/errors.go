package core

import (
	"errors"
)

// Failure categories surfaced by the renderer. Callers match them with
// errors.Is; each site wraps the sentinel with call-specific context.
var (
	ErrLayerUnavailable      = errors.New("requested validation layer is not installed")
	ErrExtensionUnsupported  = errors.New("required extension is not supported")
	ErrNoSuitableDevice      = errors.New("no physical device satisfies the requirements")
	ErrSwapchainBuildFailure = errors.New("swapchain creation failed")
	ErrPoolExhausted         = errors.New("descriptor pool exhausted")
	ErrMipFormatUnsupported  = errors.New("image format does not support linear blitting")
	ErrDeviceLost            = errors.New("device lost")
	ErrShaderFileMissing     = errors.New("shader binary not found")
)
