package providers

import "context"

// IconProvider defines the interface for generative icon rendering
type IconProvider interface {
	// GenerateIcon returns an inline-renderable image payload (a data URL)
	// for a formula name, or an error if generation failed.
	GenerateIcon(ctx context.Context, formulaName string) (string, error)
}
