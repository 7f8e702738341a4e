package bind_group_provider

import "go.uber.org/zap"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithLogger sets the logger used when resources are created.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - BindGroupProviderOption: a function that sets the logger for this provider
func WithLogger(log *zap.Logger) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		if log != nil {
			p.log = log
		}
	}
}
