package bind_group_cache

import "go.uber.org/zap"

// BindGroupCacheOption is a functional option applied to a BindGroupCache during construction.
type BindGroupCacheOption func(*bindGroupCache)

// WithLogger sets the logger used for invalidation events.
//
// Parameters:
//   - log: the logger
//
// Returns:
//   - BindGroupCacheOption: option function to apply
func WithLogger(log *zap.Logger) BindGroupCacheOption {
	return func(c *bindGroupCache) {
		if log != nil {
			c.log = log
		}
	}
}
