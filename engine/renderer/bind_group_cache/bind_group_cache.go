package bind_group_cache

import (
	"fmt"

	"github.com/Carmen-Shannon/backdrop/engine/renderer/gpu"
	"go.uber.org/zap"
)

// MaxEntries is the largest number of resources one cached bind group may reference.
const MaxEntries = 8

// Key identifies a bind group by pipeline and the ordered resources it binds. It is a comparable
// value so lookups never allocate.
type Key struct {
	Pipeline  gpu.Handle
	Resources [MaxEntries]gpu.Handle
	Count     int
}

// NewKey builds the key for a pipeline and its bound resources.
//
// Parameters:
//   - pipeline: the pipeline whose layout the group matches
//   - resources: the bound resources in binding order
//
// Returns:
//   - Key: the key
//   - error: an error if more than MaxEntries resources are given
func NewKey(pipeline gpu.Handle, resources ...gpu.Handle) (Key, error) {
	if len(resources) > MaxEntries {
		return Key{}, fmt.Errorf("bind group of %d resources exceeds %d", len(resources), MaxEntries)
	}
	k := Key{Pipeline: pipeline, Count: len(resources)}
	copy(k.Resources[:], resources)
	return k, nil
}

// bindGroupCache is the implementation of the BindGroupCache interface.
type bindGroupCache struct {
	device gpu.Device
	groups map[Key]gpu.Handle
	log    *zap.Logger

	created     int
	invalidated int
}

// BindGroupCache memoizes bind groups by Key. Render targets are recreated wholesale, so the cache
// is invalidated as a whole whenever any target is destroyed rather than tracking references.
type BindGroupCache interface {
	// Get returns the bind group for the key, creating it on first use.
	//
	// Parameters:
	//   - label: the label used if the group is created
	//   - pipeline: the pipeline whose group 0 layout the group matches
	//   - resources: the bound resources in binding order
	//
	// Returns:
	//   - gpu.Handle: the bind group
	//   - error: an error if the group cannot be created
	Get(label string, pipeline gpu.Handle, resources ...gpu.Handle) (gpu.Handle, error)

	// Invalidate destroys every cached bind group.
	Invalidate()

	// Len returns the number of cached bind groups.
	//
	// Returns:
	//   - int: the cache size
	Len() int

	// Created returns how many bind groups the cache created in total.
	//
	// Returns:
	//   - int: the creation count
	Created() int
}

var _ BindGroupCache = &bindGroupCache{}

// NewBindGroupCache creates an empty cache on device.
//
// Parameters:
//   - device: the device creating the bind groups
//   - options: functional options
//
// Returns:
//   - BindGroupCache: the cache
func NewBindGroupCache(device gpu.Device, options ...BindGroupCacheOption) BindGroupCache {
	c := &bindGroupCache{
		device: device,
		groups: make(map[Key]gpu.Handle),
		log:    zap.NewNop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *bindGroupCache) Get(label string, pipeline gpu.Handle, resources ...gpu.Handle) (gpu.Handle, error) {
	key, err := NewKey(pipeline, resources...)
	if err != nil {
		return gpu.Handle{}, fmt.Errorf("%s: %w", label, err)
	}
	if h, ok := c.groups[key]; ok {
		return h, nil
	}

	h, err := c.device.CreateBindGroup(gpu.BindGroupDesc{
		Label:    label,
		Pipeline: pipeline,
		Entries:  resources,
	})
	if err != nil {
		return gpu.Handle{}, err
	}
	c.groups[key] = h
	c.created++
	return h, nil
}

func (c *bindGroupCache) Invalidate() {
	if len(c.groups) == 0 {
		return
	}
	for _, h := range c.groups {
		c.device.DestroyBindGroup(h)
	}
	c.invalidated++
	c.log.Debug("bind group cache invalidated", zap.Int("groups", len(c.groups)), zap.Int("invalidations", c.invalidated))
	clear(c.groups)
}

func (c *bindGroupCache) Len() int {
	return len(c.groups)
}

func (c *bindGroupCache) Created() int {
	return c.created
}
