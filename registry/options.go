package registry

// Option configures a Registry during creation.
//
// Example:
//
//	r := registry.New[*resource.Buffer, id.BufferMarker](
//	    registry.WithMaxHandles(4096),
//	    registry.WithCapacity(256),
//	)
type Option func(*config)

// config holds optional registry settings.
type config struct {
	maxHandles int
	capacity   int
}

// defaultCapacity is the initial storage reservation.
const defaultCapacity = 64

func defaultConfig() config {
	return config{
		maxHandles: 0, // bounded only by the index space
		capacity:   defaultCapacity,
	}
}

// WithMaxHandles bounds the number of handles allocated at once. Slots
// retired after epoch exhaustion do not count against the bound.
// Minting beyond the bound fails with ErrCapacityExhausted. Zero or a
// negative value leaves the registry bounded only by the 32-bit index space.
func WithMaxHandles(n int) Option {
	return func(c *config) {
		c.maxHandles = max(n, 0)
	}
}

// WithCapacity reserves storage for n slots up front.
func WithCapacity(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.capacity = n
		}
	}
}
