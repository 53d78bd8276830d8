package dedupe

// Option applies a configuration option to the inMemoryDeduper.
type Option func(*inMemoryDeduper)

// WithCapacity pre-sizes the key map.
func WithCapacity(n int) Option {
	return func(d *inMemoryDeduper) {
		if n > 0 {
			d.capacity = n
		}
	}
}
