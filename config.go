package rowhash

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/apache/arrow/go/v16/arrow/memory"
)

// The HashConfig type carries configuration options for hash computations.
//
// HashConfig implements the HashOption interface so it can be used directly
// as argument to the hashing functions when needed, for example:
//
//	hashes, err := rowhash.MurmurHash3X86_32(ctx, input, 0, &rowhash.HashConfig{
//		Parallelism: 4,
//	})
type HashConfig struct {
	// Seed of the first column of every row. Only the fixed width hash
	// algorithms consume it; digest algorithms ignore it.
	Seed uint64

	// Allocator used for the output arrays. The input columns are never
	// allocated nor released by this package.
	Allocator memory.Allocator

	// Maximum number of goroutines hashing rows concurrently.
	Parallelism int
}

// DefaultHashConfig returns a new HashConfig value initialized with the
// default configuration.
func DefaultHashConfig() *HashConfig {
	return &HashConfig{
		Allocator:   memory.DefaultAllocator,
		Parallelism: runtime.GOMAXPROCS(0),
	}
}

// Apply applies the given list of options to c.
func (c *HashConfig) Apply(options ...HashOption) {
	for _, opt := range options {
		opt.ConfigureHash(c)
	}
}

// ConfigureHash applies configuration options from c to config.
func (c *HashConfig) ConfigureHash(config *HashConfig) {
	*config = HashConfig{
		Seed:        coalesceUint64(c.Seed, config.Seed),
		Allocator:   coalesceAllocator(c.Allocator, config.Allocator),
		Parallelism: coalesceInt(c.Parallelism, config.Parallelism),
	}
}

// Validate returns a non-nil error if the configuration of c is invalid.
func (c *HashConfig) Validate() error {
	const baseName = "rowhash.(*HashConfig)."
	return errorInvalidConfiguration(
		validateNotNil(baseName+"Allocator", c.Allocator),
		validatePositiveInt(baseName+"Parallelism", c.Parallelism),
	)
}

// HashOption is an interface implemented by types that carry configuration
// options for hash computations.
type HashOption interface {
	ConfigureHash(*HashConfig)
}

// Seed configures the seed passed to the first column of every row.
//
// Defaults to zero.
type Seed uint64

func (seed Seed) ConfigureHash(config *HashConfig) { config.Seed = uint64(seed) }

// Parallelism configures the maximum number of goroutines used to hash rows.
//
// Defaults to the value of runtime.GOMAXPROCS.
type Parallelism int

func (p Parallelism) ConfigureHash(config *HashConfig) { config.Parallelism = int(p) }

// UseAllocator creates a configuration option which sets the memory allocator
// used for the output arrays.
//
// Defaults to memory.DefaultAllocator.
func UseAllocator(mem memory.Allocator) HashOption { return allocatorOption{mem} }

type allocatorOption struct{ mem memory.Allocator }

func (a allocatorOption) ConfigureHash(config *HashConfig) { config.Allocator = a.mem }

func newHashConfig(options ...HashOption) (*HashConfig, error) {
	config := DefaultHashConfig()
	config.Apply(options...)
	return config, config.Validate()
}

func coalesceInt(i1, i2 int) int {
	if i1 != 0 {
		return i1
	}
	return i2
}

func coalesceUint64(u1, u2 uint64) uint64 {
	if u1 != 0 {
		return u1
	}
	return u2
}

func coalesceAllocator(a1, a2 memory.Allocator) memory.Allocator {
	if a1 != nil {
		return a1
	}
	return a2
}

func validateNotNil(name string, value interface{}) error {
	if value != nil {
		return nil
	}
	return fmt.Errorf("%s: cannot be nil", name)
}

func validatePositiveInt(name string, value int) error {
	if value > 0 {
		return nil
	}
	return fmt.Errorf("%s: cannot be negative or zero: %d", name, value)
}

func errorInvalidConfiguration(reasons ...error) error {
	var err *invalidConfiguration

	for _, reason := range reasons {
		if reason != nil {
			if err == nil {
				err = new(invalidConfiguration)
			}
			err.reasons = append(err.reasons, reason)
		}
	}

	if err != nil {
		return err
	}
	return nil
}

type invalidConfiguration struct {
	reasons []error
}

func (err *invalidConfiguration) Error() string {
	errorMessage := new(strings.Builder)
	for _, reason := range err.reasons {
		errorMessage.WriteString(reason.Error())
		errorMessage.WriteString("\n")
	}
	errorString := errorMessage.String()
	if errorString != "" {
		errorString = errorString[:len(errorString)-1]
	}
	return errorString
}
