package texture

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrUnsupportedTextureSize is returned when a texture's dimensions are not
// powers of two or exceed the device's maximum texture dimension.
var ErrUnsupportedTextureSize = errors.New("texture size must be a power of two within device limits")

// CreateFunc builds the GPU metadata record for one size class. The cache
// calls it once per (width, height) pair at construction time.
//
// Parameters:
//   - width: the size class width in pixels
//   - height: the size class height in pixels
//
// Returns:
//   - Metadata: the created record
//   - error: any error from GPU resource creation
type CreateFunc func(width, height uint32) (Metadata, error)

// MetadataCache resolves texture dimensions to pre-created GPU metadata.
// Every power-of-two size class up to the device limit exists from the moment
// the cache is built, so lookups during rendering never allocate.
type MetadataCache interface {
	// Lookup resolves the metadata record for a texture of the given
	// dimensions. Repeated lookups with the same dimensions return the
	// same record.
	//
	// Parameters:
	//   - width: the texture width in pixels
	//   - height: the texture height in pixels
	//
	// Returns:
	//   - Metadata: the size class record
	//   - error: ErrUnsupportedTextureSize if either dimension is not a
	//     power of two or exceeds the cache's maximum dimension
	Lookup(width, height uint32) (Metadata, error)

	// MaxExponent returns the largest supported log2 dimension exponent.
	//
	// Returns:
	//   - int: the exponent; the cache holds (MaxExponent+1)² entries
	MaxExponent() int
}

type metadataCacheImpl struct {
	maxExponent int
	entries     [][]Metadata
}

var _ MetadataCache = &metadataCacheImpl{}

// NewMetadataCache eagerly builds metadata for every power-of-two size class
// from 1x1 up to maxDimension x maxDimension. Construction fails on the
// first size class whose GPU resources cannot be created.
//
// Parameters:
//   - maxDimension: the device's maximum 2D texture dimension
//   - create: the factory invoked per size class
//
// Returns:
//   - MetadataCache: the populated cache
//   - error: any error from the factory, wrapped with the failing size
func NewMetadataCache(maxDimension uint32, create CreateFunc) (MetadataCache, error) {
	if maxDimension == 0 {
		return nil, fmt.Errorf("invalid max texture dimension 0: %w", ErrUnsupportedTextureSize)
	}

	maxExponent := bits.Len32(maxDimension) - 1
	if maxDimension&(maxDimension-1) != 0 {
		maxExponent++
	}

	entries := make([][]Metadata, maxExponent+1)
	for we := 0; we <= maxExponent; we++ {
		entries[we] = make([]Metadata, maxExponent+1)
		for he := 0; he <= maxExponent; he++ {
			width := uint32(1) << we
			height := uint32(1) << he
			metadata, err := create(width, height)
			if err != nil {
				return nil, fmt.Errorf("failed to create texture metadata for %dx%d: %w", width, height, err)
			}
			entries[we][he] = metadata
		}
	}

	return &metadataCacheImpl{
		maxExponent: maxExponent,
		entries:     entries,
	}, nil
}

func (c *metadataCacheImpl) Lookup(width, height uint32) (Metadata, error) {
	we, err := Exponent(width)
	if err != nil {
		return nil, fmt.Errorf("unsupported texture width %d: %w", width, err)
	}
	he, err := Exponent(height)
	if err != nil {
		return nil, fmt.Errorf("unsupported texture height %d: %w", height, err)
	}
	if we > c.maxExponent || he > c.maxExponent {
		return nil, fmt.Errorf("texture %dx%d exceeds device limit: %w", width, height, ErrUnsupportedTextureSize)
	}
	return c.entries[we][he], nil
}

func (c *metadataCacheImpl) MaxExponent() int {
	return c.maxExponent
}

// Exponent returns the log2 exponent of a power-of-two dimension.
//
// Parameters:
//   - v: the dimension in pixels
//
// Returns:
//   - int: the exponent, such that 1<<exponent == v
//   - error: ErrUnsupportedTextureSize if v is zero or not a power of two
func Exponent(v uint32) (int, error) {
	if v == 0 || v&(v-1) != 0 {
		return 0, ErrUnsupportedTextureSize
	}
	return bits.Len32(v) - 1, nil
}
