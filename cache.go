package csi

import (
	"sync"

	"golang.org/x/sys/cpu"
)

// sizeCacheShards must be a power of two.
const sizeCacheShards = 16

// SizeCache memoizes the payload sizes of report configurations. A cell
// decodes the same few configurations every slot, so the correspondence table
// is built once per configuration and then only read. Configurations are keyed
// by the fields that affect the layout; Subband is ignored.
//
// The zero value is ready for use. A SizeCache is safe for concurrent use.
type SizeCache struct {
	shards [sizeCacheShards]sizeCacheShard
}

// sizeCacheShard is padded so shards locked by different workers do not share
// a cache line.
type sizeCacheShard struct {
	mu      sync.RWMutex
	entries map[sizeKey]sizeCacheEntry
	_       cpu.CacheLinePad
}

type sizeCacheEntry struct {
	pucchBits int
	pusch     PUSCHSize
}

// NewSizeCache returns an empty cache.
func NewSizeCache() *SizeCache {
	return &SizeCache{}
}

// PUCCHBits returns PUCCHBits(cfg), computing it on first use.
// It returns the ValidateConfig error for unusable configurations.
func (c *SizeCache) PUCCHBits(cfg ReportConfig) (int, error) {
	e, err := c.entry(cfg)
	if err != nil {
		return 0, err
	}
	return e.pucchBits, nil
}

// PUSCH returns PUSCHSizeFor(cfg), computing it on first use. The returned
// description does not share memory with the cache.
// It returns the ValidateConfig error for unusable configurations.
func (c *SizeCache) PUSCH(cfg ReportConfig) (PUSCHSize, error) {
	e, err := c.entry(cfg)
	if err != nil {
		return PUSCHSize{}, err
	}
	size := e.pusch
	size.Part2 = size.Part2.Clone()
	return size, nil
}

// Len returns the number of cached configurations.
func (c *SizeCache) Len() int {
	n := 0
	for i := range c.shards {
		s := &c.shards[i]
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

func (c *SizeCache) entry(cfg ReportConfig) (sizeCacheEntry, error) {
	// Validate first: the key narrows the resource count to a byte.
	if err := ValidateConfig(cfg); err != nil {
		return sizeCacheEntry{}, err
	}
	key := cfg.key()
	s := &c.shards[key.shard()]

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if ok {
		return e, nil
	}

	e = sizeCacheEntry{pucchBits: PUCCHBits(cfg), pusch: PUSCHSizeFor(cfg)}

	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.entries[key]; ok {
		return prev, nil
	}
	if s.entries == nil {
		s.entries = make(map[sizeKey]sizeCacheEntry)
	}
	s.entries[key] = e
	return e, nil
}

// shard spreads keys over the cache shards (Fibonacci hashing).
func (k sizeKey) shard() int {
	h := uint32(k.nofResources) |
		uint32(k.codebook)<<8 |
		uint32(k.ri.mask)<<16 |
		uint32(k.ri.size)<<24
	h ^= uint32(k.quantities) << 4
	return int((h * 0x9e3779b9) >> 28 & (sizeCacheShards - 1))
}
