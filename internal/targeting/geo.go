package targeting

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"
)

// GeoInfo holds geographic information for an IP.
type GeoInfo struct {
	Country     string  `json:"country"`
	CountryCode string  `json:"country_code"`
	Region      string  `json:"region,omitempty"`
	City        string  `json:"city,omitempty"`
	Timezone    string  `json:"timezone,omitempty"`
	Latitude    float64 `json:"latitude,omitempty"`
	Longitude   float64 `json:"longitude,omitempty"`
}

// GeoProvider interface for IP geolocation.
type GeoProvider interface {
	Lookup(ip string) (*GeoInfo, error)
	Close() error
}

// MaxMindGeoProvider implements GeoProvider using a MaxMind GeoLite2
// City database.
type MaxMindGeoProvider struct {
	reader *maxminddb.Reader
}

// NewMaxMindGeoProvider opens the database at dbPath.
func NewMaxMindGeoProvider(dbPath string) (*MaxMindGeoProvider, error) {
	reader, err := maxminddb.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoIP database: %w", err)
	}
	return &MaxMindGeoProvider{reader: reader}, nil
}

// cityRecord mirrors the GeoLite2 City schema fields we consume.
type cityRecord struct {
	Country struct {
		ISOCode string            `maxminddb:"iso_code"`
		Names   map[string]string `maxminddb:"names"`
	} `maxminddb:"country"`
	Subdivisions []struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"subdivisions"`
	City struct {
		Names map[string]string `maxminddb:"names"`
	} `maxminddb:"city"`
	Location struct {
		Latitude  float64 `maxminddb:"latitude"`
		Longitude float64 `maxminddb:"longitude"`
		TimeZone  string  `maxminddb:"time_zone"`
	} `maxminddb:"location"`
}

// Lookup returns geo information for an IP address.
func (m *MaxMindGeoProvider) Lookup(ip string) (*GeoInfo, error) {
	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return nil, fmt.Errorf("invalid IP address: %s", ip)
	}

	var record cityRecord
	if err := m.reader.Lookup(parsedIP, &record); err != nil {
		return nil, err
	}

	info := &GeoInfo{
		Country:     record.Country.Names["en"],
		CountryCode: record.Country.ISOCode,
		City:        record.City.Names["en"],
		Timezone:    record.Location.TimeZone,
		Latitude:    record.Location.Latitude,
		Longitude:   record.Location.Longitude,
	}
	if len(record.Subdivisions) > 0 {
		info.Region = record.Subdivisions[0].Names["en"]
	}

	return info, nil
}

// Close closes the GeoIP database.
func (m *MaxMindGeoProvider) Close() error {
	if m.reader != nil {
		return m.reader.Close()
	}
	return nil
}

// CachedGeoProvider wraps a GeoProvider with a bounded TTL cache.
// Insight queries resolve the same viewer IPs repeatedly, so lookups
// against the mmap'd database are worth short-circuiting.
type CachedGeoProvider struct {
	inner GeoProvider

	mu      sync.RWMutex
	data    map[string]geoCacheEntry
	maxSize int
	ttl     time.Duration
}

type geoCacheEntry struct {
	info      *GeoInfo
	expiresAt time.Time
}

// NewCachedGeoProvider wraps inner with a cache of at most maxSize entries.
func NewCachedGeoProvider(inner GeoProvider, maxSize int, ttl time.Duration) *CachedGeoProvider {
	return &CachedGeoProvider{
		inner:   inner,
		data:    make(map[string]geoCacheEntry),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Lookup returns the cached result or falls through to the inner provider.
func (c *CachedGeoProvider) Lookup(ip string) (*GeoInfo, error) {
	c.mu.RLock()
	entry, ok := c.data[ip]
	c.mu.RUnlock()
	if ok && time.Now().Before(entry.expiresAt) {
		return entry.info, nil
	}

	info, err := c.inner.Lookup(ip)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if len(c.data) >= c.maxSize {
		// Simple random eviction; map iteration order serves.
		for k := range c.data {
			delete(c.data, k)
			break
		}
	}
	c.data[ip] = geoCacheEntry{info: info, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()

	return info, nil
}

// Close closes the inner provider.
func (c *CachedGeoProvider) Close() error {
	return c.inner.Close()
}

// StaticGeoProvider is a fixed-table geo provider for testing.
type StaticGeoProvider struct {
	data map[string]*GeoInfo
}

func NewStaticGeoProvider() *StaticGeoProvider {
	return &StaticGeoProvider{data: make(map[string]*GeoInfo)}
}

func (p *StaticGeoProvider) AddEntry(ip string, info *GeoInfo) {
	p.data[ip] = info
}

func (p *StaticGeoProvider) Lookup(ip string) (*GeoInfo, error) {
	if net.ParseIP(ip) == nil {
		return nil, fmt.Errorf("invalid IP address: %s", ip)
	}
	if info, ok := p.data[ip]; ok {
		return info, nil
	}
	return nil, nil
}

func (p *StaticGeoProvider) Close() error { return nil }
