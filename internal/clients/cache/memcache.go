package cache

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/spendfree/spendfree/internal/logger"
)

const (
	summaryOption   = "summary"
	statementOption = "statement"
)

type MemcacheClient struct {
	client *memcache.Client
}

type config interface {
	Hosts() []string
}

func NewMemcache(config config) (*MemcacheClient, error) {
	logger.Info("memcached hosts", zap.Strings("hosts", config.Hosts()))
	mc := memcache.New(config.Hosts()...)
	return &MemcacheClient{mc}, mc.Ping()
}

// Keys are "<userID>:<option>:<period>", period being "mm-yyyy".
func formatKey(userID, option, period string) string {
	return userID + ":" + option + ":" + period
}

func (mc *MemcacheClient) CacheSummary(userID, period string, payload []byte) error {
	return mc.set(formatKey(userID, summaryOption, period), payload)
}

func (mc *MemcacheClient) GetSummary(userID, period string) ([]byte, error) {
	return mc.get(formatKey(userID, summaryOption, period))
}

func (mc *MemcacheClient) CacheStatement(userID, period string, payload []byte) error {
	return mc.set(formatKey(userID, statementOption, period), payload)
}

func (mc *MemcacheClient) GetStatement(userID, period string) ([]byte, error) {
	return mc.get(formatKey(userID, statementOption, period))
}

// Invalidate drops the cached summary and statement for each period.
func (mc *MemcacheClient) Invalidate(userID string, periods []string) error {
	logger.Info("invalidate cache", zap.String("userID", userID), zap.Strings("periods", periods))

	for _, period := range periods {
		for _, opt := range []string{summaryOption, statementOption} {
			err := mc.client.Delete(formatKey(userID, opt, period))
			if err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
				return err
			}
		}
	}
	return nil
}

func (mc *MemcacheClient) set(key string, payload []byte) error {
	return mc.client.Set(&memcache.Item{Key: key, Value: payload})
}

// get maps a cache miss to (nil, nil); only transport failures surface.
func (mc *MemcacheClient) get(key string) ([]byte, error) {
	item, err := mc.client.Get(key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item.Value, nil
}
