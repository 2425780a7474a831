package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"codeport/internal/domain"
	"codeport/internal/port"
)

const defaultMemoryEntries = 1024

// CachingTranslator answers repeated requests from memory or from a
// persistent store before calling the wrapped translator.
type CachingTranslator struct {
	next   port.Translator
	store  port.ResponseStore
	memory *lru.Cache[string, domain.CachedResponse]
	runID  string
	now    func() time.Time
	logger zerolog.Logger
}

// NewCachingTranslator wraps next. store may be nil for a memory-only cache.
func NewCachingTranslator(next port.Translator, store port.ResponseStore, memoryEntries int) (*CachingTranslator, error) {
	if memoryEntries <= 0 {
		memoryEntries = defaultMemoryEntries
	}
	memory, err := lru.New[string, domain.CachedResponse](memoryEntries)
	if err != nil {
		return nil, err
	}
	return &CachingTranslator{
		next:   next,
		store:  store,
		memory: memory,
		now:    time.Now,
		logger: log.Logger,
	}, nil
}

// WithLogger sets the logger.
func (c *CachingTranslator) WithLogger(logger zerolog.Logger) *CachingTranslator {
	c.logger = logger
	return c
}

// WithRunID tags stored responses with the conversion run that produced them.
func (c *CachingTranslator) WithRunID(runID string) *CachingTranslator {
	c.runID = runID
	return c
}

func (c *CachingTranslator) ModelName() string {
	return c.next.ModelName()
}

func (c *CachingTranslator) CallChat(ctx context.Context, messages []domain.Message, unit domain.TranslationUnit) (domain.ChatResult, error) {
	key := Key(c.next.ModelName(), messages)

	if resp, ok := c.lookup(key); ok {
		c.logger.Debug().Str("unit", unit.SymbolName).Msg("cache hit")
		return domain.ChatResult{Text: resp.Text, Unit: unit, Model: resp.Model, Cached: true}, nil
	}

	res, err := c.next.CallChat(ctx, messages, unit)
	if err != nil {
		return res, err
	}

	resp := domain.CachedResponse{
		Model:     res.Model,
		Symbol:    unit.SymbolName,
		Text:      res.Text,
		RunID:     c.runID,
		CreatedAt: c.now().Unix(),
	}
	c.memory.Add(key, resp)
	if c.store != nil {
		if err := c.store.PutResponse(key, resp); err != nil {
			c.logger.Warn().Err(err).Str("unit", unit.SymbolName).Msg("failed to store response")
		}
	}

	return res, nil
}

// lookup checks memory first, then the store. Store hits are promoted.
func (c *CachingTranslator) lookup(key string) (domain.CachedResponse, bool) {
	if resp, ok := c.memory.Get(key); ok {
		return resp, true
	}
	if c.store == nil {
		return domain.CachedResponse{}, false
	}

	resp, found, err := c.store.GetResponse(key)
	if err != nil {
		c.logger.Warn().Err(err).Msg("failed to read cached response")
		return domain.CachedResponse{}, false
	}
	if !found {
		return domain.CachedResponse{}, false
	}
	c.memory.Add(key, resp)
	return resp, true
}

// Key fingerprints a request: the model name and every message, each field
// length-prefixed so that boundaries cannot collide.
func Key(model string, messages []domain.Message) string {
	h := sha256.New()
	write := func(s string) {
		var n [8]byte
		l := uint64(len(s))
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		h.Write(n[:])
		h.Write([]byte(s))
	}

	write(model)
	for _, m := range messages {
		write(m.Role)
		write(m.Content)
	}
	return hex.EncodeToString(h.Sum(nil))
}
