package cache

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeport/internal/adapter/store"
	"codeport/internal/domain"
)

type countingTranslator struct {
	calls atomic.Int32
	err   error
}

func (c *countingTranslator) CallChat(_ context.Context, messages []domain.Message, unit domain.TranslationUnit) (domain.ChatResult, error) {
	c.calls.Add(1)
	if c.err != nil {
		return domain.ChatResult{}, c.err
	}
	return domain.ChatResult{Text: "reply to " + messages[len(messages)-1].Content, Unit: unit, Model: "m1"}, nil
}

func (c *countingTranslator) ModelName() string { return "m1" }

func msgs(content string) []domain.Message {
	return []domain.Message{
		{Role: domain.RoleSystem, Content: "system"},
		{Role: domain.RoleUser, Content: content},
	}
}

func TestKey(t *testing.T) {
	a := Key("m1", msgs("x"))
	assert.Len(t, a, 64)
	assert.Equal(t, a, Key("m1", msgs("x")))
	assert.NotEqual(t, a, Key("m2", msgs("x")))
	assert.NotEqual(t, a, Key("m1", msgs("y")))

	// Shifting text across a message boundary changes the key.
	left := []domain.Message{{Role: "user", Content: "ab"}, {Role: "user", Content: "c"}}
	right := []domain.Message{{Role: "user", Content: "a"}, {Role: "user", Content: "bc"}}
	assert.NotEqual(t, Key("m", left), Key("m", right))
}

func TestMemoryHit(t *testing.T) {
	next := &countingTranslator{}
	c, err := NewCachingTranslator(next, nil, 0)
	require.NoError(t, err)
	c.WithLogger(zerolog.Nop())

	unit := domain.TranslationUnit{SymbolName: "add"}
	first, err := c.CallChat(context.Background(), msgs("fn add"), unit)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := c.CallChat(context.Background(), msgs("fn add"), unit)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, unit, second.Unit)
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestHitKeepsRequestingUnit(t *testing.T) {
	c, err := NewCachingTranslator(&countingTranslator{}, nil, 4)
	require.NoError(t, err)

	_, err = c.CallChat(context.Background(), msgs("same"), domain.TranslationUnit{SymbolName: "a"})
	require.NoError(t, err)

	res, err := c.CallChat(context.Background(), msgs("same"), domain.TranslationUnit{SymbolName: "b"})
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, "b", res.Unit.SymbolName)
}

func TestPersistentStoreSurvivesNewTranslator(t *testing.T) {
	s, err := store.NewBoltStore(filepath.Join(t.TempDir(), "responses.db"))
	require.NoError(t, err)
	defer s.Close()

	next := &countingTranslator{}
	first, err := NewCachingTranslator(next, s, 4)
	require.NoError(t, err)
	first.WithRunID("run-1").now = func() time.Time { return time.Unix(100, 0) }

	_, err = first.CallChat(context.Background(), msgs("fn add"), domain.TranslationUnit{SymbolName: "add"})
	require.NoError(t, err)

	stored, found, err := s.GetResponse(Key("m1", msgs("fn add")))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "add", stored.Symbol)
	assert.Equal(t, "run-1", stored.RunID)
	assert.Equal(t, int64(100), stored.CreatedAt)

	second, err := NewCachingTranslator(next, s, 4)
	require.NoError(t, err)
	res, err := second.CallChat(context.Background(), msgs("fn add"), domain.TranslationUnit{SymbolName: "add"})
	require.NoError(t, err)
	assert.True(t, res.Cached)
	assert.Equal(t, int32(1), next.calls.Load())
}

func TestErrorsAreNotCached(t *testing.T) {
	next := &countingTranslator{err: errors.New("down")}
	c, err := NewCachingTranslator(next, nil, 4)
	require.NoError(t, err)

	for range 2 {
		_, err := c.CallChat(context.Background(), msgs("x"), domain.TranslationUnit{})
		require.Error(t, err)
	}
	assert.Equal(t, int32(2), next.calls.Load())
	assert.Equal(t, "m1", c.ModelName())
}
