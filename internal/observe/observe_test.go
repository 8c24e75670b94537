package observe

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecorderConcurrent(t *testing.T) {
	rec := &Recorder{}
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rec.Observe(Event{Kind: StrategyAttempted, Row: i + 1})
		}(i)
	}
	wg.Wait()

	assert.Len(t, rec.Events(), 20)
	assert.Len(t, rec.OfKind(StrategyAttempted), 20)
	assert.Empty(t, rec.OfKind(TableFailed))
}

func TestOrNop(t *testing.T) {
	require.NotNil(t, OrNop(nil))
	OrNop(nil).Observe(Event{Kind: TableCompleted})

	var got []Kind
	o := OrNop(Func(func(e Event) { got = append(got, e.Kind) }))
	o.Observe(Event{Kind: MappingDecided})
	assert.Equal(t, []Kind{MappingDecided}, got)
}

func TestZapObserverLevels(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	o := NewZap(zap.New(core))

	o.Observe(Event{Kind: MappingDecided, Table: "a.csv", Field: "city", Column: "Town", Method: "fuzzy", Score: 91})
	o.Observe(Event{Kind: TableCompleted, Table: "a.csv", Rows: 3})
	o.Observe(Event{Kind: TableFailed, Table: "b.csv", Err: errors.New("boom")})

	entries := logs.AllUntimed()
	require.Len(t, entries, 3)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level)
	assert.Equal(t, "mapping_decided", entries[0].Message)
	assert.Equal(t, int64(91), entries[0].ContextMap()["score"])
	assert.Equal(t, zapcore.InfoLevel, entries[1].Level)
	assert.Equal(t, zapcore.WarnLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
}

func TestZapObserverRespectsLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	o := NewZap(zap.New(core))
	o.Observe(Event{Kind: StrategyAttempted, Parser: "address", Strategy: "comma"})
	assert.Zero(t, logs.Len())
}
