package observe

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type zapObserver struct {
	log *zap.Logger
}

// NewZap renders events through a zap logger. Mapping, parser and
// qualification events are debug level; table completion is info; table
// failures are warnings.
func NewZap(log *zap.Logger) Observer {
	if log == nil {
		return nop{}
	}
	return zapObserver{log: log.Named("pipeline")}
}

func (z zapObserver) Observe(e Event) {
	level := zapcore.DebugLevel
	switch e.Kind {
	case TableCompleted:
		level = zapcore.InfoLevel
	case TableFailed, MappingConflict:
		level = zapcore.WarnLevel
	}
	ce := z.log.Check(level, string(e.Kind))
	if ce == nil {
		return
	}
	ce.Write(fields(e)...)
}

func fields(e Event) []zap.Field {
	fs := make([]zap.Field, 0, 8)
	if e.Table != "" {
		fs = append(fs, zap.String("table", e.Table))
	}
	if e.Row > 0 {
		fs = append(fs, zap.Int("row", e.Row))
	}
	switch e.Kind {
	case MappingDecided, MappingConflict, CombinedDetected:
		fs = append(fs, zap.String("field", e.Field), zap.String("column", e.Column), zap.String("method", e.Method))
		if e.Score > 0 {
			fs = append(fs, zap.Int("score", e.Score))
		}
	case StrategyAttempted:
		fs = append(fs, zap.String("parser", e.Parser), zap.String("strategy", e.Strategy), zap.Bool("valid", e.Valid))
	case RecordQualified:
		fs = append(fs, zap.Bool("qualified", e.Qualified))
		if len(e.Reasons) > 0 {
			fs = append(fs, zap.Strings("reasons", e.Reasons))
		}
	case TableCompleted:
		fs = append(fs, zap.Int("rows", e.Rows), zap.Duration("took", e.Duration))
	case TableFailed:
		fs = append(fs, zap.Error(e.Err))
	}
	return fs
}
