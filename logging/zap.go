package logging

import (
	"github.com/go-kit/kit/log"
	"go.uber.org/zap"
)

// ZapAdapter exposes a zap.Logger through the go-kit log.Logger interface,
// so components built against this package can emit through an existing
// zap pipeline.
type ZapAdapter struct {
	*zap.Logger
}

var _ log.Logger = ZapAdapter{}

// NewZapAdapter wraps the given zap logger.  A nil logger yields an
// adapter over zap.NewNop().
func NewZapAdapter(l *zap.Logger) ZapAdapter {
	if l == nil {
		l = zap.NewNop()
	}

	return ZapAdapter{Logger: l}
}

func (za ZapAdapter) Log(keyvals ...interface{}) error {
	fields := make([]zap.Field, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key, ok := keyvals[i].(string)
		if !ok {
			key = "unknown"
		}

		fields = append(fields, zap.Any(key, keyvals[i+1]))
	}

	// a trailing odd keyval is dropped rather than reported; that would be
	// a caller bug and zap has no slot for it

	za.Logger.Info("", fields...)
	return nil
}
