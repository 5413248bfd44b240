package logging

import (
	"fmt"

	"github.com/rs/zerolog"
)

// Adapter implements programmer.Logger on top of a zerolog.Logger.
type Adapter struct {
	logger zerolog.Logger
}

// NewAdapter wraps logger.
func NewAdapter(logger zerolog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

func (a *Adapter) Debug(msg string, keysAndValues ...interface{}) {
	withFields(a.logger.Debug(), keysAndValues).Msg(msg)
}

func (a *Adapter) Info(msg string, keysAndValues ...interface{}) {
	withFields(a.logger.Info(), keysAndValues).Msg(msg)
}

func (a *Adapter) Error(msg string, keysAndValues ...interface{}) {
	withFields(a.logger.Error(), keysAndValues).Msg(msg)
}

// withFields attaches key-value pairs. A trailing key without a value is
// logged under "extra".
func withFields(e *zerolog.Event, keysAndValues []interface{}) *zerolog.Event {
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 >= len(keysAndValues) {
			e = e.Interface("extra", keysAndValues[i])
			break
		}

		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}

		switch v := keysAndValues[i+1].(type) {
		case error:
			e = e.AnErr(key, v)
		default:
			e = e.Interface(key, v)
		}
	}
	return e
}
