package stripe

import (
	"fmt"

	"github.com/jhoicas/storefront-api/pkg/logger"
)

// leveledLogger adapta el logger de la app a stripe.LeveledLoggerInterface.
// Los mensajes de debug de la librería se bajan a trace para no inundar el log.
type leveledLogger struct {
	log *logger.Logger
}

func (l leveledLogger) Debugf(format string, v ...interface{}) {
	zl := l.log.Zerolog()
	zl.Trace().Msg(fmt.Sprintf(format, v...))
}

func (l leveledLogger) Infof(format string, v ...interface{}) {
	l.log.Debug().Msg(fmt.Sprintf(format, v...))
}

func (l leveledLogger) Warnf(format string, v ...interface{}) {
	l.log.Warn().Msg(fmt.Sprintf(format, v...))
}

func (l leveledLogger) Errorf(format string, v ...interface{}) {
	l.log.Error().Msg(fmt.Sprintf(format, v...))
}
