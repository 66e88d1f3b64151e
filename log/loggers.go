package log

import (
	"fmt"
	"log"
	"strings"
	"time"
)

// Info takes a pointer subLogger struct and string sends to StageLogEvent
func Info(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(infoLevel), data)
}

// Infoln takes a pointer subLogger struct and interface sends to StageLogEvent
func Infoln(sl *SubLogger, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(infoLevel), fmt.Sprint(v...))
}

// Infof takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Infof(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(infoLevel), fmt.Sprintf(data, v...))
}

// Debug takes a pointer subLogger struct and string sends to StageLogEvent
func Debug(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(debugLevel), data)
}

// Debugf takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Debugf(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(debugLevel), fmt.Sprintf(data, v...))
}

// Warn takes a pointer subLogger struct & string and sends to StageLogEvent
func Warn(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(warnLevel), data)
}

// Warnf takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Warnf(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(warnLevel), fmt.Sprintf(data, v...))
}

// Error takes a pointer subLogger struct & interface formats and sends to StageLogEvent
func Error(sl *SubLogger, data string) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(errorLevel), data)
}

// Errorln takes a pointer subLogger struct, string & interface formats and sends to StageLogEvent
func Errorln(sl *SubLogger, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(errorLevel), fmt.Sprint(v...))
}

// Errorf takes a pointer subLogger struct, string and interface formats sends to StageLogEvent
func Errorf(sl *SubLogger, data string, v ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()
	fields := sl.getFields()
	fields.stage(fields.header(errorLevel), fmt.Sprintf(data, v...))
}

func displayError(err error) {
	if err != nil {
		log.Printf("Logger write error: %v\n", err)
	}
}

type level int

const (
	infoLevel level = iota
	warnLevel
	debugLevel
	errorLevel
)

// header returns the configured header for a level, or an empty string when
// the level is disabled for this sub logger
func (l *logFields) header(lvl level) string {
	if l == nil {
		return ""
	}
	switch lvl {
	case infoLevel:
		if l.info {
			return l.logger.InfoHeader
		}
	case warnLevel:
		if l.warn {
			return l.logger.WarnHeader
		}
	case debugLevel:
		if l.debug {
			return l.logger.DebugHeader
		}
	case errorLevel:
		if l.error {
			return l.logger.ErrorHeader
		}
	}
	return ""
}

// stage writes a log event to the sub logger output
func (l *logFields) stage(header, data string) {
	if l == nil || header == "" {
		return
	}
	var sb strings.Builder
	sb.WriteString(header)
	if l.logger.TimestampFormat != "" {
		sb.WriteString(time.Now().Format(l.logger.TimestampFormat))
	}
	if l.logger.ShowLogSystemName {
		sb.WriteString("[")
		sb.WriteString(l.name)
		sb.WriteString("]")
	}
	sb.WriteString(l.logger.Spacer)
	sb.WriteString(data)
	if !strings.HasSuffix(data, "\n") {
		sb.WriteString("\n")
	}
	_, err := l.output.Write([]byte(sb.String()))
	displayError(err)
}
