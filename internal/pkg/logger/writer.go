package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
)

// LogWriter 适配 gorm logger.Writer
type LogWriter struct {
	zapcore.WriteSyncer
}

func (l *LogWriter) Printf(format string, args ...interface{}) {
	_, _ = l.WriteSyncer.Write([]byte(fmt.Sprintf(format, args...) + "\n"))
}

// GetWriter 未初始化时写到 stdout
func GetWriter() *LogWriter {
	if logWriter == nil {
		return &LogWriter{zapcore.AddSync(os.Stdout)}
	}
	return logWriter
}
