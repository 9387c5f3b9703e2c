package log

// Two zap cores: a debug-level file log with all details,
// and a short console stream for successes, warnings and errors.

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

// MaxLogFileSize is the size after which app.log is truncated.
const MaxLogFileSize = 50 * 1024 * 1024

var (
	mu            sync.RWMutex
	Logger        = zap.NewNop()
	consoleLogger = zap.NewNop()
	logFile       *rotatingLogWriter // nil when logging to stderr
	bufPool       = buffer.NewPool()
)

// Init builds the file and console loggers. Until Init succeeds every
// helper logs to a no-op logger, which keeps packages usable from tests.
func Init(logsDir string) error {
	if logsDir == "" {
		logsDir = "logs"
	}
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	fileConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		FunctionKey:    zapcore.OmitKey,
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05"),
		EncodeDuration: zapcore.MillisDurationEncoder,
	}
	file, err := openLogFile(filepath.Join(logsDir, "app.log"))
	var sink zapcore.WriteSyncer = file
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v, falling back to stderr\n", err)
		file, sink = nil, zapcore.AddSync(os.Stderr)
	}
	fileCore := zapcore.NewCore(
		&lineEncoder{Encoder: zapcore.NewConsoleEncoder(fileConfig)},
		sink,
		zapcore.DebugLevel,
	)

	consoleConfig := zap.NewDevelopmentConfig()
	consoleConfig.EncoderConfig.EncodeLevel = colorLevelEncoder
	consoleConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleConfig.EncoderConfig.EncodeCaller = nil
	consoleConfig.Development = false
	consoleConfig.DisableStacktrace = true
	consoleConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	console, err := consoleConfig.Build()
	if err != nil {
		if file != nil {
			file.Close()
		}
		return fmt.Errorf("failed to build console logger: %w", err)
	}

	mu.Lock()
	prev := logFile
	Logger = zap.New(fileCore)
	consoleLogger = console
	logFile = file
	mu.Unlock()

	if prev != nil {
		_ = prev.Close()
	}
	return nil
}

// Sync flushes both loggers.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = Logger.Sync()
	_ = consoleLogger.Sync()
}

func loggers() (*zap.Logger, *zap.Logger) {
	mu.RLock()
	defer mu.RUnlock()
	return Logger, consoleLogger
}

// GenerateRequestID returns a random 16-char hex id.
func GenerateRequestID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// RequestLogger returns the file logger tagged with a request id.
func RequestLogger(requestID string) *zap.Logger {
	l, _ := loggers()
	return l.With(zap.String("request_id", requestID))
}

// LogRequest records an incoming HTTP request in the file log.
func LogRequest(requestID, method, path string, fields ...zap.Field) {
	l, _ := loggers()
	all := append([]zap.Field{
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
	}, fields...)
	l.Info("HTTP request", all...)
}

// LogResponse records the outcome of a request. Server errors also reach the console.
func LogResponse(requestID string, statusCode int, durationMs int64, fields ...zap.Field) {
	l, console := loggers()
	all := append([]zap.Field{
		zap.String("request_id", requestID),
		zap.Int("status_code", statusCode),
		zap.Int64("duration_ms", durationMs),
	}, fields...)

	switch {
	case statusCode < 400:
		l.Info("HTTP response", all...)
	case statusCode < 500:
		l.Warn("HTTP response", all...)
	default:
		l.Error("HTTP response", all...)
		if path := pathField(fields); path != "" {
			console.Error(fmt.Sprintf("✗ HTTP %d %s", statusCode, path))
		} else {
			console.Error(fmt.Sprintf("✗ HTTP %d", statusCode))
		}
	}
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorWhite  = "\033[37m"
)

func colorLevelEncoder(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	switch level {
	case zapcore.DebugLevel:
		enc.AppendString(colorCyan + "DEBUG" + colorReset)
	case zapcore.InfoLevel:
		enc.AppendString(colorGreen + "SUCCESS" + colorReset)
	case zapcore.WarnLevel:
		enc.AppendString(colorYellow + "WARN" + colorReset)
	case zapcore.ErrorLevel, zapcore.FatalLevel, zapcore.PanicLevel:
		enc.AppendString(colorRed + level.CapitalString() + colorReset)
	default:
		enc.AppendString(colorWhite + level.String() + colorReset)
	}
}

func LogInfo(message string, fields ...zap.Field) {
	l, _ := loggers()
	l.Info(message, fields...)
}

// LogSuccess writes to the file log and prints a check-marked line.
func LogSuccess(message string, fields ...zap.Field) {
	l, console := loggers()
	l.Info(message, fields...)
	if ms := durationField(fields); ms > 0 {
		console.Info(fmt.Sprintf("✓ %s (%dms)", message, ms))
		return
	}
	console.Info("✓ " + message)
}

// LogError writes to the file log and prints a cross-marked line.
func LogError(message string, fields ...zap.Field) {
	l, console := loggers()
	l.Error(message, fields...)
	if ms := durationField(fields); ms > 0 {
		console.Error(fmt.Sprintf("✗ %s (%dms)", message, ms))
		return
	}
	console.Error("✗ " + message)
}

func LogWarn(message string, fields ...zap.Field) {
	l, console := loggers()
	l.Warn(message, fields...)
	console.Warn(message)
}

func LogDebug(message string, fields ...zap.Field) {
	l, _ := loggers()
	l.Debug(message, fields...)
}

func durationField(fields []zap.Field) int64 {
	for _, f := range fields {
		if f.Key == "duration_ms" && f.Type == zapcore.Int64Type {
			return f.Integer
		}
	}
	return 0
}

func pathField(fields []zap.Field) string {
	for _, f := range fields {
		if f.Key == "path" {
			return f.String
		}
	}
	return ""
}

type rotatingLogWriter struct {
	mu   sync.Mutex
	file *os.File
	path string
}

func (w *rotatingLogWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if info, err := w.file.Stat(); err == nil && info.Size() > MaxLogFileSize {
		w.file.Close()
		f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
		if err != nil {
			return 0, fmt.Errorf("failed to truncate log file: %w", err)
		}
		w.file = f
	}
	return w.file.Write(p)
}

func (w *rotatingLogWriter) Sync() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Sync()
}

// Close flushes and closes the file. Later writes fail with os.ErrClosed.
func (w *rotatingLogWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.file.Sync()
	return w.file.Close()
}

func openLogFile(path string) (*rotatingLogWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return &rotatingLogWriter{file: f, path: path}, nil
}

// lineEncoder writes "time     LEVEL message\t{json fields}".
type lineEncoder struct {
	zapcore.Encoder
}

func (e *lineEncoder) Clone() zapcore.Encoder {
	return &lineEncoder{Encoder: e.Encoder.Clone()}
}

func (e *lineEncoder) EncodeEntry(entry zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	buf := bufPool.Get()
	buf.AppendString(entry.Time.Format("2006-01-02 15:04:05"))
	buf.AppendString("     ")
	buf.AppendString(entry.Level.CapitalString())
	buf.AppendString(" ")
	buf.AppendString(entry.Message)

	if len(fields) > 0 {
		enc := zapcore.NewMapObjectEncoder()
		for _, f := range fields {
			f.AddTo(enc)
		}
		if data, err := json.Marshal(enc.Fields); err == nil {
			buf.AppendString("\t")
			buf.AppendBytes(data)
		}
	}

	buf.AppendString("\n")
	return buf, nil
}
