package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config del logger de la aplicación.
type Config struct {
	Env     string // "development" escribe en consola; cualquier otro valor, JSON
	Level   string // nivel mínimo; vacío o desconocido es info
	Service string // si no está vacío, cada evento lleva el campo service
}

// Logger envuelve un zerolog.Logger para inyectarlo en casos de uso y handlers.
type Logger struct {
	zl zerolog.Logger
}

// New construye el logger del proceso y lo instala como logger global de zerolog.
func New(cfg Config) *Logger {
	out := io.Writer(os.Stdout)
	if cfg.Env == "development" {
		out = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}
	ctx := zerolog.New(out).Level(levelOf(cfg.Level)).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	l := &Logger{zl: ctx.Logger()}
	log.Logger = l.zl
	return l
}

// NewWithWriter escribe JSON en w; no toca el logger global.
func NewWithWriter(w io.Writer, level string) *Logger {
	return &Logger{zl: zerolog.New(w).Level(levelOf(level)).With().Timestamp().Logger()}
}

// Nop descarta todos los eventos.
func Nop() *Logger {
	return &Logger{zl: zerolog.Nop()}
}

func levelOf(s string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

func (l *Logger) Trace() *zerolog.Event { return l.zl.Trace() }
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With abre un contexto para derivar un sublogger con campos fijos.
func (l *Logger) With() zerolog.Context { return l.zl.With() }

// Zerolog expone el logger subyacente.
func (l *Logger) Zerolog() zerolog.Logger { return l.zl }
