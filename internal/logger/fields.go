package logger

import (
	"time"

	"go.uber.org/zap"
)

// RequestID is the request id field set by the HTTP middleware.
func RequestID(v string) zap.Field {
	return zap.String("request_id", v)
}

func Method(v string) zap.Field {
	return zap.String("method", v)
}

func Path(v string) zap.Field {
	return zap.String("path", v)
}

func Status(v int) zap.Field {
	return zap.Int("status", v)
}

func Duration(v time.Duration) zap.Field {
	return zap.Duration("duration", v)
}

// Store names the store a log entry refers to, "primary" or "secondary".
func Store(v string) zap.Field {
	return zap.String("store", v)
}

// Session is the unit of work session id.
func Session(v string) zap.Field {
	return zap.String("session_id", v)
}

func HeroID(v int64) zap.Field {
	return zap.Int64("hero_id", v)
}

func HeroName(v string) zap.Field {
	return zap.String("hero_name", v)
}

func Pending(v int) zap.Field {
	return zap.Int("pending", v)
}

func Err(err error) zap.Field {
	return zap.Error(err)
}
