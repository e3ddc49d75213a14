// Package logger holds the process wide zap logger and the field helpers
// used across the service.
//
//	logger.Init(logger.Config{Env: "prod", Level: "info", ServiceName: "heroes"})
//	defer logger.Sync()
//
//	log := logger.From(ctx).Named("uow")
//	log.Warn("primary commit failed", logger.Session(id), logger.Err(err))
package logger
