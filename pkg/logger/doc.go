// Package logger builds configured log/slog loggers and provides typed
// attribute helpers used across the notification service.
//
// Components never construct loggers themselves; the entrypoint builds one
// from environment configuration and passes it down via constructor options.
//
//	log := logger.NewFromConfig(cfg, "notifier")
//	log.Info("publish", logger.TagID(tagID), logger.NotificationID(id))
package logger
