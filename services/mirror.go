package services

import (
	"context"

	"deposit-telegram/logger"
	"deposit-telegram/models"
)

// ApplicationMirror receives a denormalized snapshot of every created or
// updated application. Failures must never block or roll back the core
// operation, so callers go through mirrorApplication which logs and swallows.
type ApplicationMirror interface {
	SyncApplication(ctx context.Context, app *models.Application, isNew bool) error
}

var mirror ApplicationMirror

// SetMirror installs the best-effort mirroring sink. Pass nil to disable.
func SetMirror(m ApplicationMirror) {
	mirror = m
}

func mirrorApplication(ctx context.Context, app *models.Application, isNew bool) {
	if mirror == nil || app == nil {
		return
	}
	if err := mirror.SyncApplication(ctx, app, isNew); err != nil {
		logger.L.Warnw("mirror sync failed", "application_id", app.ID, "err", err)
	}
}
