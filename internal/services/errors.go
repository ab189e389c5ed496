package services

import (
	"errors"
	"net/http"

	"github.com/yungbote/apns-backend/internal/data/db"
	"github.com/yungbote/apns-backend/internal/platform/apierr"
	"github.com/yungbote/apns-backend/internal/platform/logger"
)

// internalError logs the cause and hides it behind a generic 500. A
// connection-level cause also marks the store down.
func internalError(log *logger.Logger, status *db.Status, err error, code, msg string) error {
	if status.Observe(err) {
		log.Error("store marked down", "error", err)
	} else {
		log.Error(msg, "error", err)
	}
	return apierr.New(http.StatusInternalServerError, code, errors.New(msg))
}

func storeUnavailable() error {
	return apierr.Unavailable("database_unavailable", msgDatabaseUnavailable)
}
