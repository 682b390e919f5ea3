// Package handler is the serverless entry point: every request is rewritten to Handler.
package handler

import (
	"net/http"
	"sync"

	"grayco-suite/bootstrap"

	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/rs/zerolog/log"
)

var (
	once    sync.Once
	app     http.HandlerFunc
	initErr error
)

// Handler builds the app on the first request and reuses it while the instance stays warm.
// A startup failure answers 503 instead of crashing the instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		fa, err := bootstrap.New()
		if err != nil {
			initErr = err
			log.Error().Err(err).Msg("handler: startup failed")
			return
		}
		app = adaptor.FiberApp(fa)
	})
	if initErr != nil {
		http.Error(w, `{"status":"error","error":{"message":"Service unavailable","statusCode":503}}`, http.StatusServiceUnavailable)
		return
	}
	r.RequestURI = r.URL.String()
	app(w, r)
}
