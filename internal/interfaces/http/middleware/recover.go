package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/turtacn/Prologos-Jurimetrics/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/errors"
	"github.com/turtacn/Prologos-Jurimetrics/pkg/types/common"
)

// Recoverer turns a handler panic into a logged 500 with the standard
// error envelope.
func Recoverer(logger logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rv := recover()
				if rv == nil {
					return
				}
				if rv == http.ErrAbortHandler {
					panic(rv)
				}
				logger.Error("panic while serving request",
					logging.Any("panic", rv),
					logging.String("path", r.URL.Path),
					logging.String("request_id", GetRequestID(r.Context())),
					logging.String("stack", string(debug.Stack())))

				resp := common.NewErrorResponse(string(errors.CodeInternal), "internal server error")
				resp.RequestID = GetRequestID(r.Context())
				w.Header().Set("Content-Type", "application/json; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(resp)
			}()
			next.ServeHTTP(w, r)
		})
	}
}

//Personal.AI order the ending
