package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/upb/schoolms-api/middleware"
	"github.com/upb/schoolms-api/utils"
)

// Page is the envelope for list responses
type Page struct {
	Items  interface{} `json:"items"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
}

// uuidParam parses a chi route parameter, writing 400 when it is not a UUID
func uuidParam(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		_ = utils.WriteBadRequest(w, "Invalid "+name+" format", nil)
		return uuid.Nil, false
	}
	return id, true
}

// pagination reads limit and offset from the query string. Bounds are applied by the services.
func pagination(r *http.Request) (limit, offset int) {
	q := r.URL.Query()
	limit, _ = strconv.Atoi(q.Get("limit"))
	offset, _ = strconv.Atoi(q.Get("offset"))
	return limit, offset
}

// requestLogger returns logger annotated with the request id
func requestLogger(logger *zap.Logger, r *http.Request) *zap.Logger {
	return logger.With(zap.String("request_id", middleware.GetRequestIDFromContext(r.Context())))
}

// writeOK writes the data envelope and logs encoding failures
func writeOK(w http.ResponseWriter, logger *zap.Logger, data interface{}) {
	if err := utils.WriteOK(w, data); err != nil {
		logger.Error("failed to write response", zap.Error(err))
	}
}

// NotFound answers unknown routes with a JSON 404
func NotFound(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteNotFound(w, "Route not found")
}

// MethodNotAllowed answers known routes called with the wrong method
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	_ = utils.WriteJSON(w, http.StatusMethodNotAllowed, utils.ErrorResponse{
		Error:   "method_not_allowed",
		Message: "Method not allowed",
	})
}
