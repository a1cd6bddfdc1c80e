package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/Daskott/swiftly/colors"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

const REQUEST_ID_HEADER = "X-Request-Id"

type RequestContextKey string

type ResponseWriterWithStatus struct {
	http.ResponseWriter
	Status int
}

func (r *ResponseWriterWithStatus) WriteHeader(status int) {
	r.Status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestIDMiddleware reuses a valid X-Request-Id from the client, or assigns a new one.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(REQUEST_ID_HEADER)
		if _, err := uuid.Parse(requestID); err != nil {
			requestID = uuid.NewString()
		}

		w.Header().Set(REQUEST_ID_HEADER, requestID)
		ctx := context.WithValue(r.Context(), RequestContextKey("requestID"), requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		responseWriter := &ResponseWriterWithStatus{
			ResponseWriter: w,
			Status:         200,
		}

		defer func() {
			logg.Infof("%v %v %v %v %v",
				r.Method,
				r.RequestURI,
				colors.Status(responseWriter.Status),
				colors.Yellow(fmt.Sprintf("[%v]", time.Since(start))),
				requestID(r.Context()))
		}()

		next.ServeHTTP(responseWriter, r)
	})
}

func jsonContentTypeMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware allows any origin, as alerts come straight from user devices.
func corsMiddleware() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", REQUEST_ID_HEADER},
		ExposedHeaders: []string{REQUEST_ID_HEADER},
		MaxAge:         300,
	})
}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(RequestContextKey("requestID")).(string)
	return id
}
