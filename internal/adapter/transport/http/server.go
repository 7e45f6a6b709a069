package http_server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/dayanaadylkhanova/device-readings/internal/adapter/transport/payload"
	"github.com/dayanaadylkhanova/device-readings/internal/entity"
	"github.com/dayanaadylkhanova/device-readings/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const (
	msgDeviceNotFound   = "Device not found"
	msgNotFound         = "Not Found"
	msgMethodNotAllowed = "Method Not Allowed"
	msgTooLarge         = "Payload too large"
)

type Server struct {
	log     *zap.Logger
	addr    string
	store   service.DeviceStore
	maxBody int64
	handler http.Handler
	httpSrv *http.Server
}

// Mounts are optional handlers served next to the API; nil entries are skipped.
type Mounts struct {
	Metrics   http.Handler
	Websocket http.Handler
}

func NewServer(log *zap.Logger, addr string, store service.DeviceStore, maxBody int64, mounts Mounts) *Server {
	s := &Server{log: log, addr: addr, store: store, maxBody: maxBody}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(zapLogger(log))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, msgNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, msgMethodNotAllowed)
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) })
	r.Get("/ping", s.handlePing())
	r.Post("/readings", s.handleReadings())
	r.Get("/devices/{id}/latest_timestamp", s.handleLatestTimestamp())
	r.Get("/devices/{id}/total_count", s.handleTotalCount())
	if mounts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", mounts.Metrics)
	}
	if mounts.Websocket != nil {
		r.Method(http.MethodGet, "/ws", mounts.Websocket)
	}

	s.handler = r
	s.httpSrv = &http.Server{Addr: addr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	return s
}

func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) Start() error {
	s.log.Info("http listen", zap.String("addr", s.addr))
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

func zapLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			log.Info("http",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.String("request_id", middleware.GetReqID(r.Context())),
				zap.Duration("latency", time.Since(start)),
			)
		})
	}
}

func (s *Server) handlePing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, entity.PingResponse{Message: "Hello world!", Status: "ok"})
	}
}

func (s *Server) handleReadings() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.maxBody > 0 {
			r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)
		}
		uid, samples, err := payload.Decode(r.Body)
		if err != nil {
			var perr *payload.Error
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &perr):
				writeError(w, http.StatusBadRequest, perr.Message)
			case errors.As(err, &tooLarge):
				writeError(w, http.StatusRequestEntityTooLarge, msgTooLarge)
			default:
				s.log.Warn("read readings body", zap.Error(err))
				writeError(w, http.StatusBadRequest, payload.MsgMalformedJSON)
			}
			return
		}

		accepted := s.store.Ingest(uid, samples)
		s.log.Debug("readings ingested",
			zap.String("uid", uid),
			zap.Int("received", len(samples)),
			zap.Int("accepted", accepted),
		)
		writeJSON(w, http.StatusOK, entity.SuccessResponse{Success: true})
	}
}

func (s *Server) handleLatestTimestamp() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		at, ok, err := s.store.LatestTimestamp(deviceUID(r))
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		var resp entity.LatestTimestampResponse
		if ok {
			v := at.Format()
			resp.LatestTimestamp = &v
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func (s *Server) handleTotalCount() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		total, err := s.store.TotalCount(deviceUID(r))
		if err != nil {
			s.writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, entity.TotalCountResponse{TotalCount: total})
	}
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrDeviceNotFound) {
		writeError(w, http.StatusNotFound, msgDeviceNotFound)
		return
	}
	s.log.Error("store", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}

// deviceUID returns the {id} segment decoded. chi routes on RawPath when it is
// set, so only then is the parameter still escaped.
func deviceUID(r *http.Request) string {
	raw := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return raw
	}
	if uid, err := url.PathUnescape(raw); err == nil {
		return uid
	}
	return raw
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, entity.ErrorResponse{Error: msg})
}
