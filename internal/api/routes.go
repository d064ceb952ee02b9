// 包 api：集中注册拼图 HTTP API 路由，主入口按 API_BASE 前缀挂载
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"geo-puzzle/internal/game"
	"geo-puzzle/internal/locate"
	"geo-puzzle/internal/logger"
	"geo-puzzle/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 4 << 20

// Deps：路由依赖；Locator 可为 nil
type Deps struct {
	Manager *game.Manager
	Catalog *game.Catalog
	Locator locate.Locator
}

// 文档注释：构建 API 路由
// 背景：MapSurface（浏览器）通过这些端点开局、上报拖放结束与放弃事件，并按返回的视图重绘。
func BuildRoutes(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(observeDuration)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "countries": d.Catalog.Len()})
	})
	r.Get("/countries", func(w http.ResponseWriter, r *http.Request) {
		cs := d.Catalog.Countries()
		out := make([]countryView, 0, len(cs))
		for _, c := range cs {
			out = append(out, countryView{Code: c.Code, Name: c.Name, Ordinal: c.Ordinal})
		}
		writeJSON(w, http.StatusOK, out)
	})
	r.Get("/map", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, locate.Resolve(d.Locator, locate.ClientIP(r)))
	})

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			s, err := d.Manager.Start(r.Context())
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusCreated, viewOf(s))
		})
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			s, err := d.Manager.Get(r.Context(), chi.URLParam(r, "id"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, viewOf(s))
		})
		r.Post("/{id}/shapes/{code}/drop", func(w http.ResponseWriter, r *http.Request) {
			var req dropRequest
			if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
				writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad drop body: " + err.Error()})
				return
			}
			id, code := chi.URLParam(r, "id"), chi.URLParam(r, "code")
			var (
				out game.Outcome
				s   *game.Session
				err error
			)
			switch {
			case len(req.Rings) > 0:
				out, s, err = d.Manager.Drop(r.Context(), id, code, req.Rings)
			case req.Anchor != nil:
				out, s, err = d.Manager.DropAt(r.Context(), id, code, *req.Anchor)
			default:
				writeJSON(w, http.StatusBadRequest, errorBody{Error: "rings or anchor required"})
				return
			}
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, eventView{Outcome: out, Session: viewOf(s)})
		})
		r.Post("/{id}/shapes/{code}/confirm", func(w http.ResponseWriter, r *http.Request) {
			out, s, err := d.Manager.Confirm(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "code"))
			if err != nil {
				writeError(w, err)
				return
			}
			writeJSON(w, http.StatusOK, eventView{Outcome: out, Session: viewOf(s)})
		})
	})
	return r
}

func observeDuration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		route := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		metrics.RequestDurationMs.WithLabelValues(route).Observe(float64(time.Since(start).Milliseconds()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("cache-control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError：会话/形状不存在为 404，轮廓不匹配为 400，目录为空为 503，其余为 500
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrSessionNotFound), errors.Is(err, game.ErrUnknownShape):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, game.ErrBadGeometry):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, game.ErrNoCountries):
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: err.Error()})
	default:
		logger.L().Error("api_error", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
