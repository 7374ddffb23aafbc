package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"repo-scout/internal/common"
	"repo-scout/internal/port"
)

// 榜单接口默认/最大返回条数
const (
	defaultTopLimit = 10
	maxTopLimit     = 100
)

// Server 只读看板接口：查询最近一轮洞察和历史动量榜单
type Server struct {
	repo port.Repository
	addr string
}

func NewServer(repo port.Repository, addr string) *Server {
	if addr == "" {
		addr = ":8080"
	}
	return &Server{repo: repo, addr: addr}
}

// Handler 返回路由表，方便测试时直接挂到 httptest 上
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/insights", s.handleInsights)
	mux.HandleFunc("/api/top", s.handleTop)
	return mux
}

// ListenAndServe 启动 HTTP 服务，阻塞直到出错
func (s *Server) ListenAndServe() error {
	fmt.Printf("🌐 看板服务启动: %s\n", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	insights, err := s.repo.LatestInsights(r.Context())
	if err != nil {
		writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, insights)
}

func (s *Server) handleTop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	limit := defaultTopLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit 必须是正整数"})
			return
		}
		limit = n
	}
	if limit > maxTopLimit {
		limit = maxTopLimit
	}

	repos, err := s.repo.TopByMomentum(r.Context(), limit)
	if err != nil {
		writeJSON(w, statusForError(err), map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  repos,
		"count": len(repos),
	})
}

// statusForError 把应用错误码翻译成 HTTP 状态码
func statusForError(err error) int {
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case common.ErrCodeNotFound:
			return http.StatusNotFound
		case common.ErrCodeInvalidInput:
			return http.StatusBadRequest
		}
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
