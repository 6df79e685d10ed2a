package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/jmgilman/go/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"

	pb "github.com/Crystal-SDS/filter-samples/api/storletpb"
	"github.com/Crystal-SDS/filter-samples/internal/node"
	"github.com/Crystal-SDS/filter-samples/internal/storlet"
)

// HTTPServer 调试用的 HTTP 接口
//
//	PUT|GET /v1/storlets/{storlet}/objects/{id}?<param>=<value>
//	GET     /v1/storlets/{storlet}/stats
//	GET     /metrics
//	GET     /health
type HTTPServer struct {
	node   *node.Node
	router *mux.Router
	srv    *http.Server
	logger log.Logger
}

// NewHTTPServer gatherer 为 nil 时使用默认的 prometheus 注册表
func NewHTTPServer(addr string, n *node.Node, gatherer prometheus.Gatherer, logger log.Logger) *HTTPServer {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	s := &HTTPServer{
		node:   n,
		router: mux.NewRouter(),
		logger: log.With(logger, "component", "http"),
	}
	s.setupRoutes(gatherer)
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *HTTPServer) setupRoutes(gatherer prometheus.Gatherer) {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/v1/storlets/{storlet}").Subrouter()
	v1.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)
	v1.HandleFunc("/objects/{id:.+}", s.handlePut).Methods(http.MethodPut)
	v1.HandleFunc("/objects/{id:.+}", s.handleGet).Methods(http.MethodGet)
}

// Handler 返回路由，便于测试
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start 阻塞提供服务，Shutdown 之后返回 nil
func (s *HTTPServer) Start() error {
	level.Info(s.logger).Log("msg", "HTTP server listening", "addr", s.srv.Addr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrapf(err, errors.CodeNetwork, "http server at %s", s.srv.Addr)
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"node":      s.node.Self(),
		"storlets":  s.node.Names(),
		"timestamp": time.Now().Unix(),
	})
}

func (s *HTTPServer) handleStats(w http.ResponseWriter, r *http.Request) {
	dump, err := s.node.Stats(mux.Vars(r)["storlet"])
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, dump)
}

func (s *HTTPServer) handlePut(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMessageSize))
	if err != nil {
		http.Error(w, "read body failed or too large", http.StatusBadRequest)
		return
	}

	resp, err := s.node.Invoke(r.Context(), &pb.InvokeRequest{
		Storlet:  vars["storlet"],
		Op:       storlet.OpPut,
		ObjectId: vars["id"],
		Params:   queryParams(r),
		Data:     body,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeProto(w, http.StatusCreated, resp)
}

func (s *HTTPServer) handleGet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	resp, err := s.node.Invoke(r.Context(), &pb.InvokeRequest{
		Storlet:  vars["storlet"],
		Op:       storlet.OpGet,
		ObjectId: vars["id"],
		Params:   queryParams(r),
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	cacheStatus := "MISS"
	if resp.Hit {
		cacheStatus = "HIT"
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("X-Cache", cacheStatus)
	w.Header().Set("X-Storlet-Node", resp.Node)
	_, _ = w.Write(resp.GetData())
}

// queryParams 查询参数作为 storlet 参数，同名参数取第一个
func queryParams(r *http.Request) map[string]string {
	q := r.URL.Query()
	if len(q) == 0 {
		return nil
	}
	params := make(map[string]string, len(q))
	for k, v := range q {
		params[k] = v[0]
	}
	return params
}

var codeToHTTP = map[errors.ErrorCode]int{
	errors.CodeInvalidInput:  http.StatusBadRequest,
	errors.CodeNotFound:      http.StatusNotFound,
	errors.CodeAlreadyExists: http.StatusConflict,
	errors.CodeForbidden:     http.StatusForbidden,
	errors.CodeUnavailable:   http.StatusServiceUnavailable,
	errors.CodeNetwork:       http.StatusBadGateway,
}

func (s *HTTPServer) writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	httpStatus, ok := codeToHTTP[code]
	if !ok {
		httpStatus = http.StatusInternalServerError
		level.Error(s.logger).Log("msg", "request failed", "err", err)
	}
	writeJSON(w, httpStatus, map[string]string{
		"code":  string(code),
		"error": err.Error(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeProto 使用 proto 字段名输出，零值字段也保留
func writeProto(w http.ResponseWriter, status int, m proto.Message) {
	b, err := protojson.MarshalOptions{UseProtoNames: true, EmitUnpopulated: true}.Marshal(m)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(b)
}
