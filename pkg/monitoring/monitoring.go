// Package monitoring exposes playback counters and an optional
// metrics/profiling HTTP endpoint.
package monitoring

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wallplay/wallplay/pkg/config"
	"github.com/wallplay/wallplay/pkg/logger"
)

type Monitoring struct {
	conf   config.Monitoring
	log    *logger.Logger
	server *http.Server
}

// New creates the monitoring service. The tag param specifies the owner
// label for logs.
func New(conf config.Monitoring, tag string, log *logger.Logger) *Monitoring {
	h := http.NewServeMux()

	if conf.ProfilingEnabled {
		prefix := conf.URLPrefix + "/debug/pprof"
		h.HandleFunc(prefix+"/", pprof.Index)
		h.HandleFunc(prefix+"/cmdline", pprof.Cmdline)
		h.HandleFunc(prefix+"/profile", pprof.Profile)
		h.HandleFunc(prefix+"/symbol", pprof.Symbol)
		h.HandleFunc(prefix+"/trace", pprof.Trace)
		h.Handle(prefix+"/allocs", pprof.Handler("allocs"))
		h.Handle(prefix+"/block", pprof.Handler("block"))
		h.Handle(prefix+"/goroutine", pprof.Handler("goroutine"))
		h.Handle(prefix+"/heap", pprof.Handler("heap"))
	}
	if conf.MetricEnabled {
		h.Handle(conf.URLPrefix+"/metrics", promhttp.Handler())
	}

	return &Monitoring{
		conf: conf,
		log:  log.Extend(log.With().Str("m", tag)),
		server: &http.Server{
			Addr:    fmt.Sprintf(":%d", conf.Port),
			Handler: h,
		},
	}
}

func (m *Monitoring) Enabled() bool {
	return m.conf.Port > 0 && (m.conf.MetricEnabled || m.conf.ProfilingEnabled)
}

func (m *Monitoring) Run() {
	if !m.Enabled() {
		return
	}
	m.log.Info().Str("addr", m.server.Addr).Msg("monitoring server started")
	go func() {
		if err := m.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			m.log.Error().Err(err).Msg("monitoring server failed")
		}
	}()
}

func (m *Monitoring) Shutdown() {
	if !m.Enabled() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = m.server.Shutdown(ctx)
}

func (m *Monitoring) String() string {
	return fmt.Sprintf("monitoring::%s:%d", m.conf.URLPrefix, m.conf.Port)
}
