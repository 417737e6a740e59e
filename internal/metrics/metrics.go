package metrics

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drand/cbcsuite/common"
	"github.com/drand/cbcsuite/common/log"
)

var (
	// PrivateMetrics holds every metric of the process, go runtime included.
	PrivateMetrics = prometheus.NewRegistry()

	// CipherBytes counts the bytes run through a cipher, per direction.
	CipherBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cipher_bytes_total",
		Help: "Number of bytes encrypted or decrypted",
	}, []string{"cipher", "direction"})

	// SuiteLookups counts registry lookups by outcome: found or not_found.
	SuiteLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "suite_lookups_total",
		Help: "Number of cipher suite lookups by negotiated code",
	}, []string{"result"})

	// SessionsCreated counts the sessions keyed per suite.
	SessionsCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "sessions_created_total",
		Help: "Number of sessions whose traffic keys were derived",
	}, []string{"suite"})

	// BenchThroughput is the last throughput measured by the bench command.
	BenchThroughput = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "bench_throughput_bytes_per_second",
		Help: "Throughput of the last benchmark run",
	}, []string{"cipher"})

	buildTime = prometheus.NewUntypedFunc(prometheus.UntypedOpts{
		Name:        "cbcsuite_build_time",
		Help:        "Timestamp when the binary was built in seconds since the Epoch",
		ConstLabels: map[string]string{"build": common.COMMIT, "version": common.GetAppVersion().String()},
	}, func() float64 { return float64(getBuildTimestamp(common.BUILDDATE)) })

	metricsBound sync.Once
)

// Direction labels of CipherBytes.
const (
	Encrypt = "encrypt"
	Decrypt = "decrypt"
)

func bindMetrics(l log.Logger) {
	collectorsToBind := []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		CipherBytes,
		SuiteLookups,
		SessionsCreated,
		BenchThroughput,
		buildTime,
	}
	for _, c := range collectorsToBind {
		if err := PrivateMetrics.Register(c); err != nil {
			l.Errorw("error in bindMetrics", "err", err)
			return
		}
	}
}

// Start serves PrivateMetrics on /metrics at metricsBind, which may be a bare
// port. It returns nil when the listener cannot be opened.
func Start(logger log.Logger, metricsBind string) net.Listener {
	logger.Infow("metrics starting", "desired_port", metricsBind)

	metricsBound.Do(func() {
		bindMetrics(logger)
	})

	if !strings.Contains(metricsBind, ":") {
		metricsBind = "127.0.0.1:" + metricsBind
	}
	//nolint:noctx
	l, err := net.Listen("tcp", metricsBind)
	if err != nil {
		logger.Warnw("metrics listen failed", "err", err)
		return nil
	}
	logger.Infow("metric listener started", "addr", l.Addr())

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(PrivateMetrics, promhttp.HandlerOpts{Registry: PrivateMetrics}))

	s := http.Server{Addr: l.Addr().String(), ReadHeaderTimeout: 3 * time.Second, Handler: mux}
	go func() {
		logger.Warnw("metrics listen finished", "err", s.Serve(l))
	}()
	return l
}

func getBuildTimestamp(buildDate string) int64 {
	if buildDate == "" {
		return 0
	}

	t, err := time.Parse("02/01/2006@15:04:05", buildDate)
	if err != nil {
		return 0
	}
	return t.Unix()
}
