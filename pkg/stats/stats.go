package stats

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
)

const (
	gigabyte = 1 << 30
	dumpFile = "stats"
)

// EnableMemoryStatistics starts a goroutine that logs the process memory
// and goroutines every interval and runs sample, if any. Once ctx is done
// the prometheus metrics are appended to a stats file in datadir.
func EnableMemoryStatistics(
	ctx context.Context, interval time.Duration, datadir string, sample func(),
) {
	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				LogRuntimeStatistics()
				if sample != nil {
					sample()
				}
			case <-ctx.Done():
				if err := DumpPrometheusDefaults(datadir); err != nil {
					log.WithError(err).Warn("failed to dump stats")
				}
				return
			}
		}
	}()
}

// LogRuntimeStatistics logs allocations and goroutines at debug level.
func LogRuntimeStatistics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	log.WithFields(log.Fields{
		"total_alloc_gb": toGigabytes(m.TotalAlloc),
		"heap_alloc_gb":  toGigabytes(m.HeapAlloc),
		"mallocs":        m.Mallocs,
		"frees":          m.Frees,
		"goroutines":     runtime.NumGoroutine(),
	}).Debug("runtime stats")
}

func toGigabytes(bytes uint64) float64 {
	return float64(bytes) / gigabyte
}

// DumpPrometheusDefaults appends the metrics of the default registry to the
// stats file in datadir.
func DumpPrometheusDefaults(datadir string) error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return err
	}

	file, err := os.OpenFile(
		filepath.Join(datadir, dumpFile), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644,
	)
	if err != nil {
		return err
	}
	defer file.Close()

	w := bufio.NewWriter(file)
	for _, f := range families {
		if _, err := w.WriteString(f.String() + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}
