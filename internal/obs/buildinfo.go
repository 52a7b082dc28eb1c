package obs

import (
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	buildInfoOnce sync.Once

	buildInfo = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Build information of the running binary; always 1.",
		},
		[]string{"version", "commit", "goversion"},
	)
)

// InitBuildInfo publishes crudstore_build_info. An empty or "dev" commit is
// replaced by the VCS revision stamped into the binary, if any.
func InitBuildInfo(version, commit string) {
	buildInfoOnce.Do(func() {
		prometheus.MustRegister(buildInfo)
	})
	if commit == "" || commit == "dev" {
		commit = vcsRevision(commit)
	}
	buildInfo.WithLabelValues(version, commit, runtime.Version()).Set(1)
}

func vcsRevision(fallback string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fallback
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return fallback
}
