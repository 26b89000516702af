package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheLookupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "gamebook_content_cache_lookups_total",
		Help: "Total number of book content cache lookups by result.",
	},
	[]string{"result"},
)
