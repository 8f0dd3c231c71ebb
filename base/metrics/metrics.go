/*Package metrics wraps datadog-go to faciliate metric recording
Following are naming convention of metric:
- Internal process time: *.time
- External latency: *.latency
- Error: *.err
- Warning: *.warn
*/
package metrics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/spf13/viper"

	"github.com/arkpunks/goapi/base/env"
	"github.com/arkpunks/goapi/base/log"
)

const (
	// TagValueNA is used for tags whose values are not available.
	TagValueNA = "n/a"

	ddClientsSize    = 16 // needs to be 2^n
	ddClientsIdxMask = ddClientsSize - 1

	// buffer 10 counters before sending to statsd
	bufferMetrics = 10
)

var (
	initOnce = sync.Once{}

	// DdPort is the statsd port of the datadog agent
	DdPort = 8125

	// ddClientsIdx is used for accessing ddClients by round robin scheduling
	ddClientsIdx = int32(0)
	ddClients    []statsCli
)

type statsCli interface {
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
}

func initDDClient() {
	host := viper.GetString("datadog_host")
	ddClients = make([]statsCli, ddClientsSize)
	for i := 0; i < ddClientsSize; i++ {
		// one buffered connection pool toward the statsd agent, shared round robin
		addr := fmt.Sprintf("%s:%d", host, DdPort)
		log.Log().WithFields(log.Fields{"addr": addr, "idx": i}).Info("connecting to datadog agent")

		var err error
		ddClients[i], err = statsd.NewBuffered(addr, bufferMetrics)
		if err != nil {
			log.Log().WithFields(log.Fields{"addr": addr, "err": err}).Panic(
				"can't talk to datadog agent")
		}
	}
}

func nextClient() statsCli {
	initOnce.Do(initDDClient)
	i := atomic.AddInt32(&ddClientsIdx, 1) & ddClientsIdxMask
	return ddClients[i]
}

// Ender provides interface for BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpAvg(key string, val float64, tags ...string)
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)

	BumpTime(key string, tags ...string) Ender
}

// Option is functional parameter for metrics option
type Option func(*opt)

type opt struct {
	// withPodName means send metrics with pod name or not
	// default: true
	withPodName bool
}

// WithoutPodName disables the pod name tag. Pod name produces a lot of
// custom metrics; skip it when grouping by pod is unnecessary.
func WithoutPodName() Option {
	return func(o *opt) {
		o.withPodName = false
	}
}

// New creates a metric client with package name as prefix
func New(pkgName string, options ...Option) Service {
	o := opt{
		withPodName: true,
	}
	for _, option := range options {
		option(&o)
	}

	ddTags := []string{
		// using host removes all tags associated with host
		// ref: https://docs.datadoghq.com/developers/dogstatsd/data_types/#host-tag-key
		"host:", // remove unused host tag
		"env:" + viper.GetString("env_name"),
		"app:" + viper.GetString("app_name"),
	}
	if o.withPodName {
		ddTags = append(ddTags, "pod:"+env.PodName())
	}

	return &ddMetrics{
		pkgName: pkgName,
		ddTags:  ddTags,
	}
}

type ddMetrics struct {
	pkgName string
	ddTags  []string
}

func (dm *ddMetrics) tags(kvs []string) []string {
	tags := append([]string{}, dm.ddTags...)
	for i := 0; i+1 < len(kvs); i += 2 {
		tags = append(tags, kvs[i]+":"+kvs[i+1])
	}
	return tags
}

func (dm *ddMetrics) guard(typ, key string) {
	if err := recover(); err != nil {
		log.Log().WithFields(log.Fields{"type": typ, "key": key, "err": err}).Error("Bump fail")
	}
}

// BumpAvg bumps the average for the given key. Datadog has no average-only
// metric, so it is recorded as a gauge.
func (dm *ddMetrics) BumpAvg(key string, val float64, tags ...string) {
	defer dm.guard("bumpavg", key)
	if err := nextClient().Gauge(dm.pkgName+"."+key, val, dm.tags(tags), 1); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "func": "BumpAvg"}).Error("Bump fail")
	}
}

// BumpSum bumps the sum for the given key.
func (dm *ddMetrics) BumpSum(key string, val float64, tags ...string) {
	defer dm.guard("bumpsum", key)
	if err := nextClient().Count(dm.pkgName+"."+key, int64(val), dm.tags(tags), 1); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "func": "BumpSum"}).Error("Bump fail")
	}
}

// BumpHistogram bumps the histogram for the given key.
func (dm *ddMetrics) BumpHistogram(key string, val float64, tags ...string) {
	defer dm.guard("bumphistogram", key)
	if err := nextClient().Histogram(dm.pkgName+"."+key, val, dm.tags(tags), 1); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "func": "BumpHistogram"}).Error("Bump fail")
	}
}

// BumpTime is a histogram specialized for timers. Calling it starts the
// timer, and End() on the returned value stops it and records the duration:
//
//	defer s.BumpTime("my.function").End()
func (dm *ddMetrics) BumpTime(key string, tags ...string) Ender {
	return &timeTracker{
		dm:    dm,
		key:   key,
		kvs:   tags,
		start: time.Now(),
	}
}

type timeTracker struct {
	dm    *ddMetrics
	key   string
	kvs   []string
	start time.Time
}

func (t *timeTracker) End() {
	defer t.dm.guard("bumptime", t.key)
	dur := float64(time.Since(t.start) / time.Millisecond)
	if err := nextClient().TimeInMilliseconds(t.dm.pkgName+"."+t.key, dur, t.dm.tags(t.kvs), 1); err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": t.key, "func": "BumpTime"}).Error("Bump fail")
	}
}
