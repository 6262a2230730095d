// Package termstat provides a stats implementation which periodically logs
// counters to the given writer. A batch run is short lived, so this is the
// default collector for the pipeline in lieu of a real collector writing to
// an external tool like graphite or datadog.
package termstat

import (
	"fmt"
	"io"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Collector collects stats and prints them to the terminal.
type Collector struct {
	lock    sync.Mutex
	indexes map[string]int
	names   []string
	stats   []int64
	changed bool
	out     io.Writer
}

// NewCollector initializes and returns a new Collector which rewrites its
// output line every couple of seconds for as long as the run lasts.
func NewCollector(out io.Writer) *Collector {
	c := &Collector{
		indexes: make(map[string]int),
		out:     out,
	}
	go func() {
		tick := time.NewTicker(time.Second * 2)
		for ; ; <-tick.C {
			c.write()
		}
	}()
	return c
}

// Count adds value to the named stat at the specified rate.
func (c *Collector) Count(name string, value int64, rate float64, tags ...string) {
	c.lock.Lock()
	c.changed = true
	defer c.lock.Unlock()

	idx, ok := c.indexes[name]
	if !ok {
		idx = len(c.stats)
		c.stats = append(c.stats, 0)
		c.names = append(c.names, name)
		c.indexes[name] = idx
	}
	if rate < 1 {
		if rand.Float64() > rate {
			return
		}
	}
	c.stats[idx] += value
}

func (c *Collector) write() {
	sb := strings.Builder{}
	c.lock.Lock()
	if !c.changed {
		c.lock.Unlock()
		return
	}
	for i := 0; i < len(c.stats); i++ {
		_, _ = sb.WriteString(fmt.Sprintf("%s: %d ", c.names[i], c.stats[i]))
	}
	c.changed = false
	fmt.Fprintf(c.out, "\r"+sb.String())
	c.lock.Unlock()
}

// Gauge does nothing.
func (c *Collector) Gauge(name string, value float64, rate float64, tags ...string) {}

// Timing does nothing.
func (c *Collector) Timing(name string, value time.Duration, rate float64, tags ...string) {}
