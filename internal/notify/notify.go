// Package notify delivers notifications for a headless environment by
// writing them to an output stream.
package notify

import (
	"fmt"
	"io"
	"sync"

	"holyverses/internal/devo"
)

// WriterNotifier writes each notification as a single timestamped line.
type WriterNotifier struct {
	mu    sync.Mutex
	out   io.Writer
	clock devo.Clock
}

var _ devo.Notifier = (*WriterNotifier)(nil)

func NewWriterNotifier(out io.Writer, clock devo.Clock) *WriterNotifier {
	return &WriterNotifier{out: out, clock: clock}
}

func (n *WriterNotifier) Notify(channel, title, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ts := n.clock.Now().Format("2006-01-02 15:04:05")
	fmt.Fprintf(n.out, "%s\t[%s]\t%s: %s\n", ts, channel, title, body)
}
