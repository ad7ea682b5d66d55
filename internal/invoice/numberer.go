package invoice

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Numberer hands out invoice numbers of the form FACT-<unix millis>-<seq>.
// The sequence never repeats within a process, so two invoices issued in
// the same millisecond still differ.
type Numberer struct {
	seq atomic.Uint64
	now func() time.Time
}

func NewNumberer() *Numberer {
	return &Numberer{now: time.Now}
}

func (n *Numberer) Next() string {
	s := n.seq.Add(1)
	return fmt.Sprintf("FACT-%d-%d", n.now().UnixMilli(), s)
}
