package models

import (
	"sync/atomic"
	"time"
)

var idSeq atomic.Int64

// NewID generates a numeric identifier from the current millisecond timestamp
// with a rotating sequence suffix, so bulk inserts inside one millisecond
// still get distinct ids. IDs stay sortable by creation time, which the
// mobile client relies on for stable list ordering.
func NewID() int64 {
	return time.Now().UnixMilli()*1000 + idSeq.Add(1)%1000
}
