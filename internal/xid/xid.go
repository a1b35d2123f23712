// Package xid generates the human-scannable record ids used across the
// catalog and ledger: a short kind tag (SP products, KH customers, HD
// invoices) followed by a yymmddhhmmss timestamp and two random digits.
// Uniqueness is only guaranteed within a single process session.
package xid

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"
	"time"
)

const (
	ProductPrefix  = "SP"
	CustomerPrefix = "KH"
	InvoicePrefix  = "HD"
)

var (
	mu     sync.Mutex
	bucket string
	issued map[string]struct{}
)

func New(prefix string) string {
	mu.Lock()
	defer mu.Unlock()

	stamp := time.Now().Format("060102150405")
	if stamp != bucket {
		bucket = stamp
		issued = make(map[string]struct{}, 8)
	}

	// Two random digits leave 90 ids per second per prefix; re-roll on a
	// same-second collision so rapid creation bursts stay unique.
	for i := 0; i < 90; i++ {
		id := fmt.Sprintf("%s%s%02d", prefix, stamp, randDigits())
		if _, dup := issued[id]; dup {
			continue
		}
		issued[id] = struct{}{}
		return id
	}

	id := fmt.Sprintf("%s%s%02d%d", prefix, stamp, randDigits(), time.Now().UnixNano()%1000)
	issued[id] = struct{}{}
	return id
}

func randDigits() int64 {
	n, err := rand.Int(rand.Reader, big.NewInt(90))
	if err != nil {
		return 10 + time.Now().UnixNano()%90
	}
	return 10 + n.Int64()
}
