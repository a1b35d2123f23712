package feed

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	gonanoid "github.com/jaevor/go-nanoid"
)

const idAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

var types = []string{"deposit", "withdraw", "transfer"}
var statuses = []string{"success", "pending", "failed"}
var notes = []string{"Visa **** 1234", "Về ngân hàng ACB", "Chuyển nội bộ"}

// Seed builds n synthetic transactions, newest first, one per hour counting
// back from now. Codes are sequential from #TXN-10000; types, statuses and
// notes cycle so every combination shows up early in the list.
func Seed(n int, now time.Time) []Transaction {
	newID, err := gonanoid.CustomASCII(idAlphabet, 8)
	if err != nil {
		// The alphabet and length are constants, so this cannot fail at
		// runtime; fall back to the code suffix just in case.
		newID = nil
	}

	transactions := make([]Transaction, 0, n)
	for i := 0; i < n; i++ {
		code := fmt.Sprintf("#TXN-%d", 10000+i)
		id := strings.TrimPrefix(code, "#")
		if newID != nil {
			id = newID()
		}

		transactions = append(transactions, Transaction{
			ID:     id,
			Time:   now.Add(-time.Duration(i) * time.Hour).Format("2006-01-02 15:04"),
			Code:   code,
			Type:   types[i%len(types)],
			Amount: int64(rand.Intn(1500001) + 50000),
			Status: statuses[(i+1)%len(statuses)],
			Note:   notes[i%len(notes)],
		})
	}
	return transactions
}
