package invoices

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// BuildInvoiceNumber produces an INV-YYYYMMDD-NNN document number. The
// three digit suffix is random; uniqueness is enforced by the database
// constraint and the caller retries on collision.
func BuildInvoiceNumber(issueDate time.Time) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000))
	if err != nil {
		return "", fmt.Errorf("generating invoice number suffix: %w", err)
	}
	return fmt.Sprintf("INV-%s-%03d", issueDate.Format("20060102"), n.Int64()), nil
}
