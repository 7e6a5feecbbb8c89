package domain

import (
	"crypto/md5"
	"fmt"
	"strings"
	"time"
)

// MerchantSourceCSV marks merchants created by CSV imports.
const MerchantSourceCSV = "csv"

// Merchant is a named counterparty. Identity within a family is the
// provider-scoped external ID, so repeated imports of the same display name
// resolve to the same merchant.
type Merchant struct {
	ID                 string
	FamilyID           string
	Name               string
	Source             string
	ProviderMerchantID string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CSVMerchantKey derives the stable provider merchant ID for a display name.
// The name is lowercased before hashing, so "Coffee Shop" and "COFFEE SHOP"
// map to the same merchant.
func CSVMerchantKey(name string) string {
	sum := md5.Sum([]byte(strings.ToLower(name)))
	return fmt.Sprintf("csv_merchant_%x", sum)
}
