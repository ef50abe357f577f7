package go_wish

import "github.com/stremovskyy/go-wish/format"

// Merchant is the account a key belongs to, as reported by the auth test.
//
// The auth test payload is small and not documented field by field, so the
// full record is kept alongside the id.
type Merchant struct {
	ID     string
	Record format.Record
}

func newMerchant(rec format.Record) *Merchant {
	if rec == nil {
		rec = format.Record{}
	}
	return &Merchant{ID: rec.String("merchant_id"), Record: rec}
}
