// Package locker provides the per-aggregate serialization boundary for ledger writes.
package locker

import (
	"context"
	"errors"
	"sort"
)

// ErrLockTimeout is returned when a lock could not be acquired before the context ended.
var ErrLockTimeout = errors.New("timed out waiting for lock")

// Locker acquires exclusive locks on named keys.
type Locker interface {
	// Lock blocks until every key is held or ctx is done. Keys are taken in sorted
	// order so that callers locking overlapping sets cannot deadlock. The returned
	// function releases all of them.
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// SupplierKey scopes a lock to every ledger row of one supplier.
func SupplierKey(supplierID string) string { return "supplier:" + supplierID }

// RegisterKey scopes a lock to one till session.
func RegisterKey(registerID string) string { return "register:" + registerID }

// OperatorKey scopes a lock to one operator's registers.
func OperatorKey(operator string) string { return "operator:" + operator }

// SettlementKey scopes a lock to one settlement.
func SettlementKey(settlementID string) string { return "settlement:" + settlementID }

func normalize(keys []string) []string {
	out := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
