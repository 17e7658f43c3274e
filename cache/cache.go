// Package cache provides quandl.Cache implementations: an in-process TTL map,
// a directory of files, Badger and SQLite.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"time"
)

// Key derives the storage key of a request URL.
func Key(url string) string {
	sum := md5.Sum([]byte("quandl:" + url))
	return hex.EncodeToString(sum[:])
}

func expired(storedAt, now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(storedAt) >= ttl
}

func nowFunc(clock func() time.Time) time.Time {
	if clock != nil {
		return clock()
	}
	return time.Now()
}
