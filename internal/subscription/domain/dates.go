package domain

import "time"

// ToStorageDate converts provider epoch seconds to a UTC timestamp.
func ToStorageDate(seconds int64) time.Time {
	return time.Unix(seconds, 0).UTC()
}

// ToOptionalStorageDate returns nil for a zero epoch value. Zero
// collapses into "absent" on purpose: provider timestamps are never
// legitimately at the epoch, and the webhook payloads omit unset
// fields as 0.
func ToOptionalStorageDate(seconds int64) *time.Time {
	if seconds == 0 {
		return nil
	}
	t := ToStorageDate(seconds)
	return &t
}
