package utils

import (
	"time"
)

// GetCurrentTimestamp returns current time in epoch seconds
func GetCurrentTimestamp() int64 {
	return time.Now().Unix()
}

// GetCurrentTimeMillis returns current time in milliseconds since epoch
func GetCurrentTimeMillis() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// EpochToTime converts epoch seconds to time.Time
func EpochToTime(epoch int64) time.Time {
	return time.Unix(epoch, 0)
}

// TimeToEpoch converts time.Time to epoch seconds
func TimeToEpoch(t time.Time) int64 {
	return t.Unix()
}

// FormatTime formats time in ISO 8601 format
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ParseTime parses ISO 8601 formatted time string
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(time.RFC3339, timeStr)
}

// IsExpired checks if a given expiry time (epoch seconds) has passed.
// Zero means no expiry.
func IsExpired(expiryTime int64) bool {
	if expiryTime == 0 {
		return false
	}
	return GetCurrentTimestamp() > expiryTime
}

// IsFutureTime checks if a given epoch-second timestamp is strictly in the future
func IsFutureTime(epoch int64) bool {
	return epoch > GetCurrentTimestamp()
}

// IsWithinAllowedWindow checks whether a creation timestamp (epoch seconds)
// is within the allowed number of minutes from now
func IsWithinAllowedWindow(createdTime int64, allowedMinutes int) bool {
	if createdTime <= 0 {
		return false
	}
	diff := time.Since(time.Unix(createdTime, 0))
	return diff <= time.Duration(allowedMinutes)*time.Minute
}
