package clientdata

import "time"

// TTL constants for different data types.
// These are added to time.Now() when storing to calculate expires_at.
const (
	// End-of-day series (settle once per trading day)
	TTLWikipediaSeries = 24 * time.Hour // 1 day - WIKI adjusted closes update after market close
	TTLExchangeSeries  = 24 * time.Hour // 1 day - Exchange EOD datasets update after market close

	// Short-lived data (changes frequently)
	TTLQuotes = 15 * time.Minute // 15 minutes - Data On Demand quote snapshots
)
