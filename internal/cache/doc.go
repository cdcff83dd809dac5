// Package cache stores computed charts in Redis.
//
// Keys embed the dataset load ID, so a refresh naturally invalidates every
// cached chart without an explicit purge; stale keys expire through their TTL.
package cache
