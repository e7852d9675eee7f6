// Package profiles keeps user profile fields fresh.
//
// The Refresher selects users whose profile was never fetched or is older than
// PROFILES_STALE_AFTER and asks the profile API for them in batches of
// PROFILES_BATCH_SIZE. Each call is bounded by PROFILES_TIMEOUT; a timed out
// call is retried up to PROFILES_ATTEMPTS times before the batch is abandoned.
// A rate-limit response (ErrRateLimited) aborts the whole run. Only users
// present in the response are written and stamped.
package profiles
