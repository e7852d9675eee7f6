// Package reputation derives reputation points and ranks from bans.
//
// Per list a user has bans on, an active ban is worth 3 points (once per list)
// and every expired ban 1 point. Points are computed now and as of one month
// ago; the difference is the monthly change. Only users whose points timestamp
// was invalidated are rescored, while ranks are recomputed for everyone on every run.
package reputation
