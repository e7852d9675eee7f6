// Package sources pulls ban lists from their providers.
//
// A list's Provider field selects the strategy:
//
//	json-feed    paged HTTP JSON, list.URL is the first page, each page carries `next`
//	bucket-dump  a JSON array object in the storage bucket, list.URL is the object name
//
// Every provider yields normalized RawBan batches through an iter.Seq2. Page and
// object reads are wrapped in the retry combinator (SOURCES_FETCH_ATTEMPTS,
// SOURCES_FETCH_DELAY). Records missing an id or user id are logged and skipped.
//
// The list catalogue lives in a YAML file:
//
//	lists:
//	  - id: community
//	    name: Community bans
//	    provider: json-feed
//	    url: https://bans.example.org/api/bans
//	    notification_channel: slack:https://hooks.slack.com/services/...
package sources
