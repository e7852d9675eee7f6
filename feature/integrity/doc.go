// Package integrity validates the infrastructure the sync jobs depend on.
//
// # Checks Provided
//
//   - Schema: every model table exists with the columns its gorm fields map to.
//   - Structure: each export list has its folder under the export prefix in the bucket.
//   - Dumps: each bucket-dump source list has its dump object in the bucket.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks.
//   - GET /integrity/schema : Runs the schema check.
//   - GET /integrity/structure : Runs the structure check (supports ?fix=true).
//   - GET /integrity/dumps : Runs the dump check.
package integrity
