// Package loader registers the HTTP-facing features of the admin server.
//
// Each feature implements Feature:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager keeps the registry and LoadAll mounts every enabled feature,
// so 'jobs' and 'integrity' can be developed and tested in isolation.
package loader
