// Package post maps raw Tumblr API post payloads into typed entities
// and derives deterministic local save paths for their downloadable
// files.
//
// A Post is parsed once from an immutable response mapping and never
// mutated afterwards. Photo and photo-link posts parse into a PhotoSet,
// which selects the best available size for every photo and numbers the
// pages of multi-photo sets. Each downloadable resource satisfies the
// File interface and resolves its own save path against a PathContext
// holding the save root and the categorization toggles.
//
// Path resolution is a pure function of (entity, context). The only
// side channel is the Annotations value returned alongside the path,
// which carries display metadata (caption, photoset page progress) for
// the caller's progress UI and never influences the path itself.
//
// Entities perform no I/O and hold no locks; parsing posts and
// resolving paths for independent entities is safe from concurrent
// goroutines as long as the shared PathContext is treated as read-only.
package post
