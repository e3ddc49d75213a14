// Package repositorycache puts a read-through cache in front of repository
// listings.
//
// # Overview
//
// CachedRepository wraps anything that can list a whole collection and
// serves that collection from a cache.CacheService. Only FindAll is cached.
// Writes never pass through the decorator, so the cache has nothing to
// invalidate: a collection is reloaded only after its entry expires.
//
// # Basic Usage
//
//	svc, err := cache.NewCacheService(cache.DefaultConfig())
//	cached := repositorycache.New[hero.Hero](hero.NewRepository(db), svc)
//
//	all, err := cached.FindAll(ctx)
//	page, err := query.Run(all, req, hero.Schema())
//
// # Keys
//
// Keys are namespaced by the plural snake_case name of the entity type, so
// the hero listing lives under "heroes::FindAll". Use WithNamespace or
// WithKeySerializer to change it.
//
// # Sharing
//
// Every caller receives the same slice. The query pipeline copies before
// sorting or filtering; other callers must do the same.
package repositorycache
