package cache

import "strings"

// KeySeparator defines the delimiter used between cache key segments.
const KeySeparator = "::"

// namespacedKeySerializer prefixes method names with a namespace.
type namespacedKeySerializer struct {
	namespace string
}

// NewNamespacedKeySerializer creates a key serializer that prefixes every key
// with namespace, e.g. "heroes::FindAll". An empty namespace leaves the
// method name as the key.
func NewNamespacedKeySerializer(namespace string) KeySerializer {
	return &namespacedKeySerializer{namespace: strings.TrimSpace(namespace)}
}

// SerializeKey builds the cache key of method.
// The same inputs always produce the same key.
func (s *namespacedKeySerializer) SerializeKey(method string) string {
	if s.namespace == "" {
		return method
	}
	return s.namespace + KeySeparator + method
}
