package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// TokenSessionKey returns the cache key holding the owner of an access token, keyed by its JTI.
func (r *CacheKeyStruct) TokenSessionKey(jti string) string {
	return fmt.Sprintf("auth:session:%s", jti)
}

var CacheKey = NewCacheKeyStruct()
