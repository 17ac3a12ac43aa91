package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/jhoicas/hospitality-ops/internal/application/directory"
	"github.com/jhoicas/hospitality-ops/internal/domain/entity"
)

var _ directory.ScopeCache = (*ScopeCache)(nil)

const (
	scopeKeyPrefix = "scope:"
	scopeValueSep  = "|"
)

// ScopeCache guarda código → scope como "departmentID|sectionID" con TTL.
type ScopeCache struct {
	rdb goredis.Cmdable
	ttl time.Duration
}

// NewScopeCache construye la caché. ttl <= 0 usa 10 minutos.
func NewScopeCache(rdb goredis.Cmdable, ttl time.Duration) *ScopeCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ScopeCache{rdb: rdb, ttl: ttl}
}

// Get devuelve (scope, true) en hit, (zero, false, nil) en miss.
func (c *ScopeCache) Get(ctx context.Context, code string) (entity.Scope, bool, error) {
	val, err := c.rdb.Get(ctx, scopeKeyPrefix+code).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return entity.Scope{}, false, nil
		}
		return entity.Scope{}, false, err
	}
	scope, err := decodeScope(val)
	if err != nil {
		return entity.Scope{}, false, err
	}
	return scope, true, nil
}

// Set guarda el scope resuelto.
func (c *ScopeCache) Set(ctx context.Context, code string, scope entity.Scope) error {
	return c.rdb.Set(ctx, scopeKeyPrefix+code, encodeScope(scope), c.ttl).Err()
}

func encodeScope(s entity.Scope) string {
	return s.DepartmentID + scopeValueSep + s.Section()
}

func decodeScope(v string) (entity.Scope, error) {
	dept, section, ok := strings.Cut(v, scopeValueSep)
	if !ok || dept == "" {
		return entity.Scope{}, fmt.Errorf("valor de scope en caché inválido: %q", v)
	}
	return entity.SectionScope(dept, section), nil
}
