package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	var out map[string]string
	assert.ErrorIs(t, repo.Get(ctx, "session:abc", &out), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "session:abc", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "session:abc"))
	assert.NoError(t, repo.DeleteByPattern(ctx, "dashboard:*"))
}
