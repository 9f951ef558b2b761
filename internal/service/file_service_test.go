package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/school-admin-api/pkg/errors"
	"github.com/noah-isme/school-admin-api/pkg/storage"
)

func TestFileServiceResolveChecksOwner(t *testing.T) {
	svc := NewFileService(storage.NewSignedURLSigner("secret", time.Minute), &fakeFileStore{}, "/api/v1/files/download", nil)

	link, err := svc.Link("stu-1", "payments/proof.png")
	require.NoError(t, err)
	assert.True(t, link.ExpiresAt.After(time.Now()))

	path, err := svc.Resolve(studentCaller("stu-1"), link.Token)
	require.NoError(t, err)
	assert.Equal(t, "/srv/uploads/payments/proof.png", path)

	_, err = svc.Resolve(adminCaller(), link.Token)
	assert.NoError(t, err)

	_, err = svc.Resolve(studentCaller("stu-2"), link.Token)
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	_, err = svc.Resolve(studentCaller("stu-1"), "garbage")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
}
