package service

import (
	"context"
	"database/sql"
	"mime/multipart"
	"sync"

	"github.com/noah-isme/school-admin-api/internal/models"
	"github.com/noah-isme/school-admin-api/pkg/storage"
)

type fakeSettings map[string]string

func (f fakeSettings) Get(ctx context.Context, key string) (*models.Setting, error) {
	value, ok := f[key]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &models.Setting{Key: key, Value: value, Type: models.SettingTypeString}, nil
}

type fakeFileStore struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
	saveErr error
}

func (f *fakeFileStore) SaveUpload(category string, fh *multipart.FileHeader, allowed []string) (*storage.StoredFile, error) {
	if f.saveErr != nil {
		return nil, f.saveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	path := category + "/" + fh.Filename
	f.saved = append(f.saved, path)
	return &storage.StoredFile{Path: path, OriginalName: fh.Filename, Size: fh.Size}, nil
}

func (f *fakeFileStore) Delete(rel string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, rel)
	return nil
}

func (f *fakeFileStore) Path(rel string) string {
	return "/srv/uploads/" + rel
}

type enqueued struct {
	jobType string
	payload interface{}
}

type fakeQueue struct {
	jobs []enqueued
	err  error
}

func (f *fakeQueue) Enqueue(jobType string, payload interface{}) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.jobs = append(f.jobs, enqueued{jobType: jobType, payload: payload})
	return "job-1", nil
}

func studentCaller(id string) *models.SessionUser {
	return &models.SessionUser{UserID: id, SessionID: "sess-" + id, Role: models.RoleStudent}
}

func adminCaller() *models.SessionUser {
	return &models.SessionUser{UserID: "admin-1", SessionID: "sess-admin", Role: models.RoleAdmin}
}
