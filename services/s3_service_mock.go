package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MockS3Service is an in-memory S3Interface for tests
type MockS3Service struct {
	objects map[string][]byte
	types   map[string]string
	mu      sync.RWMutex

	// FailOn makes the named operation ("put", "copy", "delete") fail for any
	// key containing the given substring.
	FailOn map[string]string
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		objects: make(map[string][]byte),
		types:   make(map[string]string),
		FailOn:  make(map[string]string),
	}
}

// SetAsMockForTesting sets this mock as the global S3 service instance for testing
func (m *MockS3Service) SetAsMockForTesting() {
	SetS3Service(m)
}

func (m *MockS3Service) injected(op, key string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if match, ok := m.FailOn[op]; ok && strings.Contains(key, match) {
		return fmt.Errorf("mock S3 %s failed for %s", op, key)
	}
	return nil
}

// PutObject stores body in memory
func (m *MockS3Service) PutObject(ctx context.Context, key string, body []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.injected("put", key); err != nil {
		return err
	}

	m.mu.Lock()
	m.objects[key] = append([]byte(nil), body...)
	m.types[key] = contentType
	m.mu.Unlock()
	return nil
}

// CopyObject duplicates an existing object
func (m *MockS3Service) CopyObject(ctx context.Context, srcKey, dstKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.injected("copy", dstKey); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	body, ok := m.objects[srcKey]
	if !ok {
		return fmt.Errorf("object not found in mock S3: %s", srcKey)
	}
	m.objects[dstKey] = body
	m.types[dstKey] = m.types[srcKey]
	return nil
}

// DeleteObject removes an object; missing keys are not an error, as in S3
func (m *MockS3Service) DeleteObject(ctx context.Context, key string) error {
	if err := m.injected("delete", key); err != nil {
		return err
	}

	m.mu.Lock()
	delete(m.objects, key)
	delete(m.types, key)
	m.mu.Unlock()
	return nil
}

// GetPresignedURL returns a fake URL for an existing object
func (m *MockS3Service) GetPresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.objects[key]
	m.mu.RUnlock()
	if !exists {
		return "", fmt.Errorf("object not found in mock S3: %s", key)
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// Objects returns a copy of every stored object (for testing assertions)
func (m *MockS3Service) Objects() map[string][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()

	objects := make(map[string][]byte, len(m.objects))
	for k, v := range m.objects {
		objects[k] = v
	}
	return objects
}

// ContentType returns the content type an object was uploaded with
func (m *MockS3Service) ContentType(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.types[key]
}

// Clear removes all objects from mock storage
func (m *MockS3Service) Clear() {
	m.mu.Lock()
	m.objects = make(map[string][]byte)
	m.types = make(map[string]string)
	m.mu.Unlock()
}
