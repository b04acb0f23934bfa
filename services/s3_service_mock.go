package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// MockArchive is an in-memory DocumentArchive for tests
type MockArchive struct {
	mu        sync.RWMutex
	documents map[string]Document

	// UploadErr, when set, is returned by every Upload
	UploadErr error
}

func NewMockArchive() *MockArchive {
	return &MockArchive{documents: make(map[string]Document)}
}

func (m *MockArchive) Upload(ctx context.Context, key string, doc *Document) error {
	if m.UploadErr != nil {
		return m.UploadErr
	}
	if doc == nil {
		return errors.New("nil document")
	}

	content := make([]byte, len(doc.Content))
	copy(content, doc.Content)

	m.mu.Lock()
	m.documents[key] = Document{FileName: doc.FileName, ContentType: doc.ContentType, Content: content}
	m.mu.Unlock()
	return nil
}

func (m *MockArchive) PresignedURL(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	_, exists := m.documents[key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("document not found in mock archive: %s", key)
	}
	return fmt.Sprintf("https://test-bucket.s3.us-east-1.amazonaws.com/%s?mock=true", key), nil
}

// Documents returns a copy of everything uploaded so far
func (m *MockArchive) Documents() map[string]Document {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docs := make(map[string]Document, len(m.documents))
	for k, v := range m.documents {
		docs[k] = v
	}
	return docs
}
