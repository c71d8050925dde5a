package api

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scu-obit/fcskit/internal/source"
	"github.com/scu-obit/fcskit/pkg/fcs"
)

// DefaultCapacity bounds the number of parsed files kept in memory.
const DefaultCapacity = 64

type FileRecord struct {
	ID          string
	Name        string
	CreatedAt   time.Time
	Compression source.Compression
	File        *fcs.File
}

// FileStore keeps parsed files by id. Once full, the oldest file is evicted.
type FileStore struct {
	mu       sync.Mutex
	files    map[string]*FileRecord
	order    []string
	capacity int
}

func NewFileStore(capacity int) *FileStore {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &FileStore{
		files:    make(map[string]*FileRecord),
		capacity: capacity,
	}
}

func (s *FileStore) Put(name string, f *fcs.File, compression source.Compression, now time.Time) *FileRecord {
	rec := &FileRecord{
		ID:          newFileID(),
		Name:        name,
		CreatedAt:   now,
		Compression: compression,
		File:        f,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.order) >= s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.files, oldest)
	}
	s.files[rec.ID] = rec
	s.order = append(s.order, rec.ID)
	return rec
}

func (s *FileStore) Get(id string) (*FileRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.files[id]
	return rec, ok
}

func (s *FileStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.files[id]; !ok {
		return false
	}
	delete(s.files, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true
}

func (s *FileStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

func newFileID() string {
	return "fcs_" + uuid.NewString()
}
