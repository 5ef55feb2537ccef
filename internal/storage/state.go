package storage

import (
	"slices"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/textsnap/internal/models"
)

// maxNotices bounds how many undismissed notices are kept
const maxNotices = 20

// StateStore keeps what the web surface currently displays
type StateStore struct {
	mu         sync.RWMutex
	preview    []byte
	width      int
	height     int
	rotation   int
	blocks     []string
	notices    []models.Notice
	nextNotice int
	updatedAt  time.Time
}

func NewStateStore() *StateStore {
	return &StateStore{nextNotice: 1}
}

// SetPreview replaces the preview image. A nil preview clears it.
func (s *StateStore) SetPreview(jpeg []byte, width, height, rotation int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.preview = jpeg
	s.width, s.height, s.rotation = width, height, rotation
	s.updatedAt = time.Now()
}

// Preview returns the encoded preview, if any
func (s *StateStore) Preview() ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.preview, s.preview != nil
}

// SetBlocks replaces the displayed list. A nil slice clears it.
func (s *StateStore) SetBlocks(blocks []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = slices.Clone(blocks)
	s.updatedAt = time.Now()
}

// AddNotice appends a notice and returns it
func (s *StateStore) AddNotice(message string) models.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := models.Notice{ID: s.nextNotice, Message: message, CreatedAt: time.Now()}
	s.nextNotice++
	s.notices = append(s.notices, n)
	if len(s.notices) > maxNotices {
		s.notices = slices.Clone(s.notices[len(s.notices)-maxNotices:])
	}
	return n
}

// DismissNotice removes a notice, reporting whether it existed
func (s *StateStore) DismissNotice(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.notices, func(n models.Notice) bool { return n.ID == id })
	if i < 0 {
		return false
	}
	s.notices = slices.Delete(s.notices, i, i+1)
	return true
}

func (s *StateStore) Snapshot() models.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := models.Snapshot{
		HasImage:  s.preview != nil,
		Rotation:  s.rotation,
		Blocks:    slices.Clone(s.blocks),
		Notices:   slices.Clone(s.notices),
		UpdatedAt: s.updatedAt,
	}
	if snap.HasImage {
		snap.ImageWidth, snap.ImageHeight = s.width, s.height
	}
	if snap.Blocks == nil {
		snap.Blocks = []string{}
	}
	if snap.Notices == nil {
		snap.Notices = []models.Notice{}
	}
	return snap
}
