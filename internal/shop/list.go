package shop

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// shareCodeAlphabet avoids ambiguous characters (I, L, O, U and their
// lookalikes) so codes survive being read aloud or scribbled down.
const shareCodeAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// ShareCodeLength is the fixed share code size.
const ShareCodeLength = 6

const maxCodeAttempts = 100

// NormalizeShareCode canonicalizes a join token for case-insensitive
// lookup.
func NormalizeShareCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewList allocates a list with a fresh share code, unique among the
// locally known lists. It does not insert the list.
func (s *State) NewList(name string, now time.Time) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.newListLocked(name, now)
}

func (s *State) newListLocked(name string, now time.Time) (List, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return List{}, ErrEmptyName
	}

	code, err := s.generateShareCodeLocked()
	if err != nil {
		return List{}, err
	}

	return List{
		ID:        uuid.NewString(),
		Name:      trimmed,
		ShareCode: code,
		CreatedAt: now.UnixMilli(),
	}, nil
}

func (s *State) generateShareCodeLocked() (string, error) {
	for range maxCodeAttempts {
		buf := make([]byte, ShareCodeLength)

		_, err := rand.Read(buf)
		if err != nil {
			return "", fmt.Errorf("generate share code: %w", err)
		}

		for i, b := range buf {
			buf[i] = shareCodeAlphabet[int(b)%len(shareCodeAlphabet)]
		}

		code := string(buf)

		if s.findListByCodeLocked(code) == nil {
			return code, nil
		}
	}

	return "", ErrCodeGeneration
}

// InsertList adds a list to the registry unless a list with the same id
// is already known. Returns true when the list was added.
func (s *State) InsertList(list List) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, known := range s.lists {
		if known.ID == list.ID {
			return false
		}
	}

	s.lists = append(s.lists, list)

	return true
}

// SetCurrentList changes the active list pointer.
func (s *State) SetCurrentList(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, list := range s.lists {
		if list.ID == id {
			s.currentListID = id

			return nil
		}
	}

	return ErrListNotFound
}

// RenameList changes a list's name locally.
func (s *State) RenameList(id, name string) (List, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return List{}, ErrEmptyName
	}

	for i := range s.lists {
		if s.lists[i].ID == id {
			s.lists[i].Name = trimmed

			return s.lists[i], nil
		}
	}

	return List{}, ErrListNotFound
}

// RemoveList deletes a list and cascades to all items scoped to it,
// returning the removed item ids for the explicit remote delete. When the
// deleted list was active, activation falls back to the first remaining
// list or none.
func (s *State) RemoveList(id string) (bool, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	keptLists := s.lists[:0]

	for _, list := range s.lists {
		if list.ID == id {
			found = true

			continue
		}

		keptLists = append(keptLists, list)
	}

	if !found {
		return false, nil
	}

	s.lists = keptLists

	var removedItems []string

	keptItems := s.items[:0]

	for _, item := range s.items {
		if item.ListID == id {
			removedItems = append(removedItems, item.ID)

			continue
		}

		keptItems = append(keptItems, item)
	}

	s.items = keptItems

	if s.currentListID == id {
		s.currentListID = ""
		if len(s.lists) > 0 {
			s.currentListID = s.lists[0].ID
		}
	}

	return true, removedItems
}

// ListByID returns the list with the given id.
func (s *State) ListByID(id string) (List, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, list := range s.lists {
		if list.ID == id {
			return list, true
		}
	}

	return List{}, false
}

// ListByCode returns the locally known list with the given share code,
// case-insensitively.
func (s *State) ListByCode(code string) (List, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if list := s.findListByCodeLocked(NormalizeShareCode(code)); list != nil {
		return *list, true
	}

	return List{}, false
}

func (s *State) findListByCodeLocked(normalized string) *List {
	for i := range s.lists {
		if NormalizeShareCode(s.lists[i].ShareCode) == normalized {
			return &s.lists[i]
		}
	}

	return nil
}
