package jobs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/gofrs/flock"
)

// Excluded is the on-disk list of postings the user no longer wants to see.
type Excluded struct {
	Items []*ExcludedPosting `json:"items"`
}

type ExcludedPosting struct {
	ID         string    `json:"id"`
	Source     Source    `json:"source"`
	URL        string    `json:"url,omitempty"`
	Company    string    `json:"company"`
	Title      string    `json:"title"`
	ExcludedAt time.Time `json:"excluded_at"`
}

// ToExcluded converts postings into exclude-file entries stamped with now.
func ToExcluded(postings []Posting, now time.Time) []*ExcludedPosting {
	items := make([]*ExcludedPosting, 0, len(postings))
	for _, p := range postings {
		items = append(items, &ExcludedPosting{
			ID:         p.ID,
			Source:     p.Source,
			URL:        p.ApplyURL,
			Company:    p.Company,
			Title:      p.Title,
			ExcludedAt: now.UTC(),
		})
	}
	return items
}

// LoadExcluded reads the exclude file under a shared lock. A missing or empty file is
// an empty list.
func LoadExcluded(path string) (*Excluded, error) {
	lock := flock.New(lockPath(path))
	if err := lock.RLock(); err != nil {
		return nil, fmt.Errorf("locking exclude file: %w", err)
	}
	defer lock.Unlock()

	return readExcluded(path)
}

// AppendExcluded adds items to the exclude file under an exclusive lock, skipping IDs
// already present, and returns how many were added.
func AppendExcluded(path string, items []*ExcludedPosting) (int, error) {
	lock := flock.New(lockPath(path))
	if err := lock.Lock(); err != nil {
		return 0, fmt.Errorf("locking exclude file: %w", err)
	}
	defer lock.Unlock()

	current, err := readExcluded(path)
	if err != nil {
		return 0, err
	}

	known := current.IDs()
	added := 0
	for _, item := range items {
		if _, ok := known[item.ID]; ok {
			continue
		}
		known[item.ID] = struct{}{}
		current.Items = append(current.Items, item)
		added++
	}
	if added == 0 {
		return 0, nil
	}

	return added, current.toFile(path)
}

// IDs returns the set of excluded posting IDs.
func (e *Excluded) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(e.Items))
	for _, item := range e.Items {
		ids[item.ID] = struct{}{}
	}
	return ids
}

func (e *Excluded) Len() int {
	return len(e.Items)
}

func readExcluded(path string) (*Excluded, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Excluded{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading exclude file: %w", err)
	}
	if len(data) == 0 {
		return &Excluded{}, nil
	}

	var excluded Excluded
	if err := json.Unmarshal(data, &excluded); err != nil {
		return nil, fmt.Errorf("decoding exclude file %q: %w", path, err)
	}
	return &excluded, nil
}

func (e *Excluded) toFile(path string) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(e)
}

func lockPath(path string) string {
	return path + ".lock"
}
