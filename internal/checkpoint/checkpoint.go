// Package checkpoint persists RL agent Q-tables under a name, either as
// files on disk or as values in Redis.
package checkpoint

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/cartridge/sevens/internal/strategy/rl"
)

// Store saves and restores agent models by name. Load returns the number of
// records applied; a missing model is not an error and applies none.
type Store interface {
	Save(ctx context.Context, name string, agent *rl.Agent) error
	Load(ctx context.Context, name string, agent *rl.Agent) (int, error)
}

// EpisodeName is the checkpoint name written after the given episode.
func EpisodeName(episode int) string {
	return fmt.Sprintf("rl_model_%d.dat", episode)
}

// FinalName is the checkpoint written when training completes.
const FinalName = "rl_model_final.dat"

// FileStore keeps models in Dir using the plain-text model format.
type FileStore struct {
	Dir string
}

// NewFileStore returns a store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir}
}

// Path returns the file a model name maps to.
func (s *FileStore) Path(name string) string {
	return filepath.Join(s.Dir, name)
}

func (s *FileStore) Save(_ context.Context, name string, agent *rl.Agent) error {
	if err := agent.SaveModel(s.Path(name)); err != nil {
		return fmt.Errorf("save checkpoint %s: %w", name, err)
	}
	return nil
}

func (s *FileStore) Load(_ context.Context, name string, agent *rl.Agent) (int, error) {
	n, err := agent.LoadModel(s.Path(name))
	if err != nil {
		return n, fmt.Errorf("load checkpoint %s: %w", name, err)
	}
	return n, nil
}
