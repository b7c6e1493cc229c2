package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/commerce-kit/backoffice-core/internal/domain"
)

// fileState is the on-disk layout of the file backend.
type fileState struct {
	Credential *credentialRecord `json:"credential,omitempty"`
	Identity   *identityRecord   `json:"identity,omitempty"`
}

// FileCredentialRepository stores the records in a single JSON file. Writes go
// to a temp file followed by rename, so readers never observe a partial record.
type FileCredentialRepository struct {
	mu   sync.Mutex
	path string
}

// NewFileCredentialRepository builds the file backend at the given path.
func NewFileCredentialRepository(path string) *FileCredentialRepository {
	return &FileCredentialRepository{path: path}
}

func (r *FileCredentialRepository) LoadCredential(_ context.Context) (*domain.Credential, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, err := r.read()
	if err != nil {
		return nil, err
	}
	if state.Credential == nil {
		return nil, nil
	}
	return state.Credential.toDomain(), nil
}

func (r *FileCredentialRepository) SaveCredential(_ context.Context, cred *domain.Credential) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, err := r.read()
	if err != nil {
		return err
	}
	record := toCredentialRecord(cred)
	state.Credential = &record
	return r.write(state)
}

func (r *FileCredentialRepository) LoadIdentity(_ context.Context) (*domain.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, err := r.read()
	if err != nil {
		return nil, err
	}
	if state.Identity == nil {
		return nil, nil
	}
	return state.Identity.toDomain(), nil
}

func (r *FileCredentialRepository) SaveIdentity(_ context.Context, identity *domain.Identity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	state, err := r.read()
	if err != nil {
		return err
	}
	record := toIdentityRecord(identity)
	state.Identity = &record
	return r.write(state)
}

func (r *FileCredentialRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := os.Remove(r.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear credential file: %w", err)
	}
	return nil
}

func (r *FileCredentialRepository) read() (*fileState, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return &fileState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read credential file: %w", err)
	}
	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		// A corrupt store behaves like an empty one; the session manager
		// re-validates everything it loads anyway.
		return &fileState{}, nil
	}
	return &state, nil
}

func (r *FileCredentialRepository) write(state *fileState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode credential file: %w", err)
	}
	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, ".credentials-*")
	if err != nil {
		return fmt.Errorf("create temp credential file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close credential file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace credential file: %w", err)
	}
	return nil
}
