package profiles

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/convergenps/sheetctl/internal/domain"
	"gopkg.in/yaml.v3"
)

type Repository interface {
	List() ([]*domain.ImportProfile, error)
	Get(id string) (*domain.ImportProfile, error)
	GetByPath(path string) (*domain.ImportProfile, error)
}

type FileRepository struct {
	baseDir string
}

func NewFileRepository(baseDir string) *FileRepository {
	return &FileRepository{baseDir: baseDir}
}

func (r *FileRepository) List() ([]*domain.ImportProfile, error) {
	if _, err := os.Stat(r.baseDir); os.IsNotExist(err) {
		return []*domain.ImportProfile{}, nil
	}

	entries, err := os.ReadDir(r.baseDir)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.ImportProfile, 0)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" && ext != ".json" {
			continue
		}

		path := filepath.Join(r.baseDir, entry.Name())
		profile, err := r.loadProfile(path)
		if err != nil {
			continue
		}
		out = append(out, profile)
	}

	return out, nil
}

func (r *FileRepository) Get(id string) (*domain.ImportProfile, error) {
	list, err := r.List()
	if err != nil {
		return nil, err
	}

	for _, p := range list {
		if p.ID == id || p.Name == id {
			return p, nil
		}
	}

	return nil, fmt.Errorf("profile not found: %s", id)
}

func (r *FileRepository) GetByPath(path string) (*domain.ImportProfile, error) {
	return r.loadProfile(path)
}

func (r *FileRepository) loadProfile(path string) (*domain.ImportProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var profile domain.ImportProfile
	ext := filepath.Ext(path)

	if ext == ".json" {
		err = json.Unmarshal(data, &profile)
	} else {
		err = yaml.Unmarshal(data, &profile)
	}

	if err != nil {
		return nil, err
	}

	if profile.ID == "" {
		profile.ID = filepath.Base(path)
	}
	if profile.Strategy == "" {
		profile.Strategy = domain.StrategySequential
	}
	if len(profile.Categories) == 0 {
		profile.Categories = domain.SupportedCategories()
	}

	return &profile, nil
}
