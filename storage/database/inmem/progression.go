package inmemdb

import (
	"context"

	"github.com/trezcool/maendeleo/core/progression"
)

type progressionRepository struct {
	db *progressionTable
}

var _ progression.Repository = (*progressionRepository)(nil)

func NewProgressionRepository(db *DB) progression.Repository {
	return &progressionRepository{db: db.progression}
}

func (repo *progressionRepository) GetState(_ context.Context, userID string) (progression.State, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if st, ok := repo.db.table[userID]; ok {
		return st.Clone(), nil
	}
	return progression.State{}, progression.ErrStateNotFound
}

func (repo *progressionRepository) SaveState(_ context.Context, st progression.State) (progression.State, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored := st.Clone()
	repo.db.table[st.UserID] = &stored
	return st, nil
}

func (repo *progressionRepository) QueryAllStates(_ context.Context) ([]progression.State, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	states := make([]progression.State, 0, len(repo.db.table))
	for _, st := range repo.db.table {
		states = append(states, st.Clone())
	}
	return states, nil
}
