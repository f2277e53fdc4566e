package inmemdb

import (
	"sync"

	"github.com/trezcool/maendeleo/core/progression"
)

type (
	DB struct {
		progression *progressionTable
	}

	progressionTable struct {
		sync.RWMutex
		table map[string]*progression.State // by user id
	}
)

func Open() (*DB, error) {
	db := &DB{
		progression: &progressionTable{table: make(map[string]*progression.State)},
	}
	return db, nil
}
