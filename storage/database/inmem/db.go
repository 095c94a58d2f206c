package inmemdb

import (
	"sync"

	"github.com/safeschool/drillready/core/account"
)

type accountTable struct {
	mutex sync.RWMutex
	table map[string]*account.Account
}

type DB struct {
	account *accountTable
}

func Open() (*DB, error) {
	db := &DB{
		account: &accountTable{table: make(map[string]*account.Account)},
	}
	return db, nil
}
