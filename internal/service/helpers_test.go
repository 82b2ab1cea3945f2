package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"taskquest/internal/ledger"
	"taskquest/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Task{}, &model.TaskCompletion{}, &model.Tag{}))
	return db
}

// memStore keeps the ledger in memory for tests.
type memStore struct {
	ledger *ledger.Ledger
	loads  int
	saves  int
}

func (m *memStore) Load(context.Context) (*ledger.Ledger, error) {
	m.loads++
	if m.ledger == nil {
		m.ledger = ledger.New()
	}
	return m.ledger, nil
}

func (m *memStore) Save(_ context.Context, l *ledger.Ledger) error {
	m.saves++
	m.ledger = l
	return nil
}
