package storage_test

import (
	"testing"

	"github.com/hydrocamel/sonarscan/internal/config"
	"github.com/hydrocamel/sonarscan/internal/storage"
	"github.com/hydrocamel/sonarscan/internal/storage/memory"
	"github.com/stretchr/testify/assert"
)

var (
	_ storage.Backend    = (*memory.Backend)(nil)
	_ storage.Uploadable = (*memory.Backend)(nil)
)

func TestUploadableIsOptional(t *testing.T) {
	var b storage.Backend = memory.New(config.MemoryConfig{OutputDir: t.TempDir()})

	_, ok := b.(storage.Uploadable)
	assert.True(t, ok, "memory backend exports files")
}
