package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aanand-mishra/school-api/internal/config"
	"github.com/aanand-mishra/school-api/internal/storage"
	"github.com/aanand-mishra/school-api/internal/storage/sqlite"
	"github.com/aanand-mishra/school-api/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

// openTestDB creates an in-memory database with all tables migrated.
func openTestDB(t *testing.T) *sqlite.SQLite {
	t.Helper()

	s, err := sqlite.Open(":memory:", gormlogger.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func ptr[V any](v V) *V { return &v }

func TestNew_CreatesDatabaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "school.db")

	s, err := sqlite.New(&config.Config{Env: "prod", StoragePath: path})
	require.NoError(t, err)
	defer s.Close()

	assert.FileExists(t, path)
}

func TestTable_FindAllOnEmptyTable(t *testing.T) {
	niveis := sqlite.NewTable[types.Nivel](openTestDB(t))

	got, err := niveis.FindAll(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestTable_CreateAssignsIDAndTimestamps(t *testing.T) {
	ctx := context.Background()
	niveis := sqlite.NewTable[types.Nivel](openTestDB(t))

	first := types.Nivel{Nivel: "Iniciante"}
	require.NoError(t, niveis.Create(ctx, &first))
	second := types.Nivel{Nivel: "Intermediário"}
	require.NoError(t, niveis.Create(ctx, &second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.False(t, first.CreatedAt.IsZero())

	got, err := niveis.FindOne(ctx, storage.ByID(first.ID))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Iniciante", got.Nivel)

	all, err := niveis.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestTable_FindOneMissingIsNotAnError(t *testing.T) {
	niveis := sqlite.NewTable[types.Nivel](openTestDB(t))

	got, err := niveis.FindOne(context.Background(), storage.ByID(404))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTable_UpdateMergesColumns(t *testing.T) {
	ctx := context.Background()
	pessoas := sqlite.NewTable[types.Pessoa](openTestDB(t))

	p := types.Pessoa{Nome: "Ana", Email: "ana@escola.com", Role: "estudante"}
	require.NoError(t, pessoas.Create(ctx, &p))

	rows, err := pessoas.Update(ctx, types.PessoaPatch{Nome: ptr("Ana Maria")}.Columns(), storage.ByID(p.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	got, err := pessoas.FindOne(ctx, storage.ByID(p.ID))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ana Maria", got.Nome)
	assert.Equal(t, "ana@escola.com", got.Email)
	assert.Equal(t, "estudante", got.Role)
	require.NotNil(t, got.Ativo)
	assert.True(t, *got.Ativo, "ativo defaults to true")
}

func TestTable_UpdateWithNoMatchAffectsNothing(t *testing.T) {
	niveis := sqlite.NewTable[types.Nivel](openTestDB(t))

	rows, err := niveis.Update(context.Background(), map[string]any{"nivel": "x"}, storage.ByID(7))
	require.NoError(t, err)
	assert.Zero(t, rows)
}

func TestTable_ExplicitFalseSurvivesDefault(t *testing.T) {
	ctx := context.Background()
	pessoas := sqlite.NewTable[types.Pessoa](openTestDB(t))

	p := types.Pessoa{Nome: "Bruno", Email: "bruno@escola.com", Ativo: ptr(false)}
	require.NoError(t, pessoas.Create(ctx, &p))

	got, err := pessoas.FindOne(ctx, storage.ByID(p.ID))
	require.NoError(t, err)
	require.NotNil(t, got)
	require.NotNil(t, got.Ativo)
	assert.False(t, *got.Ativo)
}

func TestTable_DestroyReportsAffectedRows(t *testing.T) {
	ctx := context.Background()
	niveis := sqlite.NewTable[types.Nivel](openTestDB(t))

	n := types.Nivel{Nivel: "Avançado"}
	require.NoError(t, niveis.Create(ctx, &n))

	rows, err := niveis.Destroy(ctx, storage.ByID(n.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = niveis.Destroy(ctx, storage.ByID(n.ID))
	require.NoError(t, err)
	assert.Zero(t, rows)

	got, err := niveis.FindOne(ctx, storage.ByID(n.ID))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestTable_ForeignKeysAreEnforced(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	turmas := sqlite.NewTable[types.Turma](db)

	err := turmas.Create(ctx, &types.Turma{DataInicio: "2022-04-20", NivelID: ptr(int64(42))})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "turmas: create")
	assert.Contains(t, err.Error(), "FOREIGN KEY constraint failed")

	niveis := sqlite.NewTable[types.Nivel](db)
	pessoas := sqlite.NewTable[types.Pessoa](db)
	n := types.Nivel{Nivel: "Iniciante"}
	require.NoError(t, niveis.Create(ctx, &n))
	p := types.Pessoa{Nome: "Carla", Email: "carla@escola.com", Role: "docente"}
	require.NoError(t, pessoas.Create(ctx, &p))

	turma := types.Turma{DataInicio: "2022-04-20", NivelID: &n.ID, DocenteID: &p.ID}
	require.NoError(t, turmas.Create(ctx, &turma))

	// The level is still referenced, so it cannot be removed.
	_, err = niveis.Destroy(ctx, storage.ByID(n.ID))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "niveis: destroy")
}
