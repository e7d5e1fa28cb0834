package types_test

import (
	"testing"

	"github.com/aanand-mishra/school-api/internal/types"
	"github.com/stretchr/testify/assert"
)

func ptr[V any](v V) *V { return &v }

func TestPatchColumns_OnlyPresentFields(t *testing.T) {
	assert.Empty(t, types.NivelPatch{}.Columns())
	assert.Empty(t, types.PessoaPatch{}.Columns())
	assert.Empty(t, types.TurmaPatch{}.Columns())

	assert.Equal(t, map[string]any{"nivel": "Avançado"},
		types.NivelPatch{Nivel: ptr("Avançado")}.Columns())

	assert.Equal(t, map[string]any{"ativo": false, "role": "docente"},
		types.PessoaPatch{Ativo: ptr(false), Role: ptr("docente")}.Columns())

	assert.Equal(t, map[string]any{"data_inicio": "2022-04-20", "docente_id": int64(3)},
		types.TurmaPatch{DataInicio: ptr("2022-04-20"), DocenteID: ptr(int64(3))}.Columns())
}

func TestTableNames(t *testing.T) {
	assert.Equal(t, "niveis", types.Nivel{}.TableName())
	assert.Equal(t, "pessoas", types.Pessoa{}.TableName())
	assert.Equal(t, "turmas", types.Turma{}.TableName())
}
