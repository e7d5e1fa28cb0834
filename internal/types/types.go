// Package types holds the records served by the API and their partial
// update shapes. Keeping them in one place prevents import cycles:
// handlers, storage, and the router can all import types without
// depending on each other.
//
// Each record is a GORM model. Struct tags serve three purposes:
//
//  1. json:"..."     controls the field name on the wire.
//  2. gorm:"..."     column options for the ORM (keys, defaults).
//  3. validate:"..." rules checked by go-playground/validator, only when
//     the server runs with strict_bodies enabled.
package types

import "time"

// Nivel is a course level (e.g. "Iniciante", "Avançado").
type Nivel struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Nivel     string    `json:"nivel" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Nivel) TableName() string { return "niveis" }

// Pessoa is a person: a student or a teacher.
//
// Ativo is a pointer so that an explicit false survives the column's
// default of true on insert.
type Pessoa struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	Nome      string    `json:"nome" validate:"required"`
	Ativo     *bool     `json:"ativo" gorm:"default:true"`
	Email     string    `json:"email" validate:"required,email"`
	Role      string    `json:"role" validate:"omitempty,oneof=estudante docente"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Pessoa) TableName() string { return "pessoas" }

// Turma is a class: a cohort starting on a given date, at a given level,
// taught by one person.
type Turma struct {
	ID         int64     `json:"id" gorm:"primaryKey"`
	DataInicio string    `json:"data_inicio" validate:"required,datetime=2006-01-02"`
	NivelID    *int64    `json:"nivel_id" validate:"required"`
	DocenteID  *int64    `json:"docente_id" validate:"required"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// Belongs-to associations. They exist so the ORM creates the foreign
	// keys; they are never loaded or serialised.
	Nivel   *Nivel  `json:"-" gorm:"foreignKey:NivelID" validate:"-"`
	Docente *Pessoa `json:"-" gorm:"foreignKey:DocenteID" validate:"-"`
}

func (Turma) TableName() string { return "turmas" }

// ─────────────────────────────────────────────────────────────────────────────
// Partial updates
//
// A PUT body only carries the fields the client wants to change. Every
// field of a *Patch type is a pointer: nil means "absent from the body",
// so Columns() can return just the columns to overwrite. Whatever is not
// listed keeps its stored value.
// ─────────────────────────────────────────────────────────────────────────────

type NivelPatch struct {
	Nivel *string `json:"nivel" validate:"omitempty,min=1"`
}

func (p NivelPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Nivel != nil {
		cols["nivel"] = *p.Nivel
	}
	return cols
}

type PessoaPatch struct {
	Nome  *string `json:"nome" validate:"omitempty,min=1"`
	Ativo *bool   `json:"ativo"`
	Email *string `json:"email" validate:"omitempty,email"`
	Role  *string `json:"role" validate:"omitempty,oneof=estudante docente"`
}

func (p PessoaPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.Nome != nil {
		cols["nome"] = *p.Nome
	}
	if p.Ativo != nil {
		cols["ativo"] = *p.Ativo
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.Role != nil {
		cols["role"] = *p.Role
	}
	return cols
}

type TurmaPatch struct {
	DataInicio *string `json:"data_inicio" validate:"omitempty,datetime=2006-01-02"`
	NivelID    *int64  `json:"nivel_id"`
	DocenteID  *int64  `json:"docente_id"`
}

func (p TurmaPatch) Columns() map[string]any {
	cols := make(map[string]any)
	if p.DataInicio != nil {
		cols["data_inicio"] = *p.DataInicio
	}
	if p.NivelID != nil {
		cols["nivel_id"] = *p.NivelID
	}
	if p.DocenteID != nil {
		cols["docente_id"] = *p.DocenteID
	}
	return cols
}
