package catalog

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/geriatria/historia-clinica/internal/platform/apperr"
)

// -- Mock Catalog Repository --

type mockRepo struct {
	values map[Name][]Entry
	err    error
}

func newMockRepo() *mockRepo {
	return &mockRepo{values: map[Name][]Entry{
		Sexo:         {{1, "Masculino"}, {2, "Femenino"}},
		EstadoCivil:  {{1, "Soltero/a"}, {2, "Casado/a"}},
		InformadoPor: {{1, "Paciente"}, {2, "Familiar"}, {3, "Ambos"}, {4, "Otro"}},
	}}
}

func (m *mockRepo) Lookup(_ context.Context, catalog Name, value string) (int32, error) {
	if m.err != nil {
		return 0, m.err
	}
	for _, e := range m.values[catalog] {
		if e.Nombre == value {
			return e.ID, nil
		}
	}
	return 0, ErrValueNotFound
}

func (m *mockRepo) List(_ context.Context, catalog Name) ([]Entry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.values[catalog], nil
}

func TestResolve_Hit(t *testing.T) {
	r := NewResolver(newMockRepo(), false, zerolog.Nop())
	id, err := r.Resolve(context.Background(), Sexo, "Femenino")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == nil || *id != 2 {
		t.Errorf("id = %v, want 2", id)
	}
}

func TestResolve_EmptyIsNull(t *testing.T) {
	for _, strict := range []bool{false, true} {
		r := NewResolver(newMockRepo(), strict, zerolog.Nop())
		id, err := r.Resolve(context.Background(), Sexo, "")
		if err != nil || id != nil {
			t.Errorf("strict=%v: Resolve(\"\") = %v, %v; want nil, nil", strict, id, err)
		}
	}
}

func TestResolve_LenientMissLogsAndReturnsNull(t *testing.T) {
	var buf bytes.Buffer
	r := NewResolver(newMockRepo(), false, zerolog.New(&buf))

	id, err := r.Resolve(context.Background(), Sexo, "masculino")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != nil {
		t.Errorf("expected null for case mismatch, got %d", *id)
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) || !strings.Contains(buf.String(), "masculino") {
		t.Errorf("expected warning log, got %s", buf.String())
	}
}

func TestResolve_StrictMissIsValidation(t *testing.T) {
	r := NewResolver(newMockRepo(), true, zerolog.Nop())
	_, err := r.Resolve(context.Background(), EstadoCivil, "Comprometido")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	msg := apperr.PublicMessage(err)
	if !strings.Contains(msg, "estado_civil") || !strings.Contains(msg, "Comprometido") {
		t.Errorf("message should name catalog and value: %q", msg)
	}
}

func TestResolve_RepositoryError(t *testing.T) {
	repo := newMockRepo()
	repo.err = errors.New("conn closed")
	r := NewResolver(repo, false, zerolog.Nop())
	if _, err := r.Resolve(context.Background(), Sexo, "Masculino"); err == nil {
		t.Error("expected repository error to propagate")
	}
}

func TestList(t *testing.T) {
	r := NewResolver(newMockRepo(), false, zerolog.Nop())
	entries, err := r.List(context.Background(), "informado_por")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 4 || entries[3].Nombre != "Otro" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestList_UnknownCatalog(t *testing.T) {
	r := NewResolver(newMockRepo(), false, zerolog.Nop())
	if _, err := r.List(context.Background(), "usuario"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestParseName(t *testing.T) {
	for _, n := range Known {
		if got, err := ParseName(string(n)); err != nil || got != n {
			t.Errorf("ParseName(%q) = %q, %v", n, got, err)
		}
	}
	if _, err := ParseName("sexo; DROP TABLE usuario"); err == nil {
		t.Error("expected error for unknown name")
	}
}
