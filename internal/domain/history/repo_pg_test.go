package history

import (
	"strings"
	"testing"
)

func medicationRows(n int) []Row {
	rows := make([]Row, n)
	for i := range rows {
		rows[i] = Row{i + 1, "Metformina", "850 mg", "2 años", "Sí", ""}
	}
	return rows
}

func TestInsertStatement_Placeholders(t *testing.T) {
	q, args, err := insertStatement("medicamento", []string{"orden", "medicamento"}, 9,
		[]Row{{1, "a"}, {2, "b"}}, 0)
	if err != nil {
		t.Fatalf("insertStatement: %v", err)
	}
	want := "INSERT INTO medicamento (paciente_id, orden, medicamento) VALUES ($1, $2, $3), ($4, $5, $6)"
	if q != want {
		t.Errorf("query = %q\nwant    %q", q, want)
	}
	if len(args) != 6 || args[0] != int64(9) || args[3] != int64(9) || args[5] != "b" {
		t.Errorf("args = %v", args)
	}
}

func TestInsertStatement_ShortRowReportsAbsoluteIndex(t *testing.T) {
	_, _, err := insertStatement("medicamento", []string{"orden", "medicamento"}, 1,
		[]Row{{1, "a"}, {2}}, 100)
	if err == nil || !strings.Contains(err.Error(), "row 101") {
		t.Errorf("err = %v, want mention of row 101", err)
	}
}

func TestSplitRows_StaysUnderBindLimit(t *testing.T) {
	cols := medicationSection.ColumnNames()
	rows := medicationRows(25000)
	per := rowsPerStatement(len(cols))

	batches := splitRows(rows, per)
	if len(batches) != 3 {
		t.Fatalf("got %d batches, want 3", len(batches))
	}

	seen := 0
	for _, b := range batches {
		if b.offset != seen {
			t.Errorf("batch offset = %d, want %d", b.offset, seen)
		}
		_, args, err := insertStatement(medicationSection.Table, cols, 1, b.rows, b.offset)
		if err != nil {
			t.Fatalf("insertStatement: %v", err)
		}
		if len(args) > maxBindParams {
			t.Errorf("batch at %d binds %d params, limit %d", b.offset, len(args), maxBindParams)
		}
		seen += len(b.rows)
	}
	if seen != len(rows) {
		t.Errorf("batches cover %d rows, want %d", seen, len(rows))
	}
}

func TestSplitRows_Empty(t *testing.T) {
	if got := splitRows(nil, 10); len(got) != 0 {
		t.Errorf("splitRows(nil) = %v", got)
	}
}
