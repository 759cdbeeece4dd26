package querybuilder

import "testing"

func TestSelectToSQL(t *testing.T) {
	query, args, err := Select("*").From("picks").
		Where(
			Eq("game_id", "g1"),
			In("status", []any{"pending", "locked"}),
			IsNull("deleted_at"),
		).
		OrderBy("created_at", "id").
		Limit(50).
		ToSQL()
	if err != nil {
		t.Fatalf("build select: %v", err)
	}

	want := "SELECT * FROM picks WHERE game_id = $1 AND status IN ($2, $3) AND deleted_at IS NULL ORDER BY created_at, id LIMIT 50"
	if query != want {
		t.Fatalf("unexpected query:\n got=%s\nwant=%s", query, want)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected arg count: got=%d want=3", len(args))
	}
}

func TestSelectToSQL_RangeConditions(t *testing.T) {
	query, args, err := Select("id").From("games").
		Where(
			Gte("finalized_at", "2026-01-01"),
			Lte("finalized_at", "2026-01-02"),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build range select: %v", err)
	}

	want := "SELECT id FROM games WHERE finalized_at >= $1 AND finalized_at <= $2"
	if query != want {
		t.Fatalf("unexpected query: got=%s", query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected arg count: got=%d want=2", len(args))
	}
}

func TestUpdateToSQL(t *testing.T) {
	query, args, err := Update("picks").
		Set("status", "graded").
		Set("result", "win").
		Where(
			Eq("public_id", "p1"),
			In("status", []any{"pending", "locked"}),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build update: %v", err)
	}

	want := "UPDATE picks SET status = $1, result = $2 WHERE public_id = $3 AND status IN ($4, $5)"
	if query != want {
		t.Fatalf("unexpected query:\n got=%s\nwant=%s", query, want)
	}
	if len(args) != 5 {
		t.Fatalf("unexpected arg count: got=%d want=5", len(args))
	}
}

func TestInsertToSQL_WithConflictSuffix(t *testing.T) {
	query, args, err := InsertInto("ledger_entries").
		Columns("pick_id", "action", "dedup_key").
		Values("p1", "pick_graded", "p1:pick_graded").
		Suffix("ON CONFLICT (dedup_key) DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert: %v", err)
	}

	want := "INSERT INTO ledger_entries (pick_id, action, dedup_key) VALUES ($1, $2, $3) ON CONFLICT (dedup_key) DO NOTHING"
	if query != want {
		t.Fatalf("unexpected query:\n got=%s\nwant=%s", query, want)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected arg count: got=%d want=3", len(args))
	}
}

func TestInsertToSQL_RowArityMismatch(t *testing.T) {
	_, _, err := InsertInto("ledger_entries").
		Columns("pick_id", "action").
		Values("p1").
		ToSQL()
	if err == nil {
		t.Fatal("expected arity mismatch error")
	}
}
