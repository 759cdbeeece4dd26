package postgres

import (
	"database/sql"
	"testing"
	"time"
)

func TestNullTimeRoundTrip(t *testing.T) {
	if got := nullTime(nil); got.Valid {
		t.Fatal("nil time must map to invalid NullTime")
	}

	at := time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC)
	wrapped := nullTime(&at)
	if !wrapped.Valid || !wrapped.Time.Equal(at) {
		t.Fatalf("unexpected wrapped time: %+v", wrapped)
	}

	back := nullTimePtr(wrapped)
	if back == nil || !back.Equal(at) {
		t.Fatalf("unexpected unwrapped time: %v", back)
	}
	if nullTimePtr(sql.NullTime{}) != nil {
		t.Fatal("invalid NullTime must unwrap to nil")
	}
}

func TestNullIntAndFloatHelpers(t *testing.T) {
	odds := -110
	if got := nullInt(&odds); !got.Valid || got.Int64 != -110 {
		t.Fatalf("unexpected wrapped int: %+v", got)
	}
	if nullIntPtr(sql.NullInt64{}) != nil {
		t.Fatal("invalid NullInt64 must unwrap to nil")
	}

	score := 0.0909
	if got := nullFloat(&score); !got.Valid || got.Float64 != 0.0909 {
		t.Fatalf("unexpected wrapped float: %+v", got)
	}
	if back := nullFloatPtr(sql.NullFloat64{Float64: 0.5, Valid: true}); back == nil || *back != 0.5 {
		t.Fatalf("unexpected unwrapped float: %v", back)
	}
}
