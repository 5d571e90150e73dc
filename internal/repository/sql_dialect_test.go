package repository

import (
	"testing"
)

func TestBuildKeywordConditionByDialectSQLite(t *testing.T) {
	condition, argCount := buildKeywordConditionByDialect("sqlite", []string{"email", "name"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	want := "email LIKE ? OR name LIKE ?"
	if condition != want {
		t.Fatalf("condition want %q got %q", want, condition)
	}
}

func TestBuildKeywordConditionByDialectPostgres(t *testing.T) {
	condition, argCount := buildKeywordConditionByDialect("postgres", []string{"business_name", "contact_email"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	want := "business_name ILIKE ? OR contact_email ILIKE ?"
	if condition != want {
		t.Fatalf("condition want %q got %q", want, condition)
	}
}

func TestBuildKeywordConditionSkipsBlankColumns(t *testing.T) {
	condition, argCount := buildKeywordConditionByDialect("sqlite", []string{"title", "  ", ""})
	if argCount != 1 {
		t.Fatalf("arg count want 1 got %d", argCount)
	}
	if condition != "title LIKE ?" {
		t.Fatalf("condition want %q got %q", "title LIKE ?", condition)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}
