package repository

import (
	"strings"
	"testing"
	"time"
)

func TestBuildListEntriesQuery_OwnerOnly(t *testing.T) {
	query, args := buildListEntriesQuery(EntryFilter{OwnerID: "owner-1"})

	if !strings.Contains(query, "WHERE owner_id = $1") {
		t.Errorf("query not owner scoped: %s", query)
	}
	if !strings.HasSuffix(query, "ORDER BY created_at DESC, id DESC") {
		t.Errorf("expected unbounded newest-first ordering, got: %s", query)
	}
	if strings.Contains(query, "LIMIT") {
		t.Errorf("expected no LIMIT without a limit, got: %s", query)
	}
	if len(args) != 1 || args[0] != "owner-1" {
		t.Errorf("unexpected args: %v", args)
	}
}

func TestBuildListEntriesQuery_AllFilters(t *testing.T) {
	from := time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2025, time.October, 8, 0, 0, 0, 0, time.UTC)

	query, args := buildListEntriesQuery(EntryFilter{
		OwnerID:       "owner-1",
		Limit:         3,
		TitleContains: "100%_done",
		CreatedFrom:   &from,
		CreatedUntil:  &until,
	})

	wantFragments := []string{
		`title ILIKE '%' || $2 || '%' ESCAPE '\'`,
		"created_at >= $3",
		"created_at < $4",
		"ORDER BY created_at DESC, id DESC LIMIT $5",
	}
	for _, frag := range wantFragments {
		if !strings.Contains(query, frag) {
			t.Errorf("query missing %q: %s", frag, query)
		}
	}

	if len(args) != 5 {
		t.Fatalf("expected 5 args, got %d: %v", len(args), args)
	}
	if args[1] != `100\%\_done` {
		t.Errorf("title pattern not escaped: %v", args[1])
	}
	if args[4] != 3 {
		t.Errorf("expected limit arg 3, got %v", args[4])
	}
}

func TestBuildListEntriesQuery_NonPositiveLimitIsUnbounded(t *testing.T) {
	for _, limit := range []int{0, -1} {
		query, _ := buildListEntriesQuery(EntryFilter{OwnerID: "o", Limit: limit})
		if strings.Contains(query, "LIMIT") {
			t.Errorf("limit %d: expected no LIMIT, got %s", limit, query)
		}
	}
}

func TestEscapeLike(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain", "plain"},
		{"50%", `50\%`},
		{"snake_case", `snake\_case`},
		{`back\slash`, `back\\slash`},
		{"", ""},
	}

	for _, tt := range tests {
		if got := escapeLike(tt.in); got != tt.want {
			t.Errorf("escapeLike(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
