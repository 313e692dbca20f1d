package categories_test

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/JaimeStill/docroute/internal/categories"
)

func TestValidEmail(t *testing.T) {
	tests := []struct {
		email string
		want  bool
	}{
		{"fin@x.com", true},
		{"first.last+tag@mail.example.org", true},
		{"  padded@co.io  ", true},
		{"not-an-email", false},
		{"bad", false},
		{"a@b", false},
		{"a@b.c", false},
		{"a b@co.com", false},
		{"@co.com", false},
		{"a@co.c0m", false},
	}

	for _, tt := range tests {
		if got := categories.ValidEmail(tt.email); got != tt.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.email, got, tt.want)
		}
	}
}

func TestSplitKeywords(t *testing.T) {
	got := categories.SplitKeywords(" invoice, ,kyc ,", "tax")
	want := []string{"invoice", "kyc", "tax"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}

	if got := categories.SplitKeywords(" , ,"); len(got) != 0 {
		t.Errorf("expected no keywords, got %v", got)
	}
}

func TestKeywordsUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []string
		wantErr bool
	}{
		{"array", `["invoice","kyc"]`, []string{"invoice", "kyc"}, false},
		{"comma string", `"invoice, kyc"`, []string{"invoice", "kyc"}, false},
		{"number", `42`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var k categories.Keywords
			err := json.Unmarshal([]byte(tt.body), &k)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := categories.SplitKeywords(k...); !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseRef(t *testing.T) {
	tests := []struct {
		in      string
		other   bool
		display string
	}{
		{"", true, "Other"},
		{"Other", true, "Other"},
		{"other", true, "Other"},
		{"  Finance ", false, "Finance"},
	}

	for _, tt := range tests {
		ref := categories.ParseRef(tt.in)
		if ref.IsOther() != tt.other {
			t.Errorf("ParseRef(%q).IsOther() = %v", tt.in, ref.IsOther())
		}
		if ref.Name() != tt.display {
			t.Errorf("ParseRef(%q).Name() = %q, want %q", tt.in, ref.Name(), tt.display)
		}
	}

	var zero categories.Ref
	if zero != categories.Other {
		t.Error("zero Ref should equal Other")
	}
}

func TestRefJSON(t *testing.T) {
	var v struct {
		Category categories.Ref `json:"category"`
	}
	if err := json.Unmarshal([]byte(`{"category":"Legal"}`), &v); err != nil {
		t.Fatal(err)
	}
	if v.Category.Name() != "Legal" {
		t.Errorf("name = %q", v.Category.Name())
	}

	v.Category = categories.Other
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"category":"Other"}` {
		t.Errorf("marshal = %s", data)
	}
}

func TestSnapshotIsolated(t *testing.T) {
	src := []categories.Category{
		{Name: "Finance", Keywords: []string{"invoice"}, ReceiverEmail: "fin@x.com"},
	}
	snap := categories.NewSnapshot(src)
	src[0].Keywords[0] = "mutated"
	src[0].ReceiverEmail = "other@x.com"

	c, ok := snap.Lookup("Finance")
	if !ok {
		t.Fatal("expected Finance in snapshot")
	}
	if c.ReceiverEmail != "fin@x.com" || c.Keywords[0] != "invoice" {
		t.Errorf("snapshot reflected source mutation: %+v", c)
	}
	if _, ok := snap.Lookup("finance"); ok {
		t.Error("lookup should be exact match")
	}
}
