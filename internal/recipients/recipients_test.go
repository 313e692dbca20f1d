package recipients_test

import (
	"testing"

	"github.com/JaimeStill/docroute/internal/categories"
	"github.com/JaimeStill/docroute/internal/recipients"
)

func TestResolve(t *testing.T) {
	snap := categories.NewSnapshot([]categories.Category{
		{Name: "Finance", Keywords: []string{"invoice"}, ReceiverEmail: "finance@co.com"},
		{Name: "Legal", Keywords: []string{"nda"}, ReceiverEmail: "legal@co.com"},
	})

	tests := []struct {
		name   string
		ref    categories.Ref
		email  string
		wantOK bool
	}{
		{"known category", categories.ParseRef("Finance"), "finance@co.com", true},
		{"other sentinel", categories.Other, "", false},
		{"unregistered", categories.ParseRef("Payroll"), "", false},
		{"case differs", categories.ParseRef("finance"), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			email, ok := recipients.Resolve(tt.ref, snap)
			if email != tt.email || ok != tt.wantOK {
				t.Errorf("Resolve = (%q, %v), want (%q, %v)", email, ok, tt.email, tt.wantOK)
			}
		})
	}
}

func TestResolveEmptySnapshot(t *testing.T) {
	if _, ok := recipients.Resolve(categories.ParseRef("Finance"), categories.Snapshot{}); ok {
		t.Error("empty snapshot should resolve unset")
	}
}
