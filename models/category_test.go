package models

import "testing"

func TestResolveCategoryLabel(t *testing.T) {
	tests := []struct {
		name      string
		raw       bool
		supply    bool
		finished  bool
		wantLabel string
	}{
		{"raw only", true, false, false, CategoryLabelRawMaterials},
		{"finished only", false, false, true, CategoryLabelResaleGoods},
		{"supply only falls back to general", false, true, false, CategoryLabelGeneral},
		{"raw and supply", true, true, false, CategoryLabelMixed},
		{"raw and finished", true, false, true, CategoryLabelMixed},
		{"supply and finished", false, true, true, CategoryLabelMixed},
		{"all three", true, true, true, CategoryLabelMixed},
		{"none", false, false, false, CategoryLabelGeneral},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := resolveCategoryLabel(tc.raw, tc.supply, tc.finished)
			if got != tc.wantLabel {
				t.Fatalf("resolveCategoryLabel(%v, %v, %v) = %q, want %q", tc.raw, tc.supply, tc.finished, got, tc.wantLabel)
			}
		})
	}
}
