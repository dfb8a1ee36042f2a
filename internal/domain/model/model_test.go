package model

import "testing"

func TestStatusValues(t *testing.T) {
	cases := []struct {
		name  string
		got   string
		value string
	}{
		{"order new", string(OrderStatusNew), "new"},
		{"design completed", string(DesignStatusCompleted), "design_completed"},
		{"design converted", string(DesignStatusConverted), "converted"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.value {
				t.Fatalf("expected %s, got %s", tc.value, tc.got)
			}
		})
	}
}

func TestPreviewKindValid(t *testing.T) {
	cases := []struct {
		kind  PreviewKind
		valid bool
	}{
		{PreviewKindOriginal, true},
		{PreviewKindDesign, true},
		{PreviewKind("converted"), false},
		{PreviewKind(""), false},
	}

	for _, tc := range cases {
		if got := tc.kind.Valid(); got != tc.valid {
			t.Fatalf("kind %q: expected valid=%v, got %v", tc.kind, tc.valid, got)
		}
	}
}

func TestCacheFileName(t *testing.T) {
	if got := CacheFileName(PreviewKindOriginal, 18); got != "cache_original_18.webp" {
		t.Fatalf("unexpected original cache name %q", got)
	}
	if got := CacheFileName(PreviewKindDesign, 7); got != "cache_design_7.webp" {
		t.Fatalf("unexpected design cache name %q", got)
	}
}
