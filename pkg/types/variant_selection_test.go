package types

import "testing"

func TestVariantSelectionKeyIsOrderIndependent(t *testing.T) {
	a := VariantSelection{"Size": "M", "Color": "Cognac"}
	b := VariantSelection{"Color": "Cognac", "Size": "M"}

	if a.Key() != b.Key() {
		t.Fatalf("keys differ: %q vs %q", a.Key(), b.Key())
	}
	if a.Key() != "Color=Cognac;Size=M" {
		t.Fatalf("unexpected canonical key %q", a.Key())
	}
	if !a.Equal(b) {
		t.Fatal("expected selections to be equal")
	}
}

func TestVariantSelectionKeyEmptyForBaseProduct(t *testing.T) {
	var nilSelection VariantSelection
	if nilSelection.Key() != "" {
		t.Fatalf("nil selection should encode empty, got %q", nilSelection.Key())
	}
	if (VariantSelection{}).Key() != "" {
		t.Fatal("empty selection should encode empty")
	}
	if (VariantSelection{"  ": "M", "Size": "  "}).Key() != "" {
		t.Fatal("blank entries should be dropped")
	}
}

func TestVariantSelectionNormalizeTrims(t *testing.T) {
	sel := VariantSelection{" Size ": " M ", "Color": "Tan"}
	normalized := sel.Normalize()
	if normalized["Size"] != "M" {
		t.Fatalf("expected trimmed entry, got %v", normalized)
	}
	if len(normalized) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(normalized))
	}
}

func TestVariantSelectionDistinctValuesDiffer(t *testing.T) {
	a := VariantSelection{"Size": "M"}
	b := VariantSelection{"Size": "L"}
	if a.Equal(b) {
		t.Fatal("different values must not collide")
	}
}
