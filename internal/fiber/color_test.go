// File path: internal/fiber/color_test.go
package fiber

import "testing"

func TestResolveSubstringMatch(t *testing.T) {
	color, ok := Resolve("Fibra Azul Clara")
	if !ok {
		t.Fatal("expected a match for azul label")
	}
	if color.Name != "azul" || color.Hex != "#0000FF" {
		t.Fatalf("unexpected color: %+v", color)
	}
}

func TestResolveIsCaseInsensitive(t *testing.T) {
	color, ok := Resolve("VERMELHA")
	if !ok || color.Name != "vermelha" {
		t.Fatalf("resolve(VERMELHA) = %+v, %v", color, ok)
	}
}

func TestResolveFirstTableEntryWins(t *testing.T) {
	// Label naming two strands resolves to the one listed first.
	color, ok := Resolve("azul com marca verde")
	if !ok || color.Name != "azul" {
		t.Fatalf("resolve = %+v, %v", color, ok)
	}
}

func TestResolveUnknownLabel(t *testing.T) {
	if color, ok := Resolve("desconhecida"); ok {
		t.Fatalf("expected no match, got %+v", color)
	}
}

func TestResolveEmptyLabel(t *testing.T) {
	if _, ok := Resolve(""); ok {
		t.Fatal("empty label must not resolve")
	}
}
