// File path: internal/workorder/types_test.go
package workorder

import (
	"testing"

	"github.com/jmcardoso/fieldops/internal/extract"
)

func TestNewRecordPrefersExplicitSLID(t *testing.T) {
	alloc := sampleAllocation()
	alloc.SLID = "ZZ99"
	rec := NewRecord("12345678", alloc)
	if rec.SLID != "ZZ99" {
		t.Fatalf("slid = %q, want explicit portal value", rec.SLID)
	}
}

func TestNewRecordFallsBackToExtractedSLID(t *testing.T) {
	alloc := sampleAllocation()
	alloc.SLID = ""
	rec := NewRecord("12345678", alloc)
	if rec.SLID != "AB12CD" {
		t.Fatalf("slid = %q, want extracted value", rec.SLID)
	}
}

func TestNewRecordSLIDSentinelWhenAbsentEverywhere(t *testing.T) {
	alloc := sampleAllocation()
	alloc.SLID = ""
	alloc.Descricao = "sem etiquetas"
	rec := NewRecord("12345678", alloc)
	if rec.SLID != extract.NotAvailable {
		t.Fatalf("slid = %q, want %q", rec.SLID, extract.NotAvailable)
	}
}

func TestNewRecordStatusFallsBackToObservacoes(t *testing.T) {
	alloc := sampleAllocation()
	alloc.Estado = ""
	alloc.Observacoes = "pendente de material"
	rec := NewRecord("12345678", alloc)
	if rec.Status != "pendente de material" {
		t.Fatalf("status = %q", rec.Status)
	}
}

func TestNewRecordOmitsUnresolvedFiberColor(t *testing.T) {
	alloc := sampleAllocation()
	alloc.CorFibra = "desconhecida"
	rec := NewRecord("12345678", alloc)
	if rec.FiberColor != nil {
		t.Fatalf("fiber color = %+v, want nil", rec.FiberColor)
	}
	if rec.FiberColorLabel != "desconhecida" {
		t.Fatalf("label = %q", rec.FiberColorLabel)
	}
}

func TestNewRecordIsDeterministic(t *testing.T) {
	alloc := sampleAllocation()
	first := NewRecord("12345678", alloc)
	second := NewRecord("12345678", alloc)
	if first.Address != second.Address || first.Access != second.Access || first.SLID != second.SLID {
		t.Fatalf("records differ:\n%+v\n%+v", first, second)
	}
}
