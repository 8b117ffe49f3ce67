// File path: internal/workorder/types.go
package workorder

import (
	"strings"

	"github.com/jmcardoso/fieldops/internal/extract"
	"github.com/jmcardoso/fieldops/internal/fiber"
	"github.com/jmcardoso/fieldops/internal/portal"
)

// Record is the fully derived work-order record served to the dashboard.
// It is immutable once computed and recomputed whole on every cache miss.
type Record struct {
	ID string `json:"id"`

	Address         string       `json:"address"`
	Latitude        float64      `json:"latitude"`
	Longitude       float64      `json:"longitude"`
	FiberColorLabel string       `json:"fiber_color_label"`
	FiberColor      *fiber.Color `json:"fiber_color,omitempty"`
	ServiceType     string       `json:"service_type"`
	ScheduledDate   string       `json:"scheduled_date"`
	ScheduledTime   string       `json:"scheduled_time"`
	Status          string       `json:"status"`
	Description     string       `json:"description"`

	Access            string `json:"access"`
	BoxCount          string `json:"box_count"`
	BoxType           string `json:"box_type"`
	PhoneDeliveryNote string `json:"phone_delivery_note"`
	SLID              string `json:"slid"`
}

// NewRecord assembles a Record from the raw allocation: the address runs
// through the normalizer, the fiber label through the resolver, and the
// free-form description through the field extractor. Deterministic: the same
// allocation always yields the same record.
func NewRecord(id string, alloc *portal.Allocation) Record {
	fields := extract.Extract(alloc.Descricao)

	// The portal sometimes carries the service-line id as its own field;
	// when present it wins over the one mined from the description.
	slid := strings.TrimSpace(alloc.SLID)
	if slid == "" {
		slid = fields.SLID
	}

	status := strings.TrimSpace(alloc.Estado)
	if status == "" {
		status = strings.TrimSpace(alloc.Observacoes)
	}

	rec := Record{
		ID:                id,
		Address:           extract.NormalizeAddress(alloc.Endereco),
		Latitude:          alloc.Latitude,
		Longitude:         alloc.Longitude,
		FiberColorLabel:   alloc.CorFibra,
		ServiceType:       alloc.TipoServico,
		ScheduledDate:     alloc.DataAgendamento,
		ScheduledTime:     alloc.Horario,
		Status:            status,
		Description:       alloc.Descricao,
		Access:            fields.Access,
		BoxCount:          fields.BoxCount,
		BoxType:           fields.BoxType,
		PhoneDeliveryNote: fields.PhoneDeliveryNote,
		SLID:              slid,
	}
	if color, ok := fiber.Resolve(alloc.CorFibra); ok {
		rec.FiberColor = &color
	}
	return rec
}
