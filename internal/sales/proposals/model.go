package proposals

import "time"

// Proposal records a rendered proposal PDF for a generated quote
// (propostas table).
type Proposal struct {
	ID          int64     `json:"id"`
	QuoteID     int64     `json:"solicitacao_id"`
	Numero      string    `json:"numero"`
	PDFPath     string    `json:"pdf_path"`
	SizeBytes   int64     `json:"size_bytes"`
	RenderedAt  time.Time `json:"rendered_at"`
	GeneratedBy *int64    `json:"generated_by,omitempty"`
}
