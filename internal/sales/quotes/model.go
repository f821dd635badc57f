package quotes

import "time"

// Status values follow the legacy schema's Portuguese vocabulary.
type Status string

const (
	StatusRequested Status = "solicitado"
	StatusGenerated Status = "gerado"
	StatusApproved  Status = "aprovado"
)

// QuoteRequest is a customer's pricing request (solicitacao_orcamentos).
// It moves linearly solicitado -> gerado -> aprovado; once generated it is
// read-only to the editor unless the record is a duplicate copy.
type QuoteRequest struct {
	ID             int64      `json:"id"`
	Numero         *string    `json:"numero,omitempty"`
	ClientID       int64      `json:"client_id"`
	ConsultantID   *int64     `json:"consultant_id,omitempty"`
	Status         Status     `json:"status"`
	DuplicatedFrom *int64     `json:"duplicada_de,omitempty"`
	Notes          *string    `json:"observacoes,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	Lines          []QuoteLine `json:"lines,omitempty"`
}

// Editable reports whether the line-editing path may touch this quote.
// Duplicate copies reset to editable regardless of status.
func (q *QuoteRequest) Editable() bool {
	return q.Status == StatusRequested || q.DuplicatedFrom != nil
}

// QuoteLine is one consolidated product row (products_solicitacao). Field
// names reproduce the legacy schema exactly; reporting and printing code
// outside this repo reads these columns.
type QuoteLine struct {
	ID            int64 `json:"id"`
	SolicitacaoID int64 `json:"solicitacao_id"`
	ProductID     int64 `json:"products_id"`

	Quantity1 float64 `json:"products_quantidade_01"`
	Quantity2 float64 `json:"products_quantidade_02"`
	Quantity3 float64 `json:"products_quantidade_03"`

	Color           string  `json:"color"`
	Customizations  *string `json:"customizations,omitempty"`
	Engraving       *string `json:"gravacao,omitempty"`
	Personalization *string `json:"personalizacao,omitempty"`
	Info            *string `json:"info,omitempty"`

	Cost      *float64 `json:"custo,omitempty"`
	UnitPrice *float64 `json:"preco_unitario,omitempty"`
	UnitValue *float64 `json:"valor_unitario,omitempty"`
	Factor    *float64 `json:"fator,omitempty"`

	TierPrice1 *float64 `json:"valor_qtd01,omitempty"`
	TierPrice2 *float64 `json:"valor_qtd02,omitempty"`
	TierPrice3 *float64 `json:"valor_qtd03,omitempty"`

	Notes *string `json:"observacoes,omitempty"`

	// SelectedColor holds either the plain color string or, when the color
	// was resolved from the product's variation list, a JSON snapshot of the
	// matched variation (for traceability).
	SelectedColor  string  `json:"cor_selecionada"`
	VariationImage *string `json:"imagem_variacao,omitempty"`
	ImageRefURL    string  `json:"img_ref_url"`
}

// ListQuotesRequest narrows quote listings for the back-office.
type ListQuotesRequest struct {
	ConsultantID *int64
	ClientID     *int64
	Status       *Status
	Limit        int
	Offset       int
}

// QuoteWithClient augments a listing row with the client's identity.
type QuoteWithClient struct {
	QuoteRequest
	ClientName  string `json:"client_name"`
	ClientEmail string `json:"client_email"`
}
