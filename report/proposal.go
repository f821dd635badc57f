package report

import (
	"bytes"
	"html/template"
	"time"

	"github.com/ecologic-brindes/ecologic-backend/internal/money"
	"github.com/ecologic-brindes/ecologic-backend/internal/sales/quotes"
)

// ProposalData feeds the proposal HTML template.
type ProposalData struct {
	Numero     string
	ClientName string
	Date       time.Time
	Lines      []proposalLine
	Total      string
}

type proposalLine struct {
	ProductID int64
	Color     string
	Image     string
	Tiers     []proposalTier
	Notes     string
}

type proposalTier struct {
	Quantity float64
	Price    string
	Subtotal string
}

var proposalTmpl = template.Must(template.New("proposal").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Proposta {{.Numero}}</title>
<style>
body { font-family: Helvetica, Arial, sans-serif; color: #1f3d2b; margin: 40px; }
h1 { font-size: 20px; }
table { width: 100%; border-collapse: collapse; margin-top: 16px; }
th, td { border: 1px solid #cfe0d4; padding: 6px 8px; font-size: 12px; text-align: left; }
tfoot td { font-weight: bold; }
img { max-height: 48px; }
</style>
</head>
<body>
<h1>Proposta {{.Numero}}</h1>
<p>Cliente: {{.ClientName}} &middot; {{.Date.Format "02/01/2006"}}</p>
<table>
<thead>
<tr><th>Produto</th><th>Cor</th><th>Imagem</th><th>Quantidade</th><th>Unitário</th><th>Subtotal</th><th>Obs.</th></tr>
</thead>
<tbody>
{{range .Lines}}{{$line := .}}{{range .Tiers}}
<tr>
<td>#{{$line.ProductID}}</td>
<td>{{$line.Color}}</td>
<td><img src="{{$line.Image}}" alt=""></td>
<td>{{.Quantity}}</td>
<td>{{.Price}}</td>
<td>{{.Subtotal}}</td>
<td>{{$line.Notes}}</td>
</tr>
{{end}}{{end}}
</tbody>
<tfoot>
<tr><td colspan="5">Total</td><td colspan="2">{{.Total}}</td></tr>
</tfoot>
</table>
</body>
</html>`))

// BuildProposalHTML renders the proposal document for a generated quote.
func BuildProposalHTML(quote *quotes.QuoteRequest, clientName string, now time.Time) (string, error) {
	numero := ""
	if quote.Numero != nil {
		numero = *quote.Numero
	}

	data := ProposalData{
		Numero:     numero,
		ClientName: clientName,
		Date:       now,
	}

	var total float64
	for _, line := range quote.Lines {
		pl := proposalLine{
			ProductID: line.ProductID,
			Color:     line.Color,
			Image:     line.ImageRefURL,
		}
		if line.Notes != nil {
			pl.Notes = *line.Notes
		}
		for _, tier := range []struct {
			qty   float64
			price *float64
		}{
			{line.Quantity1, line.TierPrice1},
			{line.Quantity2, line.TierPrice2},
			{line.Quantity3, line.TierPrice3},
		} {
			if tier.qty == 0 || tier.price == nil {
				continue
			}
			subtotal := tier.qty * *tier.price
			total += subtotal
			pl.Tiers = append(pl.Tiers, proposalTier{
				Quantity: tier.qty,
				Price:    money.FormatBRL(*tier.price),
				Subtotal: money.FormatBRL(subtotal),
			})
		}
		data.Lines = append(data.Lines, pl)
	}
	data.Total = money.FormatBRL(total)

	var buf bytes.Buffer
	if err := proposalTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
