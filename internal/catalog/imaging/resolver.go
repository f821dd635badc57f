// Package imaging picks the image URL shown and persisted for a product in
// its currently selected color. Catalog data is inconsistent (some products
// carry per-variant images, some only the generic slots, some stale URLs),
// so resolution walks a fixed priority chain and always ends at a
// placeholder. Resolution is pure: identical input yields identical output,
// keeping the image recorded on a quote reproducible for support.
package imaging

import (
	"net/url"
	"strings"

	"github.com/ecologic-brindes/ecologic-backend/internal/sales/pricing"
)

// Placeholder is the final fallback asset; resolution never returns "".
const Placeholder = "/assets/produto-sem-imagem.png"

// Input bundles everything resolution may consult.
type Input struct {
	Color                  string
	Variations             []pricing.Variation
	SelectedVariationImage string

	// Structured snapshot of the variation matched when the user picked the
	// color through the swatch UI, when one was recorded.
	SelectedVariation *pricing.Variation

	// Generic catalog image slots.
	Image0 string
	Image1 string
	Image2 string
}

// colorSlot maps common hue names (Portuguese and English) to the generic
// image slot that usually shows that hue. Best-effort heuristic, consulted
// only after explicit signals; kept a plain table so it can shrink as
// catalog data improves.
var colorSlot = map[string]int{
	"branco":   0,
	"white":    0,
	"natural":  0,
	"kraft":    0,
	"bege":     0,
	"preto":    1,
	"black":    1,
	"cinza":    1,
	"gray":     1,
	"grey":     1,
	"azul":     2,
	"blue":     2,
	"verde":    2,
	"green":    2,
	"vermelho": 2,
	"red":      2,
}

// Resolve returns the single best image URL for the input.
func Resolve(in Input) string {
	return Candidates(in)[0]
}

// Candidates returns every plausible URL in priority order, ending with the
// placeholder. Callers rendering images should advance through the slice on
// load failure rather than jumping straight to the placeholder.
func Candidates(in Input) []string {
	var ordered []string

	// 1. Explicit user override from the swatch UI.
	ordered = append(ordered, in.SelectedVariationImage)

	// 2. The matched variation's own image.
	if in.SelectedVariation != nil {
		ordered = append(ordered, in.SelectedVariation.Image)
	}

	// 3. Case-insensitive lookup of the current color in the variation list.
	want := normalize(in.Color)
	if want != "" {
		for _, v := range in.Variations {
			if normalize(v.Color) == want {
				ordered = append(ordered, v.Image)
				break
			}
		}
	}

	// 4. Heuristic color -> slot mapping.
	if slot, ok := colorSlot[want]; ok {
		ordered = append(ordered, slotImage(in, slot))
	}

	// 5. First non-empty generic slot.
	ordered = append(ordered, in.Image0, in.Image1, in.Image2)

	out := make([]string, 0, len(ordered)+1)
	seen := make(map[string]bool, len(ordered))
	for _, u := range ordered {
		if !Plausible(u) || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}

	// 6. The placeholder always closes the chain.
	return append(out, Placeholder)
}

// Plausible reports whether u looks like a URL worth handing to an <img>
// tag: non-empty, parseable, and either http(s) or root-relative.
func Plausible(u string) bool {
	u = strings.TrimSpace(u)
	if u == "" || u == "null" || u == "undefined" {
		return false
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	if parsed.Scheme != "" {
		return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
	}
	return strings.HasPrefix(u, "/")
}

func slotImage(in Input, slot int) string {
	switch slot {
	case 0:
		return in.Image0
	case 1:
		return in.Image1
	default:
		return in.Image2
	}
}

func normalize(color string) string {
	return strings.ToLower(strings.TrimSpace(color))
}
