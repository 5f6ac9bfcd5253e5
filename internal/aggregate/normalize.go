// Package aggregate builds the category and per-coin channel rollups that
// feed the dashboard alongside the reconciled coin table.
package aggregate

import "strings"

// categorySynonyms maps kebab-case category spellings onto one canonical
// identifier. Raw labels are free text with inconsistent casing and plurals;
// labels not covered here fall back to their mechanical kebab-case form.
var categorySynonyms = map[string]string{
	"meme":                  "meme-token",
	"memes":                 "meme-token",
	"meme-coin":             "meme-token",
	"meme-coins":            "meme-token",
	"memecoin":              "meme-token",
	"memecoins":             "meme-token",
	"meme-tokens":           "meme-token",
	"defi":                  "decentralized-finance-defi",
	"de-fi":                 "decentralized-finance-defi",
	"decentralized-finance": "decentralized-finance-defi",
	"decentralised-finance": "decentralized-finance-defi",
	"ai":                     "artificial-intelligence",
	"ai-coins":               "artificial-intelligence",
	"ai-agents":              "artificial-intelligence",
	"artificial-intelligence": "artificial-intelligence",
	"layer-1":                "layer-1",
	"l1":                     "layer-1",
	"layer-one":              "layer-1",
	"layer-2":                "layer-2",
	"l2":                     "layer-2",
	"layer-two":              "layer-2",
	"nft":                    "non-fungible-tokens-nft",
	"nfts":                   "non-fungible-tokens-nft",
	"non-fungible-tokens":    "non-fungible-tokens-nft",
	"gaming":                 "gaming",
	"gamefi":                 "gaming",
	"game-fi":                "gaming",
	"play-to-earn":           "gaming",
	"rwa":                    "real-world-assets",
	"real-world-assets":      "real-world-assets",
	"privacy":                "privacy-coins",
	"privacy-coin":           "privacy-coins",
	"privacy-coins":          "privacy-coins",
	"stablecoin":             "stablecoins",
	"stable-coin":            "stablecoins",
	"stable-coins":           "stablecoins",
	"stablecoins":            "stablecoins",
	"depin":                  "depin",
	"smart-contract-platform": "smart-contract-platform",
	"smart-contracts":         "smart-contract-platform",
}

// categoryDisplayNames holds curated human-readable names for canonical
// category ids. Ids without an entry display their first-seen raw label.
var categoryDisplayNames = map[string]string{
	"meme-token":                 "Meme Tokens",
	"decentralized-finance-defi": "DeFi",
	"artificial-intelligence":    "AI",
	"layer-1":                    "Layer 1",
	"layer-2":                    "Layer 2",
	"non-fungible-tokens-nft":    "NFTs",
	"gaming":                     "Gaming",
	"real-world-assets":          "Real World Assets",
	"privacy-coins":              "Privacy Coins",
	"stablecoins":                "Stablecoins",
	"depin":                      "DePIN",
	"smart-contract-platform":    "Smart Contract Platform",
}

// kebab lower-cases s, trims it, and collapses internal whitespace runs into
// single hyphens.
func kebab(s string) string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(s)))
	return strings.Join(fields, "-")
}

// NormalizeCategory maps a free-text category label to its canonical id.
// The transform is idempotent: normalizing an already-normalized id returns
// it unchanged. Empty or whitespace-only labels normalize to "".
func NormalizeCategory(raw string) string {
	id := kebab(raw)
	if id == "" {
		return ""
	}
	if canonical, ok := categorySynonyms[id]; ok {
		return canonical
	}
	return id
}

// DisplayName returns the curated display name for a canonical category id,
// or fallback when none is curated.
func DisplayName(id, fallback string) string {
	if name, ok := categoryDisplayNames[id]; ok {
		return name
	}
	return fallback
}
