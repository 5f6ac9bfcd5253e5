package reconcile

// aliasToID maps curated free-text names and tickers to canonical provider
// identifiers. It covers the major assets whose free-text naming is highly
// variable in transcripts ("btc", "bit coin", "ethereum classic", ...).
// Keys are normalized form (lower case, hyphens folded to spaces); values are
// provider ids. An alias only matches when the canonical list actually
// contains the id, so stale entries degrade to the weaker match steps rather
// than to wrong answers.
var aliasToID = map[string]string{
	"btc":              "bitcoin",
	"bitcoin":          "bitcoin",
	"bit coin":         "bitcoin",
	"xbt":              "bitcoin",
	"eth":              "ethereum",
	"ethereum":         "ethereum",
	"ether":            "ethereum",
	"etc":              "ethereum-classic",
	"ethereum classic": "ethereum-classic",
	"sol":              "solana",
	"solana":           "solana",
	"xrp":              "ripple",
	"ripple":           "ripple",
	"doge":             "dogecoin",
	"dogecoin":         "dogecoin",
	"doge coin":        "dogecoin",
	"ada":              "cardano",
	"cardano":          "cardano",
	"bnb":              "binancecoin",
	"binance coin":     "binancecoin",
	"dot":              "polkadot",
	"polkadot":         "polkadot",
	"link":             "chainlink",
	"chainlink":        "chainlink",
	"chain link":       "chainlink",
	"matic":            "matic-network",
	"polygon":          "matic-network",
	"avax":             "avalanche-2",
	"avalanche":        "avalanche-2",
	"shib":             "shiba-inu",
	"shiba inu":        "shiba-inu",
	"ltc":              "litecoin",
	"litecoin":         "litecoin",
	"lite coin":        "litecoin",
	"uni":              "uniswap",
	"uniswap":          "uniswap",
	"atom":             "cosmos",
	"cosmos":           "cosmos",
	"near":             "near",
	"near protocol":    "near",
	"ton":              "the-open-network",
	"toncoin":          "the-open-network",
	"trx":              "tron",
	"tron":             "tron",
	"xlm":              "stellar",
	"stellar":          "stellar",
	"pepe":             "pepe",
	"sui":              "sui",
	"apt":              "aptos",
	"aptos":            "aptos",
	"arb":              "arbitrum",
	"arbitrum":         "arbitrum",
	"op":               "optimism",
	"optimism":         "optimism",
	"inj":              "injective-protocol",
	"injective":        "injective-protocol",
	"hbar":             "hedera-hashgraph",
	"hedera":           "hedera-hashgraph",
	"fil":              "filecoin",
	"filecoin":         "filecoin",
	"icp":              "internet-computer",
	"internet computer": "internet-computer",
	"vet":              "vechain",
	"vechain":          "vechain",
	"algo":             "algorand",
	"algorand":         "algorand",
	"usdt":             "tether",
	"tether":           "tether",
	"usdc":             "usd-coin",
	"usd coin":         "usd-coin",
	"xmr":              "monero",
	"monero":           "monero",
	"aave":             "aave",
	"mkr":              "maker",
	"maker":            "maker",
	"ldo":              "lido-dao",
	"lido":             "lido-dao",
	"rndr":             "render-token",
	"render":           "render-token",
	"tia":              "celestia",
	"celestia":         "celestia",
	"sei":              "sei-network",
	"kas":              "kaspa",
	"kaspa":            "kaspa",
	"bonk":             "bonk",
	"wif":              "dogwifcoin",
	"dogwifhat":        "dogwifcoin",
	"fet":              "fetch-ai",
	"fetch ai":         "fetch-ai",
	"tao":              "bittensor",
	"bittensor":        "bittensor",
}

// lookupAlias resolves a normalized key through the curated alias table.
func lookupAlias(key string) (string, bool) {
	id, ok := aliasToID[key]
	return id, ok
}
