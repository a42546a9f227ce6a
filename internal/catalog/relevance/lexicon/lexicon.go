// Package lexicon holds the keyword tables the relevance engine and
// the prefetcher run on. Everything here is plain data: deployments
// can ship a JSON override without touching engine code.
package lexicon

import (
	"encoding/json"
	"os"
)

// ProductType is one entry of the ordered detection table. The first
// type whose any keyword appears in the query wins, so platform
// entries must precede the generic gaming entry.
type ProductType struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
}

type Lexicon struct {
	// ProductTypes is scanned in order to classify the query.
	ProductTypes []ProductType `json:"product_types"`

	// Conflicts maps a detected type to name fragments that mark a
	// mutually exclusive product.
	Conflicts map[string][]string `json:"conflicts"`

	// ApplianceAccessories maps a query keyword to product name
	// fragments that mark an accessory rather than the appliance.
	ApplianceAccessories map[string][]string `json:"appliance_accessories"`

	// Irrelevant lists non-product listings dropped outright. Single
	// words match on word boundaries, phrases as substrings.
	Irrelevant []string `json:"irrelevant"`

	// SortDevices flips keyword search to best-selling sort so real
	// hardware outranks gift cards and accessories.
	SortDevices []string `json:"sort_devices"`

	// FilterDevices guards the accessory filter: only queries naming
	// one of these drop accessory products.
	FilterDevices []string `json:"filter_devices"`

	// Accessories marks accessory products. "case" is deliberately
	// absent, phone and watch bodies carry "Aluminum Case" in the name.
	Accessories []string `json:"accessories"`

	// Console hardware handling.
	ConsoleTypes      []string `json:"console_types"`
	GameTitleSuffixes []string `json:"game_title_suffixes"`
	GameTitlePrefixes []string `json:"game_title_prefixes"`
	GameTitleEndings  []string `json:"game_title_endings"`
	GameSearchTerms   []string `json:"game_search_terms"`

	// Colors recognized as spec terms alongside storage sizes.
	Colors []string `json:"colors"`

	// AccessoryIntent marks follow-up messages that ask what goes
	// with a product; consumed by the proactive prefetcher.
	AccessoryIntent []string `json:"accessory_intent"`
}

// LoadFile reads a JSON lexicon override.
func LoadFile(path string) (*Lexicon, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var l Lexicon
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, err
	}
	return &l, nil
}

// Default returns the built-in tables.
func Default() *Lexicon {
	return &Lexicon{
		ProductTypes: []ProductType{
			// Electronics
			{"iphone", []string{"iphone"}},
			{"ipad", []string{"ipad"}},
			{"macbook", []string{"macbook"}},
			{"imac", []string{"imac"}},
			{"mac mini", []string{"mac mini"}},
			{"mac pro", []string{"mac pro"}},
			{"mac studio", []string{"mac studio"}},
			{"airpods", []string{"airpods", "air pods"}},
			{"watch", []string{"watch", "apple watch"}},
			{"laptop", []string{"laptop", "notebook"}},
			{"phone", []string{"phone", "smartphone"}},
			{"tablet", []string{"tablet"}},
			{"headphones", []string{"headphones", "earbuds", "earphones"}},
			// "tv " keeps its trailing space so "tv" inside other words does not match
			{"tv", []string{"tv ", "television", "oled tv", "qled tv", "smart tv", "flat screen tv", "4k tv", "mini led tv"}},
			{"monitor", []string{"monitor", "computer monitor", "gaming monitor", "curved monitor"}},
			{"camera", []string{"camera", "digital camera", "dslr", "mirrorless", "point-and-shoot", "point and shoot"}},
			{"drone", []string{"drone", "quadcopter", "unmanned aerial"}},
			{"speaker", []string{"speaker", "bluetooth speaker", "portable speaker", "bookshelf speaker", "home theater speaker"}},
			{"soundbar", []string{"soundbar", "sound bar"}},
			{"printer", []string{"printer", "inkjet printer", "laser printer", "all-in-one printer"}},
			{"smartwatch", []string{"smartwatch", "smart watch", "apple watch", "galaxy watch", "garmin watch"}},
			// Console platforms must come before the generic gaming entry
			{"playstation", []string{"playstation 5", "playstation 4", "ps5", "ps4"}},
			{"xbox", []string{"xbox series x", "xbox series s", "xbox one x", "xbox one s", "xbox one", "xbox"}},
			{"nintendo_switch", []string{"nintendo switch 2", "nintendo switch oled", "nintendo switch lite", "nintendo switch"}},
			{"gaming", []string{"game console", "gaming console", "game controller"}},
			// Small appliances / home
			{"vacuum", []string{"vacuum", "vacuum cleaner", "robot vacuum", "canister vacuum", "stick vacuum", "cordless vacuum"}},
			{"air_purifier", []string{"air purifier", "air cleaner", "hepa purifier"}},
			{"air_conditioner", []string{"air conditioner", "window air conditioner", "portable air conditioner", "window ac", "portable ac", "mini split", "ac unit", "air conditioning unit"}},
			{"air_fryer", []string{"air fryer", "air fry", "airfryer"}},
			{"grill", []string{"grill", "bbq", "gas grill", "charcoal grill", "pellet grill", "kamado grill", "outdoor grill"}},
			// Major appliances
			{"refrigerator", []string{"refrigerator", "french door", "side-by-side", "bottom freezer", "top freezer", "counter-depth", "counter depth"}},
			{"fridge", []string{"refrigerator", "french door", "side-by-side"}},
			{"dishwasher", []string{"dishwasher"}},
			{"washer", []string{"washer", "washing machine", "front load", "top load", "front-load", "top-load"}},
			{"dryer", []string{"dryer", "clothes dryer", "gas dryer", "electric dryer"}},
			{"microwave", []string{"microwave", "over-the-range", "countertop microwave", "built-in microwave"}},
			{"range", []string{"range", "electric range", "gas range", "induction range", "freestanding range", "slide-in range"}},
			{"oven", []string{"oven", "wall oven", "double oven", "single oven"}},
			{"cooktop", []string{"cooktop", "induction cooktop", "gas cooktop", "electric cooktop"}},
			{"freezer", []string{"freezer", "chest freezer", "upright freezer"}},
		},
		Conflicts: map[string][]string{
			"iphone":     {"ipad", "ipod", "macbook", "imac", "mac mini", "mac pro", "apple watch"},
			"ipad":       {"iphone", "macbook", "imac", "mac mini", "mac pro"},
			"macbook":    {"iphone", "ipad", "imac", "mac mini", "mac pro", "mac studio"},
			"mac mini":   {"iphone", "ipad", "macbook", "imac", "mac pro", "mac studio", "laptop"},
			"imac":       {"iphone", "ipad", "macbook", "mac mini", "mac pro", "mac studio", "laptop"},
			"mac pro":    {"iphone", "ipad", "macbook", "mac mini", "imac", "mac studio", "laptop"},
			"mac studio": {"iphone", "ipad", "macbook", "mac mini", "imac", "mac pro", "laptop"},
			"laptop":     {"phone", "tablet", "watch"},
			"phone":      {"tablet", "laptop", "watch", "ipad"},
			"tablet":     {"phone", "laptop", "watch", "iphone"},
			"tv":         {"monitor", "projector", "computer display"},
			"monitor":    {"television", "projector"},
			"camera":     {"drone", "webcam", "security camera"},
			"drone":      {"security camera", "webcam"},
			"vacuum":     {"air purifier", "humidifier"},
			"playstation":     {"xbox", "nintendo switch"},
			"xbox":            {"playstation", "nintendo switch"},
			"nintendo_switch": {"playstation", "xbox"},
			"refrigerator": {"dishwasher", "washing machine", "washer", "dryer", "microwave", "range", "cooktop", "freezer"},
			"fridge":       {"dishwasher", "washing machine", "washer", "dryer", "microwave", "range", "cooktop"},
			"dishwasher":   {"refrigerator", "washing machine", "washer", "dryer", "microwave", "range"},
			"washer":       {"refrigerator", "dishwasher", "dryer", "microwave", "range", "cooktop"},
			"dryer":        {"refrigerator", "dishwasher", "washer", "microwave", "range", "cooktop"},
			"microwave":    {"refrigerator", "dishwasher", "washer", "dryer", "range", "cooktop"},
			"range":        {"refrigerator", "dishwasher", "washer", "dryer", "microwave"},
			"oven":         {"refrigerator", "dishwasher", "washer", "dryer", "microwave"},
			"cooktop":      {"refrigerator", "dishwasher", "washer", "dryer", "microwave"},
			"freezer":      {"dishwasher", "washer", "dryer", "microwave", "range", "cooktop"},
			// Not a cooling unit just because the name says "air"
			"air_conditioner": {"air fryer", "air fry", "air purifier", "dehumidifier", "humidifier", "space heater", "fan ", "tower fan", "ceiling fan", "box fan", "desk fan", "standing fan", "bladeless fan"},
		},
		ApplianceAccessories: map[string][]string{
			"refrigerator": {"water filter", "replacement filter", "filter for select", "door panel", "refrigerator panel", "crisper drawer", "ice bin", "drip tray", "shelf for", "rack for"},
			"fridge":       {"water filter", "replacement filter", "filter for select", "door panel", "refrigerator panel"},
			"dishwasher":   {"dishwasher rack", "dishwasher basket", "dishwasher cleaner", "dishwasher detergent"},
			"washer":       {"washer pedestal", "laundry bag", "drum cleaner", "laundry detergent"},
			"dryer":        {"dryer pedestal", "dryer sheet", "vent kit", "drum cleaner"},
			"microwave":    {"turntable plate", "microwave plate", "microwave filter", "grease filter"},
			"range":        {"drip pan", "range hood", "burner grate", "burner knob", "range knob"},
			"oven":         {"oven rack", "oven thermometer", "oven mitt", "broiler pan"},
			"cooktop":      {"cooktop cleaner", "induction cookware"},
			"freezer":      {"freezer basket", "freezer shelf"},
			"vacuum":       {"vacuum bag", "replacement filter for", "brush roll for", "dustbin for", "filter pack for", "vacuum belt"},
			"grill":        {"grill cover", "grill brush", "grill mat", "grill cleaner", "grill light", "drip tray for"},
		},
		Irrelevant: []string{
			"gift card", "giftcard", "e-gift", "egift", "gift cards",
			"warranty", "protection plan", "geek squad",
			"membership", "subscription",
			"installation service", "setup service", "tech support",
			"applecare", "apple care",
		},
		SortDevices: []string{
			"iphone", "ipad", "macbook", "laptop", "phone", "tablet", "watch", "airpods", "mac mini", "imac",
			"tv", "television", "monitor", "camera", "drone", "speaker", "soundbar", "sound bar",
			"printer", "smartwatch", "vacuum", "grill",
			"refrigerator", "fridge", "dishwasher", "washer", "dryer", "microwave",
			"range", "oven", "cooktop", "freezer", "ice maker",
			"air conditioner", "air conditioning", "window ac", "portable ac",
			"window air conditioner", "portable air conditioner", "mini split",
			"air fryer", "air fry",
			"playstation", "ps5", "ps4", "xbox", "nintendo switch",
		},
		FilterDevices: []string{
			"iphone", "ipad", "macbook", "laptop", "phone", "tablet", "watch", "airpods",
			"tv", "television", "monitor", "camera", "drone", "speaker", "soundbar", "sound bar",
			"printer", "smartwatch", "vacuum", "grill",
			"refrigerator", "fridge", "dishwasher", "washer", "dryer", "microwave", "range", "oven", "cooktop", "freezer",
			"playstation", "ps5", "ps4", "xbox", "nintendo switch",
		},
		Accessories: []string{"charger", "cable", "adapter", "stand", "mount", "screen protector"},
		ConsoleTypes: []string{"playstation", "xbox", "nintendo_switch"},
		GameTitleSuffixes: []string{
			`[,\-]\s*playstation [45]\s*$`,
			`[,\-]\s*ps5\s*$`,
			`[,\-]\s*ps4\s*$`,
			`[,\-]\s*xbox series [xs]\s*$`,
			`[,\-]\s*xbox one\s*$`,
			`[,\-]\s*nintendo switch 2\s*$`,
			`[,\-]\s*nintendo switch\s*$`,
			`[,\-]\s*switch 2?\s*$`,
			`- windows(?:\s+\[digital\])?\s*$`,
		},
		GameTitlePrefixes: []string{"playstation pc "},
		GameTitleEndings:  []string{"[digital]"},
		GameSearchTerms:   []string{"game", "games", "dlc", "expansion", "edition of"},
		Colors: []string{"black", "white", "silver", "gold", "blue", "red", "green", "purple", "pink", "yellow"},
		AccessoryIntent: []string{
			"accessories", "accessory", "what else", "what should i get", "goes with", "go with",
			"pair with", "pairs with", "complement", "complete my setup", "complete the setup",
			"what accessories", "for it", "for this", "for that", "what other", "anything else",
			"also need", "also want", "soundbar", "mount", "cable", "case", "bag", "stand",
			"enhance", "upgrade", "add to", "bundle",
		},
	}
}
