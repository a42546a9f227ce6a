// Package taxonomy holds the category knowledge the gateway consults:
// well-known category IDs and complementary-query derivation. All of it
// is plain data so deployments can swap the tables without a rebuild.
package taxonomy

import (
	"encoding/json"
	"os"
	"strings"
)

// GameConsolesCategoryID gets a price-descending default sort so current
// generation hardware surfaces before legacy bundles.
const GameConsolesCategoryID = "abcat0700000"

type KeywordQuery struct {
	Keyword string `json:"keyword"`
	Query   string `json:"query"`
}

// Tables bundles the category lookups. Zero value is unusable; start
// from Default or LoadFile.
type Tables struct {
	// CommonCategories maps a normalized shopper phrase to the catalog
	// category ID, letting frequent lookups skip the search endpoint.
	CommonCategories map[string]string `json:"common_categories"`

	// ComplementQueries maps a lowercase category name to the search
	// query used when a product has no also-bought data.
	ComplementQueries map[string]string `json:"complement_queries"`

	// KeywordFallback is scanned in order when no category name
	// matches exactly. Order matters: specific appliance terms come
	// before broad ones like "smart" or "ev".
	KeywordFallback []KeywordQuery `json:"keyword_fallback"`
}

// CommonCategoryID resolves a shopper phrase to a category ID.
func (t *Tables) CommonCategoryID(name string) (string, bool) {
	id, ok := t.CommonCategories[normalize(name)]
	return id, ok
}

// ComplementQuery derives a single complementary search query from
// category hints. The first hint with an exact table entry wins; failing
// that, the joined hints are scanned for known keywords. Manufacturer
// hints are deliberately not appended, brand terms pull unrelated
// products into the results.
func (t *Tables) ComplementQuery(categoryHints []string) string {
	for _, hint := range categoryHints {
		if q, ok := t.ComplementQueries[normalize(hint)]; ok {
			return q
		}
	}
	joined := strings.ToLower(strings.Join(categoryHints, " "))
	for _, kq := range t.KeywordFallback {
		if strings.Contains(joined, kq.Keyword) {
			return kq.Query
		}
	}
	return ""
}

func normalize(name string) string {
	return strings.TrimSpace(strings.ToLower(name))
}

// LoadFile reads a JSON override of the full table set.
func LoadFile(path string) (*Tables, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var t Tables
	if err := json.Unmarshal(raw, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Default returns the built-in tables.
func Default() *Tables {
	return &Tables{
		CommonCategories:  commonCategories(),
		ComplementQueries: complementQueries(),
		KeywordFallback:   keywordFallback(),
	}
}

func commonCategories() map[string]string {
	return map[string]string{
		// Computers
		"laptops":              "abcat0502000",
		"laptop":               "abcat0502000",
		"all_laptops":          "pcmcat138500050001",
		"notebooks":            "abcat0502000",
		"desktops":             "abcat0501000",
		"desktop":              "abcat0501000",
		"all_desktops":         "pcmcat143400050013",
		"gaming_desktops":      "abcat0501002",
		"gaming desktop":       "abcat0501002",
		"macbooks":             "abcat0502000",
		"mac_mini":             "abcat0501000",
		"imac":                 "abcat0501000",
		"mac_pro":              "abcat0501000",
		"mac_studio":           "abcat0501000",
		"monitors":             "abcat0513000",
		"monitor":              "abcat0513000",
		"tablets":              "abcat0503000",
		"tablet":               "abcat0503000",
		"ipads":                "abcat0503000",
		"ipad":                 "abcat0503000",
		"computer_accessories": "pcmcat209000050006",
		// Mobile
		"cell_phones":         "abcat0800000",
		"phones":              "abcat0800000",
		"phone":               "abcat0800000",
		"smartphones":         "abcat0800000",
		"unlocked_phones":     "abcat0800000",
		"iphones":             "abcat0800000",
		"samsung_phones":      "abcat0800000",
		"cell_phone_cases":    "pcmcat312100050015",
		"cell_phone_chargers": "pcmcat209000050006",
		// TVs / Audio / Video
		"tvs":             "abcat0101000",
		"tv":              "abcat0101000",
		"televisions":     "abcat0101000",
		"flat_screen_tvs": "abcat0101000",
		"projectors":      "abcat0102000",
		"streaming_media": "pcmcat241600050001",
		"streaming":       "pcmcat241600050001",
		"tv_accessories":  "abcat0107000",
		"sound_bars":      "abcat0204013",
		"soundbar":        "abcat0204013",
		"soundbars":       "abcat0204013",
		"receivers":       "abcat0204001",
		"amplifiers":      "abcat0204001",
		"speakers":        "abcat0204009",
		"speaker":         "abcat0204009",
		"headphones":      "abcat0204000",
		"headphone":       "abcat0204000",
		"earbuds":         "abcat0204000",
		// Cameras / Imaging
		"cameras":             "abcat0400000",
		"camera":              "abcat0400000",
		"digital_cameras":     "abcat0400000",
		"dslr":                "abcat0401000",
		"dslr_cameras":        "abcat0401000",
		"mirrorless":          "abcat0401001",
		"mirrorless_cameras":  "abcat0401001",
		"point_shoot":         "abcat0401002",
		"point_and_shoot":     "abcat0401002",
		"camera_accessories":  "pcmcat232400050000",
		"drones":              "pcmcat331600050018",
		"drone":               "pcmcat331600050018",
		"security_cameras":    "pcmcat190100050002",
		"security_camera":     "pcmcat190100050002",
		// Major appliances
		"refrigerator":        "abcat0912000",
		"refrigerators":       "abcat0912000",
		"fridge":              "abcat0912000",
		"french_door_fridge":  "abcat0912000",
		"side_by_side_fridge": "abcat0912000",
		"dishwasher":          "abcat0902000",
		"dishwashers":         "abcat0902000",
		"range":               "abcat0906000",
		"ranges":              "abcat0906000",
		"oven":                "abcat0906000",
		"ovens":               "abcat0906000",
		"cooktop":             "abcat0909000",
		"cooktops":            "abcat0909000",
		"microwave":           "abcat0905000",
		"microwaves":          "abcat0905000",
		"washer":              "abcat0901000",
		"washers":             "abcat0901000",
		"dryer":               "abcat0901000",
		"dryers":              "abcat0901000",
		"washers_dryers":      "abcat0901000",
		"freezer":             "abcat0910000",
		"freezers":            "abcat0910000",
		"ice_maker":           "abcat0910000",
		// Small appliances / home
		"small_kitchen":            "abcat0913000",
		"small_kitchen_appliances": "abcat0913000",
		"vacuum":                   "abcat0920000",
		"vacuums":                  "abcat0920000",
		"floor_care":               "abcat0920000",
		"air_purifier":             "abcat0917000",
		"air_purifiers":            "abcat0917000",
		"space_heater":             "abcat0914000",
		"space_heaters":            "abcat0914000",
		"humidifier":               "abcat0919000",
		"humidifiers":              "abcat0919000",
		"air_conditioner":          "abcat0907004",
		"air_conditioners":         "abcat0907004",
		"window_ac":                "abcat0907004",
		"portable_ac":              "abcat0907004",
		"portable_air_conditioner": "abcat0907004",
		"air_fryer":                "abcat0912013",
		"air_fryers":               "abcat0912013",
		"grills":                   "pcmcat196100050008",
		"grill":                    "pcmcat196100050008",
		// Gaming
		"gaming":           GameConsolesCategoryID,
		"game_consoles":    GameConsolesCategoryID,
		"video_games":      "abcat0702000",
		"game_controllers": "abcat0707000",
		"pc_gaming":        "pcmcat324700050000",
		"virtual_reality":  "pcmcat352800050000",
		"vr":               "pcmcat352800050000",
		// Smart home / networking
		"smart_home":        "pcmcat248700050021",
		"networking":        "pcmcat143400050012",
		"wifi":              "pcmcat143400050012",
		"router":            "pcmcat143400050012",
		"smart_speakers":    "pcmcat732900050000",
		"smart_speaker":     "pcmcat732900050000",
		"smart_thermostat":  "pcmcat302600050001",
		"smart_thermostats": "pcmcat302600050001",
		"smart_lighting":    "pcmcat248700050015",
		// Printers / storage
		"printers": "abcat0301000",
		"printer":  "abcat0301000",
		"storage":  "abcat0504000",
		// Wearables
		"smartwatch":       "abcat0812010",
		"smartwatches":     "abcat0812010",
		"fitness_tracker":  "pcmcat332900050009",
		"fitness_trackers": "pcmcat332900050009",
		// Automotive / EV
		"car_electronics":   "abcat0600000",
		"car_safety":        "abcat0600000",
		"ev_charging":       "pcmcat382300050000",
		"electric_scooter":  "pcmcat317600050000",
		"electric_scooters": "pcmcat317600050000",
		// Health and personal care
		"hair_care": "pcmcat209100050001",
		"shaving":   "pcmcat209100050002",
		"oral_care": "pcmcat209100050003",
		// Other
		"toys":              "pcmcat328600050000",
		"fitness_equipment": "pcmcat309700050018",
		"office_furniture":  "pcmcat204400050019",
		"patio":             "pcmcat217700050006",
		"tv_stands":         "pcmcat152300050004",
		"tablet_accessories": "pcmcat312100050015",
	}
}

func complementQueries() map[string]string {
	return map[string]string{
		// TVs / displays
		"televisions":                    "soundbar streaming device",
		"tv":                             "soundbar streaming device",
		"television":                     "soundbar streaming device",
		"flat-screen tvs":                "soundbar streaming device",
		"flat screen tvs":                "soundbar streaming device",
		"oled":                           "soundbar HDMI cable",
		"qled":                           "soundbar HDMI cable",
		"4k tv":                          "soundbar streaming device",
		"monitors":                       "monitor stand monitor arm webcam",
		"monitor":                        "monitor stand webcam",
		"projectors":                     "soundbar projector screen",
		"streaming media players":        "HDMI cable remote streaming",
		"streaming media player":         "HDMI cable remote streaming",
		"tv & home theater accessories":  "HDMI cable TV mount surge protector",
		// Audio
		"sound bars":              "receiver HDMI cable TV wall mount",
		"sound bar":               "receiver HDMI cable TV wall mount",
		"soundbar":                "receiver HDMI cable TV wall mount",
		"receivers & amplifiers":  "speaker wire speaker surround sound",
		"speakers":                "speaker stand audio cable",
		"speaker":                 "speaker stand audio cable",
		"headphones":              "headphone stand audio cable",
		"headphone":               "headphone stand audio cable",
		"earbuds":                 "earbuds case wireless charger",
		// Computers
		"laptops":                             "laptop bag USB hub",
		"laptop":                              "laptop bag USB hub",
		"notebooks":                           "laptop bag external monitor",
		"macbooks":                            "laptop bag USB hub",
		"desktops":                            "monitor keyboard mouse",
		"desktop":                             "monitor keyboard mouse",
		"gaming desktops":                     "gaming monitor gaming keyboard gaming headset",
		"tablets":                             "tablet case keyboard",
		"tablet":                              "tablet case keyboard",
		"ipads":                               "iPad case keyboard Apple Pencil",
		"computer accessories & peripherals":  "USB hub keyboard mouse monitor",
		"pc gaming":                           "gaming headset gaming mouse gaming keyboard",
		"virtual reality":                     "VR controller VR head strap battery",
		// Mobile
		"cell phones":                  "phone case wireless earbuds wireless charger",
		"cell phone":                   "phone case wireless earbuds wireless charger",
		"smartphones":                  "phone case wireless earbuds wireless charger",
		"unlocked cell phones":         "phone case screen protector wireless charger",
		"iphones":                      "iPhone case AirPods wireless charger",
		"samsung galaxy phones":        "Samsung case Galaxy Buds wireless charger",
		"cell phone cases":             "screen protector wireless charger cable",
		"cell phone chargers & cables": "wireless charger USB hub power bank",
		"tablet accessories":           "tablet case stylus keyboard",
		// Cameras / imaging
		"cameras":                         "camera memory card camera bag",
		"camera":                          "camera memory card camera bag",
		"digital cameras":                 "camera memory card camera bag",
		"mirrorless cameras":              "camera lens memory card camera bag",
		"dslr":                            "camera lens memory card flash",
		"dslr cameras":                    "camera lens memory card flash",
		"point & shoot cameras":           "memory card camera case",
		"digital camera accessories":      "memory card camera bag tripod",
		"drones & drone accessories":      "drone battery propeller drone bag",
		"security cameras & surveillance": "security camera mount NVR Ethernet cable",
		// Gaming
		"video games":   "gaming headset game controller charging dock",
		"gaming":        "gaming headset game controller charging dock",
		"game consoles": "gaming headset controller charging dock",
		"playstation":   "PlayStation controller gaming headset",
		"xbox":          "Xbox controller gaming headset",
		"nintendo":      "Nintendo Switch case controller",
		// Major appliances
		"refrigerators":         "water filter ice maker refrigerator organizer",
		"refrigerator":          "water filter ice maker refrigerator organizer",
		"fridge":                "water filter ice maker refrigerator organizer",
		"dishwashers":           "dishwasher cleaner dishwasher rack",
		"dishwasher":            "dishwasher cleaner dishwasher rack",
		"ranges":                "range hood cookware baking sheet",
		"range":                 "range hood cookware baking sheet",
		"cooktops":              "range hood cookware induction pan",
		"microwaves":            "microwave tray microwave cleaner plate",
		"microwave":             "microwave tray microwave cleaner plate",
		"washers & dryers":      "laundry detergent dryer sheet pedestal",
		"washer":                "laundry detergent dryer sheet",
		"dryer":                 "dryer sheet laundry detergent dryer vent",
		"freezers & ice makers": "freezer basket ice maker water filter",
		"freezer":               "freezer basket ice maker water filter",
		// Small appliances / home
		"small kitchen appliances":   "coffee maker air fryer blender toaster",
		"vacuums & floor care":       "vacuum filter vacuum bag mop pad",
		"vacuum":                     "vacuum filter vacuum bag mop pad",
		"air purifiers":              "air purifier filter humidifier",
		"air purifier":               "air purifier filter",
		"space heaters":              "space heater thermostat humidifier",
		"humidifiers":                "humidifier filter air purifier",
		"air conditioners":           "window kit remote control cover",
		"air conditioner":            "window kit remote control cover",
		"window air conditioner":     "window kit remote control cover",
		"portable air conditioner":   "window kit exhaust hose",
		"grills & outdoor kitchens":  "grill cover grill brush outdoor thermometer",
		// Smart home / networking
		"smart home":               "smart plug smart bulb smart hub",
		"smart speakers & displays": "smart home hub smart bulb smart plug",
		"smart thermostats":        "smart thermostat sensor smart home hub",
		"smart lighting":           "smart bulb smart switch smart home hub",
		"wi-fi & networking":       "WiFi extender Ethernet switch access point",
		"networking":               "WiFi extender Ethernet switch access point",
		// Printers
		"printers": "printer ink cartridge paper",
		"printer":  "printer ink cartridge paper",
		// Wearables
		"smartwatches":                    "smartwatch band wireless charger",
		"smartwatch":                      "smartwatch band wireless charger",
		"fitness trackers & accessories":  "fitness band heart rate monitor sports earbuds",
		"fitness tracker":                 "fitness band heart rate monitor",
		// Automotive / EV
		"car safety & security": "dash cam backup camera radar detector",
		"ev charging":           "EV charger charging cable adapter",
		"electric scooters":     "scooter lock helmet scooter bag",
		// Health and personal care
		"hair care":              "hair dryer hair straightener brush",
		"shaving & hair removal": "razor blade shaving cream trimmer",
		"oral care":              "electric toothbrush replacement head floss",
		// Other
		"toys, games & collectibles":   "board game LEGO trading card",
		"exercise & fitness equipment": "resistance band yoga mat dumbbells",
		"workout recovery":             "foam roller massage gun heating pad",
		"patio furniture & decor":      "patio cover outdoor cushion string light",
		"office furniture":             "monitor arm desk organizer ergonomic chair",
		"baby care":                    "baby monitor baby cam white noise machine",
		"tv stands":                    "TV mount HDMI cable cable management",
	}
}

func keywordFallback() []KeywordQuery {
	return []KeywordQuery{
		{"refrigerator", "water filter ice maker refrigerator organizer"},
		{"fridge", "water filter ice maker refrigerator organizer"},
		{"washer", "laundry detergent dryer sheet"},
		{"dryer", "dryer sheet laundry detergent"},
		{"dishwasher", "dishwasher cleaner dishwasher rack"},
		{"microwave", "microwave tray plate cleaner"},
		{"range", "range hood cookware"},
		{"freezer", "freezer basket ice maker"},
		{"vacuum", "vacuum filter vacuum bag"},
		{"appliance", "kitchen appliance organizer"},
		{"tv", "soundbar streaming device"},
		{"television", "soundbar streaming device"},
		{"laptop", "laptop bag USB hub"},
		{"phone", "phone case wireless earbuds"},
		{"camera", "camera memory card camera bag"},
		{"game", "gaming headset controller"},
		{"tablet", "tablet case keyboard"},
		{"smartwatch", "smartwatch band charger"},
		{"speaker", "speaker stand audio cable"},
		{"printer", "printer ink cartridge"},
		{"drone", "drone battery propeller"},
		{"smart", "smart home hub smart plug"},
		{"grill", "grill cover grill brush"},
		{"fitness", "resistance band yoga mat"},
		{"scooter", "scooter lock helmet"},
		{"ev", "EV charger charging cable"},
	}
}
