package legacy

import (
	"sort"
	"strconv"
)

// TravelCategory is the shelf category whose books are further placed by region.
const TravelCategory = "Område/Guide/Ekspedition"

// CategoryTable maps a Beskrivelse value to its shelf number.
var CategoryTable = map[string]int{
	"Biografi/Erindringer/Historie": 5,
	"Blandet indhold":               6,
	"Fiktion":                       3,
	"Håndbog/Medicin/Sikkerhed":     4,
	"Lærebog/Instruktion":           1,
	TravelCategory:                  2,
}

// RegionTable maps a Land value to the region sub-placement of travel books.
// An empty Land means the book has no recorded region.
var RegionTable = map[string]int{
	"Hele verden":                      0,
	"Europa":                           1,
	"Frankrig":                         2,
	"Schweiz":                          3,
	"Tyskland":                         4,
	"Østrig":                           5,
	"Italien":                          6,
	"Grønland/Island/Arktis":           7,
	"Norge":                            8,
	"Sverige":                          9,
	"Storbritanien":                    10,
	"Spanien/Portugal":                 11,
	"Asien":                            12,
	"Australien/New Zealand/Antarktis": 13,
	"Sydamerika":                       14,
	"Nordamerika":                      15,
	"Afrika":                           16,
	"Tatra":                            17,
	"Balkan":                           18,
	"Andre":                            19,
	"Everest":                          20,
	"":                                 21,
}

// LanguageTable translates Sprog values to English.
var LanguageTable = map[string]string{
	"Fransk":          "French",
	"Dansk":           "Danish",
	"Engelsk":         "English",
	"Tysk":            "German",
	"Norsk":           "Norwegian",
	"Svensk":          "Swedish",
	"Spansk":          "Spanish",
	"Tjekkisk":        "Czech",
	"Slovensk":        "Slovenian",
	"Italiensk":       "Italian",
	"Engelsk++":       "English",
	"Tysk/Fransk":     "German/French",
	"Polsk":           "Polish",
	"Portugisisk":     "Portuguese",
	"Engelsk/japansk": "English/Japanese",
	"Islandsk":        "Icelandic",
	"":                "",
}

// Location is one row of the shelf location table.
type Location struct {
	Label    string
	FullName string
}

// Locations returns every shelf label: one per category and one "2.<region>"
// per region. The order is stable so the table gets the same ids every time.
func Locations() []Location {
	locs := make([]Location, 0, len(CategoryTable)+len(RegionTable))

	cats := make([]string, 0, len(CategoryTable))
	for name := range CategoryTable {
		cats = append(cats, name)
	}
	sort.Slice(cats, func(i, j int) bool { return CategoryTable[cats[i]] < CategoryTable[cats[j]] })
	for _, name := range cats {
		locs = append(locs, Location{Label: strconv.Itoa(CategoryTable[name]), FullName: name})
	}

	regions := make([]string, 0, len(RegionTable))
	for name := range RegionTable {
		regions = append(regions, name)
	}
	sort.Slice(regions, func(i, j int) bool { return RegionTable[regions[i]] < RegionTable[regions[j]] })
	for _, name := range regions {
		locs = append(locs, Location{Label: regionLabel(RegionTable[name]), FullName: name})
	}

	return locs
}

func regionLabel(region int) string {
	return strconv.Itoa(CategoryTable[TravelCategory]) + "." + strconv.Itoa(region)
}
