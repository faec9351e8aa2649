package corpus

import "strings"

// abbreviations maps lowercased canonical book names to their 3-letter
// abbreviations. Names absent from the table fall back to the first three
// characters of the name, capitalized.
var abbreviations = map[string]string{
	"genesis":                          "Gen",
	"exodus":                           "Exo",
	"leviticus":                        "Lev",
	"numbers":                          "Num",
	"deuteronomy":                      "Deu",
	"joshua":                           "Jos",
	"judges":                           "Jud",
	"ruth":                             "Rut",
	"1 samuel":                         "1Sa",
	"2 samuel":                         "2Sa",
	"1 kings":                          "1Ki",
	"2 kings":                          "2Ki",
	"1 chronicles":                     "1Ch",
	"2 chronicles":                     "2Ch",
	"ezra":                             "Ezr",
	"nehemiah":                         "Neh",
	"esther":                           "Est",
	"job":                              "Job",
	"psalms":                           "Psa",
	"proverbs":                         "Pro",
	"ecclesiastes":                     "Ecc",
	"the song of solomon":              "Son",
	"song of solomon":                  "Son",
	"isaiah":                           "Isa",
	"jeremiah":                         "Jer",
	"lamentations":                     "Lam",
	"ezekiel":                          "Eze",
	"daniel":                           "Dan",
	"hosea":                            "Hos",
	"joel":                             "Joe",
	"amos":                             "Amo",
	"obadiah":                          "Oba",
	"jonah":                            "Jon",
	"micah":                            "Mic",
	"nahum":                            "Nah",
	"habakkuk":                         "Hab",
	"zephaniah":                        "Zep",
	"haggai":                           "Hag",
	"zechariah":                        "Zec",
	"malachi":                          "Mal",
	"matthew":                          "Mat",
	"the gospel according to matthew":  "Mat",
	"mark":                             "Mar",
	"luke":                             "Luk",
	"john":                             "Joh",
	"the gospel according to john":     "Joh",
	"acts":                             "Act",
	"romans":                           "Rom",
	"1 corinthians":                    "1Co",
	"2 corinthians":                    "2Co",
	"galatians":                        "Gal",
	"ephesians":                        "Eph",
	"philippians":                      "Phi",
	"colossians":                       "Col",
	"1 thessalonians":                  "1Th",
	"2 thessalonians":                  "2Th",
	"1 timothy":                        "1Ti",
	"2 timothy":                        "2Ti",
	"titus":                            "Tit",
	"philemon":                         "Phm",
	"hebrews":                          "Heb",
	"james":                            "Jam",
	"1 peter":                          "1Pe",
	"2 peter":                          "2Pe",
	"1 john":                           "1Jo",
	"2 john":                           "2Jo",
	"3 john":                           "3Jo",
	"jude":                             "Jud",
	"revelation":                       "Rev",
}

// Abbreviation resolves the 3-letter abbreviation for a book name.
func Abbreviation(bookName string) string {
	if abbr, ok := abbreviations[strings.ToLower(bookName)]; ok {
		return abbr
	}
	prefix := bookName
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	if prefix == "" {
		return prefix
	}
	return strings.ToUpper(prefix[:1]) + prefix[1:]
}
