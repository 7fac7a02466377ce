package cel

// SelectorExamples are served next to the lot listing so clients can see
// what a selector looks like.
var SelectorExamples = map[string]string{
	"by_origin":       `origin == "Shizuoka"`,
	"wet_lots":        `moisture > 9.0`,
	"pesticide_range": `pesticide_level >= 0.1 && pesticide_level <= 0.2`,
	"low_aroma":       `aroma_score < 70`,
	"variety_in_list": `variety in ["Yabukita", "Samidori"]`,
	"lot_code_prefix": `lot_code.startsWith("LOT-2026-")`,
	"combined":        `origin == "Shizuoka" && (moisture > 9.0 || aroma_score < 70)`,
	"regex_lot_code":  `lot_code.matches("^LOT-[0-9]{4}-00[1-3]$")`,
}
