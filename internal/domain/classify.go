package domain

import (
	"regexp"
	"strings"
)

// Classification is the keyword classifier's verdict on a piece of text.
type Classification struct {
	Category    string
	Subcategory string
	Location    string
	Impact      string
	Severity    string
	Confidence  float64
}

// categoryKeywords score a text toward each vocabulary category.
var categoryKeywords = map[string][]string{
	"traffic":     {"accident", "traffic", "road", "highway", "bus", "train", "delay", "collision", "jam"},
	"weather":     {"rain", "flood", "cyclone", "landslide", "weather", "storm", "temperature", "hot"},
	"safety":      {"fire", "emergency", "rescue", "missing", "explosion", "collapse"},
	"crime":       {"arrest", "robbery", "theft", "drugs", "police", "court", "murder"},
	"government":  {"government", "policy", "tax", "minister", "president", "official"},
	"economy":     {"economy", "market", "price", "currency", "business", "inflation"},
	"health":      {"health", "hospital", "dengue", "covid", "disease", "medical"},
	"environment": {"environment", "wildlife", "pollution", "forest", "river", "animal"},
	"social":      {"protest", "strike", "political", "demonstration", "rally"},
	"community":   {"concert", "festival", "event", "sports", "celebration", "match"},
}

// subcategoryKeywords refine the top category. Categories without a table
// fall back to "<category>_general".
var subcategoryKeywords = map[string]map[string][]string{
	"traffic": {
		"road_accident":   {"accident", "crash", "collision", "fatal", "vehicle", "car"},
		"road_closures":   {"closure", "closed", "blocked", "diversion", "blockade"},
		"traffic_jams":    {"jam", "congestion", "heavy traffic", "gridlock", "bottleneck"},
		"train_delays":    {"train", "railway", "derailment", "rail", "locomotive"},
		"bus_issues":      {"bus", "breakdown", "bus service", "public transport"},
		"highway_updates": {"highway", "expressway", "road work", "construction", "flyover"},
	},
	"weather": {
		"rainfall_alerts": {"rain", "rainfall", "shower", "precipitation", "drizzle"},
		"floods":          {"flood", "flooding", "inundated", "waterlogged", "submerged"},
		"landslides":      {"landslide", "mudslide", "earth slip", "rock fall", "debris"},
		"cyclones":        {"cyclone", "storm", "hurricane", "depression", "typhoon"},
		"earthquakes":     {"earthquake", "tremor", "seismic", "quake", "epicenter"},
		"droughts":        {"drought", "water shortage", "scarcity", "arid"},
		"heatwaves":       {"heat", "heatwave", "scorching"},
	},
	"safety": {
		"fires":                   {"fire", "blaze", "inferno", "flames"},
		"gas_leaks":               {"gas", "leak", "explosion", "cylinder", "lpg"},
		"building_collapses":      {"building", "collapse", "structure", "demolition"},
		"missing_persons":         {"missing", "lost", "disappeared", "search"},
		"rescue_operations":       {"rescue", "evacuation", "save"},
		"emergency_health_alerts": {"outbreak", "epidemic"},
	},
	"crime": {
		"arrests":             {"arrest", "arrested", "detained", "custody", "captured"},
		"theft_robbery":       {"theft", "robbery", "stolen", "burglary", "loot"},
		"drugs":               {"drug", "narcotic", "cocaine", "heroin"},
		"police_operations":   {"raid", "crackdown", "investigation"},
		"court_legal_updates": {"court", "legal", "trial", "verdict", "judge"},
	},
}

// subcategoryOrder fixes evaluation order so classification is
// deterministic (map iteration is not).
var subcategoryOrder = map[string][]string{
	"traffic": {"road_accident", "road_closures", "traffic_jams", "train_delays", "bus_issues", "highway_updates"},
	"weather": {"rainfall_alerts", "floods", "landslides", "cyclones", "earthquakes", "droughts", "heatwaves"},
	"safety":  {"fires", "gas_leaks", "building_collapses", "missing_persons", "rescue_operations", "emergency_health_alerts"},
	"crime":   {"arrests", "theft_robbery", "drugs", "police_operations", "court_legal_updates"},
}

var (
	severityHighKeywords = []string{
		"emergency", "fatal", "dead", "killed", "disaster", "death",
		"warning", "danger", "major", "severe", "catastrophic",
		"evacuate", "urgent", "critical", "massive", "destroyed",
		"tragic", "horrific", "multiple deaths", "many injured",
	}
	severityMediumKeywords = []string{
		"injured", "damage", "delay", "disruption", "alert",
		"moderate", "significant", "affected", "closure",
		"protest", "strike", "arrest", "investigation", "incident",
		"accident", "collision", "fire", "flood", "landslide",
	}
	severityLowKeywords = []string{
		"update", "announcement", "meeting", "planned",
		"information", "minor", "small", "notice", "schedule",
		"advisory", "reminder", "maintenance", "upcoming",
		"expected", "routine", "normal",
	}
)

// knownLocations are matched verbatim (case-insensitive) before falling
// back to preposition patterns.
var knownLocations = []string{
	"Western Province", "Central Province", "Southern Province",
	"Northern Province", "Eastern Province", "North Western Province",
	"North Central Province", "Uva Province", "Sabaragamuwa Province",

	"Colombo", "Kandy", "Galle", "Jaffna", "Negombo", "Kurunegala",
	"Anuradhapura", "Polonnaruwa", "Trincomalee", "Batticaloa",
	"Matara", "Ratnapura", "Badulla", "Hambantota", "Kalutara",
	"Mannar", "Vavuniya", "Kilinochchi", "Mullaitivu", "Ampara",
	"Puttalam", "Nuwara Eliya", "Kegalle", "Moneragala",
}

// locationPatterns catch "in Colombo", "near Galle", "Kandy District".
var locationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:in|at|near)\s+([A-Z][a-z]+(?:\s+[A-Z][a-z]+)*)`),
	regexp.MustCompile(`(\w+)\s+District`),
	regexp.MustCompile(`(\w+)\s+Province`),
}

// Classify scores text against the category keyword tables and derives
// subcategory, location, severity, and an impact description. It never
// fails: text matching nothing classifies as general/info with zero
// confidence.
func Classify(text string) Classification {
	lower := strings.ToLower(text)

	topCategory, topScore := "", 0
	for _, cat := range Categories {
		score := 0
		for _, kw := range categoryKeywords[cat] {
			if strings.Contains(lower, kw) {
				score++
			}
		}
		if score > topScore {
			topCategory, topScore = cat, score
		}
	}

	if topScore == 0 {
		return Classification{
			Category:    "general",
			Subcategory: "general_news",
			Location:    "Sri Lanka",
			Impact:      "General news update for public information",
			Severity:    "info",
			Confidence:  0,
		}
	}

	severity := deriveSeverity(lower)
	confidence := float64(topScore) / 5
	if confidence > 1 {
		confidence = 1
	}

	return Classification{
		Category:    topCategory,
		Subcategory: deriveSubcategory(lower, topCategory),
		Location:    ExtractLocation(text),
		Impact:      impactDescription(topCategory, severity),
		Severity:    severity,
		Confidence:  confidence,
	}
}

func deriveSubcategory(lower, category string) string {
	for _, subcat := range subcategoryOrder[category] {
		for _, kw := range subcategoryKeywords[category][subcat] {
			if strings.Contains(lower, kw) {
				return subcat
			}
		}
	}
	return category + "_general"
}

// deriveSeverity weighs keyword hits into high/medium/low/info. Two high
// hits (or one high plus two medium) escalate to high; single hits step
// down the ladder.
func deriveSeverity(lower string) string {
	count := func(keywords []string) int {
		n := 0
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				n++
			}
		}
		return n
	}

	high := count(severityHighKeywords)
	medium := count(severityMediumKeywords)
	low := count(severityLowKeywords)

	switch {
	case high >= 2 || (high == 1 && medium >= 2):
		return "high"
	case high == 1 || medium >= 2:
		return "medium"
	case medium == 1 || low >= 2:
		return "low"
	default:
		return "info"
	}
}

// ExtractLocation finds the first known place name in the text, trying
// verbatim matches before preposition patterns. Defaults to "Sri Lanka".
func ExtractLocation(text string) string {
	lower := strings.ToLower(text)
	for _, loc := range knownLocations {
		if strings.Contains(lower, strings.ToLower(loc)) {
			return loc
		}
	}

	for _, pat := range locationPatterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			candidate := strings.TrimSpace(m[1])
			if candidate == "" {
				continue
			}
			for _, loc := range knownLocations {
				if strings.EqualFold(candidate, loc) || strings.Contains(strings.ToLower(loc), strings.ToLower(candidate)) {
					return loc
				}
			}
		}
	}
	return "Sri Lanka"
}

// impactTemplates hold the user-facing impact line per category and
// severity tier.
var impactTemplates = map[string]map[string]string{
	"traffic": {
		"high":   "Major traffic disruption with significant delays expected. Alternative routes recommended.",
		"medium": "Traffic congestion affecting travel times in the area.",
		"low":    "Minor traffic updates. Motorists advised to exercise caution.",
		"info":   "Traffic information update for public awareness.",
	},
	"weather": {
		"high":   "Severe weather conditions posing risks to public safety. Follow official warnings.",
		"medium": "Weather-related disruptions expected. Stay informed about updates.",
		"low":    "Weather advisory in effect. Minor inconveniences possible.",
		"info":   "Weather information update for planning purposes.",
	},
	"safety": {
		"high":   "Emergency safety situation requiring immediate attention and precautions.",
		"medium": "Safety concerns reported in the area. Exercise caution.",
		"low":    "Safety advisory issued. Public advised to remain vigilant.",
		"info":   "Safety information update for community awareness.",
	},
	"crime": {
		"high":   "Serious criminal activity reported. Public advised to avoid area.",
		"medium": "Police operations ongoing. Exercise caution in the vicinity.",
		"low":    "Minor criminal incident reported. Increased police presence.",
		"info":   "Law enforcement update for public information.",
	},
	"government": {
		"high":   "Major government announcement affecting public services.",
		"medium": "Policy changes announced. Impact on services expected.",
		"low":    "Government service update for public information.",
		"info":   "Public administration update.",
	},
}

var genericImpacts = map[string]string{
	"high":   "Serious situation requiring attention. Follow official instructions.",
	"medium": "Moderate impact expected. Stay informed about developments.",
	"low":    "Minor impact with limited effect on daily activities.",
	"info":   "General information update for public awareness.",
}

func impactDescription(category, severity string) string {
	if byCat, ok := impactTemplates[category]; ok {
		if impact, ok := byCat[severity]; ok {
			return impact
		}
	}
	if impact, ok := genericImpacts[severity]; ok {
		return impact
	}
	return "Information update"
}
