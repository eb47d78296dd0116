package constant

// CompanionToneLexicon maps a companion personality to the phrases that
// signal its voice in generated text. Used by the consistency scorer as the
// weakest tier of companion alignment: no explicit tag, no name, but the
// tone still matches.
var CompanionToneLexicon = map[string][]string{
	"encouraging": {"great", "keep going", "you can do it", "well done", "nice work"},
	"curious":     {"wonder", "what if", "let's find out", "explore", "discover"},
	"playful":     {"fun", "game", "let's play", "awesome", "cool"},
	"calm":        {"take your time", "breathe", "step by step", "no rush"},
	"adventurous": {"adventure", "quest", "journey", "brave", "onward"},
}
