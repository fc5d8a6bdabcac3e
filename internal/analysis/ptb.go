package analysis

// Penn Treebank bracket escapes, lowercased to match token normalization.
var ptbEscapes = map[string]string{
	"(": "-lrb-",
	")": "-rrb-",
	"[": "-lsb-",
	"]": "-rsb-",
	"{": "-lcb-",
	"}": "-rcb-",
}

// PTBEscape rewrites bracket tokens to their treebank names.
func PTBEscape(tok string) string {
	if esc, ok := ptbEscapes[tok]; ok {
		return esc
	}
	return tok
}
