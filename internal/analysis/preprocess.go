package analysis

import (
	"html"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// longest named entity in the HTML5 table is 33 bytes including '&' and ';'
const maxEntityLen = 33

type indexedRune struct {
	r   rune
	src int
}

// preprocess cleans text and records, for every rune of the clean text, the
// index of the original rune it came from.
func preprocess(original []rune, opts Options) (clean []rune, clean2original []int, chr2drop map[rune]int) {
	rs := make([]indexedRune, 0, len(original))
	for i, r := range original {
		rs = append(rs, indexedRune{r: r, src: i})
	}
	if opts.ReplaceHTMLEntities {
		rs = replaceEntities(rs)
	}
	rs = normalize(rs)

	chr2drop = map[rune]int{}
	if opts.DestutterMaxConsecutive > 0 {
		rs = destutter(rs, opts.DestutterMaxConsecutive, chr2drop)
	}

	clean = make([]rune, len(rs))
	clean2original = make([]int, len(rs))
	for i, ir := range rs {
		clean[i] = ir.r
		clean2original[i] = ir.src
	}
	return clean, clean2original, chr2drop
}

func replaceEntities(in []indexedRune) []indexedRune {
	out := make([]indexedRune, 0, len(in))
	for i := 0; i < len(in); i++ {
		if in[i].r != '&' {
			out = append(out, in[i])
			continue
		}
		end := -1
		for j := i + 1; j < len(in) && j-i < maxEntityLen; j++ {
			if in[j].r == ';' {
				end = j
				break
			}
			if unicode.IsSpace(in[j].r) || in[j].r == '&' {
				break
			}
		}
		if end < 0 {
			out = append(out, in[i])
			continue
		}
		raw := make([]rune, 0, end-i+1)
		for _, ir := range in[i : end+1] {
			raw = append(raw, ir.r)
		}
		s := string(raw)
		un := html.UnescapeString(s)
		if un == s {
			out = append(out, in[i])
			continue
		}
		for _, r := range un {
			out = append(out, indexedRune{r: r, src: in[i].src})
		}
		i = end
	}
	return out
}

// normalize applies NFKC one normalization segment at a time, mapping every
// output rune to the source of the segment's first rune.
func normalize(in []indexedRune) []indexedRune {
	buf := make([]byte, 0, len(in))
	// starts[k] is the byte offset of in[k] within buf
	starts := make([]int, len(in)+1)
	for k, ir := range in {
		starts[k] = len(buf)
		buf = utf8.AppendRune(buf, ir.r)
	}
	starts[len(in)] = len(buf)

	out := make([]indexedRune, 0, len(in))
	for b, i := 0, 0; b < len(buf); {
		n := norm.NFKC.NextBoundary(buf[b:], true)
		if n <= 0 {
			n = len(buf) - b
		}
		src := in[i].src
		for _, r := range string(norm.NFKC.Bytes(buf[b : b+n])) {
			out = append(out, indexedRune{r: r, src: src})
		}
		b += n
		for i < len(in) && starts[i] < b {
			i++
		}
	}
	return out
}

func destutter(in []indexedRune, limit int, dropped map[rune]int) []indexedRune {
	out := make([]indexedRune, 0, len(in))
	var prev rune
	run := 0
	for i, ir := range in {
		if i > 0 && ir.r == prev {
			run++
		} else {
			prev = ir.r
			run = 1
		}
		if run > limit {
			dropped[ir.r]++
			continue
		}
		out = append(out, ir)
	}
	return out
}
