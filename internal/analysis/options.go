package analysis

import (
	"errors"
	"fmt"
)

// TextMaxLen is the longest input, in code points, that Analyze accepts.
const TextMaxLen = 1 << 16

var (
	ErrTextTooLong   = errors.New("text exceeds maximum length")
	ErrInvalidOption = errors.New("invalid analysis option")
)

// Options controls preprocessing.
type Options struct {
	// DestutterMaxConsecutive caps runs of one code point. 0 disables destuttering.
	DestutterMaxConsecutive int  `json:"destutter_max_consecutive" mapstructure:"destutter_max_consecutive"`
	ReplaceHTMLEntities     bool `json:"replace_html_entities" mapstructure:"replace_html_entities"`
}

func DefaultOptions() Options {
	return Options{DestutterMaxConsecutive: 3, ReplaceHTMLEntities: true}
}

// OptionsFromMap overlays decoded JSON options onto base.
// Unknown keys and wrongly typed values are rejected.
func OptionsFromMap(base Options, m map[string]any) (Options, error) {
	out := base
	for k, v := range m {
		switch k {
		case "destutter_max_consecutive":
			// encoding/json decodes numbers as float64
			f, ok := v.(float64)
			if !ok || f < 0 || f != float64(int(f)) {
				return base, fmt.Errorf("%w: %q is a non-negative integer", ErrInvalidOption, k)
			}
			out.DestutterMaxConsecutive = int(f)
		case "replace_html_entities":
			b, ok := v.(bool)
			if !ok {
				return base, fmt.Errorf("%w: %q is a bool", ErrInvalidOption, k)
			}
			out.ReplaceHTMLEntities = b
		default:
			return base, fmt.Errorf("%w: unknown option %q", ErrInvalidOption, k)
		}
	}
	return out, nil
}
