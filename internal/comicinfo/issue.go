package comicinfo

import (
	"strconv"
	"strings"
)

// halfIssue is the suffix that counts as an extra 0.5.
const halfIssue = "½"

// IssueString splits an issue number into its leading numeric part and a
// free-form suffix, e.g. "12.MU" into 12 and ".MU".
type IssueString struct {
	num    float64
	hasNum bool
	suffix string
}

// ParseIssue splits text into number and suffix. The numeric part may start
// with "-" and contain one ".". A trailing "." moves to the suffix when more
// text follows it. Text without a leading number is all suffix.
func ParseIssue(text string) IssueString {
	if text == "" {
		return IssueString{}
	}
	start := 0
	if text[0] == '-' {
		start = 1
	}
	if start >= len(text) || !(isDigit(text[start]) || text[start] == '.') {
		return IssueString{suffix: text}
	}

	idx := len(text)
	decimals := 0
	for i := start; i < len(text); i++ {
		c := text[i]
		if !isDigit(c) && c != '.' {
			idx = i
			break
		}
		if c == '.' {
			decimals++
			if decimals > 1 {
				idx = i
				break
			}
		}
	}
	if text[idx-1] == '.' && idx != len(text) {
		idx--
	}
	if idx == 1 && start == 1 {
		idx = 0
	}

	s := IssueString{suffix: text[idx:]}
	if head := text[:idx]; head != "" {
		if v, err := strconv.ParseFloat(head, 64); err == nil {
			s.num = v
			s.hasNum = true
		} else {
			s.suffix = text
		}
	}
	return s
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Suffix returns the non-numeric tail.
func (s IssueString) Suffix() string { return s.suffix }

// Pad renders the issue with the integer part zero-padded to width. The sign
// stays in front of the padding and the suffix is kept verbatim.
func (s IssueString) Pad(width int) string {
	if !s.hasNum {
		return s.suffix
	}
	negative := s.num < 0
	abs := s.num
	if negative {
		abs = -abs
	}
	whole := int64(abs)
	digits := strconv.FormatInt(whole, 10)
	out := digits
	if float64(whole) != abs {
		out = strconv.FormatFloat(abs, 'f', -1, 64)
	}
	out += s.suffix
	if n := len(digits); n < width {
		out = strings.Repeat("0", width-n) + out
	}
	if negative {
		out = "-" + out
	}
	return out
}

// String renders the issue without padding.
func (s IssueString) String() string { return s.Pad(0) }

// Float returns the numeric value, counting a "½" suffix as 0.5.
func (s IssueString) Float() (float64, bool) {
	if s.suffix == halfIssue {
		if s.hasNum {
			return s.num + 0.5, true
		}
		return 0.5, true
	}
	return s.num, s.hasNum
}

// Int returns the numeric part truncated toward zero.
func (s IssueString) Int() (int, bool) {
	if !s.hasNum {
		return 0, false
	}
	return int(s.num), true
}
