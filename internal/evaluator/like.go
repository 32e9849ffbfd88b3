package evaluator

// LikeMatch implements the Like operator.
//
//	*        any run of characters, including none
//	?        exactly one character
//	#        exactly one ASCII digit
//	[abc]    one character from the class; ranges like a-z are allowed
//	[!abc]   one character not in the class
//
// Literal characters match ignoring ASCII case; class members match
// exactly. A '[' without a closing ']' is a literal '['. Failed
// (text, pattern) positions are remembered, so the match runs in
// O(len(text) * len(pattern)) even for patterns like "*a*a*a*b".
func LikeMatch(text, pattern string) bool {
	m := &likeMatcher{text: []rune(text), pattern: []rune(pattern)}
	m.failed = make([]bool, (len(m.text)+1)*(len(m.pattern)+1))
	return m.match(0, 0)
}

type likeMatcher struct {
	text    []rune
	pattern []rune
	failed  []bool
}

func (m *likeMatcher) match(ti, pi int) bool {
	key := ti*(len(m.pattern)+1) + pi
	if m.failed[key] {
		return false
	}
	if m.matchAt(ti, pi) {
		return true
	}
	m.failed[key] = true
	return false
}

func (m *likeMatcher) matchAt(ti, pi int) bool {
	if pi == len(m.pattern) {
		return ti == len(m.text)
	}

	switch p := m.pattern[pi]; p {
	case '*':
		next := pi + 1
		for next < len(m.pattern) && m.pattern[next] == '*' {
			next++
		}
		for i := ti; i <= len(m.text); i++ {
			if m.match(i, next) {
				return true
			}
		}
		return false
	case '?':
		return ti < len(m.text) && m.match(ti+1, pi+1)
	case '#':
		if ti >= len(m.text) || m.text[ti] < '0' || m.text[ti] > '9' {
			return false
		}
		return m.match(ti+1, pi+1)
	case '[':
		if ti >= len(m.text) {
			return false
		}
		closing := -1
		for i := pi + 1; i < len(m.pattern); i++ {
			if m.pattern[i] == ']' {
				closing = i
				break
			}
		}
		if closing < 0 {
			return m.text[ti] == '[' && m.match(ti+1, pi+1)
		}
		if !inClass(m.text[ti], m.pattern[pi+1:closing]) {
			return false
		}
		return m.match(ti+1, closing+1)
	default:
		if ti >= len(m.text) || lowerASCIIRune(m.text[ti]) != lowerASCIIRune(p) {
			return false
		}
		return m.match(ti+1, pi+1)
	}
}

func inClass(c rune, class []rune) bool {
	negate := len(class) > 0 && class[0] == '!'
	if negate {
		class = class[1:]
	}
	found := false
	for i := 0; i < len(class); {
		if i+2 < len(class) && class[i+1] == '-' {
			if c >= class[i] && c <= class[i+2] {
				found = true
			}
			i += 3
			continue
		}
		if c == class[i] {
			found = true
		}
		i++
	}
	return found != negate
}
