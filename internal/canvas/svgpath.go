package canvas

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Point is an absolute canvas coordinate.
type Point struct {
	X, Y float64
}

// PathCommand is one drawing command with absolute coordinates. Op is one
// of 'M', 'L', 'Q', 'C', or 'Z'.
type PathCommand struct {
	Op  byte
	Pts []Point
}

// ParsePath parses the subset of SVG path syntax the scribble generator
// produces: moveto, lineto, quadratic and cubic curves, and closepath, in
// absolute or relative form. Coordinates may be separated by commas or
// whitespace. Relative commands are resolved to absolute points.
func ParsePath(raw string) ([]PathCommand, error) {
	tokens, err := tokenizePath(raw)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty path")
	}

	var (
		cmds     []PathCommand
		cur      Point
		start    Point
		op       byte
		relative bool
	)

	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		if tok.isCmd {
			upper := byte(unicode.ToUpper(rune(tok.cmd)))
			switch upper {
			case 'M', 'L', 'Q', 'C', 'Z':
				op = upper
				relative = tok.cmd >= 'a'
			default:
				return nil, fmt.Errorf("unsupported path command %q", string(tok.cmd))
			}
			i++
			if op == 'Z' {
				cmds = append(cmds, PathCommand{Op: 'Z'})
				cur = start
				continue
			}
			continue
		}

		if op == 0 {
			return nil, fmt.Errorf("path must start with a moveto")
		}
		if op == 'Z' {
			return nil, fmt.Errorf("coordinates after closepath")
		}

		need := map[byte]int{'M': 1, 'L': 1, 'Q': 2, 'C': 3}[op]
		pts := make([]Point, 0, need)
		for p := 0; p < need; p++ {
			if i+1 >= len(tokens) || tokens[i].isCmd || tokens[i+1].isCmd {
				return nil, fmt.Errorf("truncated coordinates for %q", string(op))
			}
			pt := Point{X: tokens[i].num, Y: tokens[i+1].num}
			if relative {
				pt.X += cur.X
				pt.Y += cur.Y
			}
			pts = append(pts, pt)
			i += 2
		}

		cur = pts[len(pts)-1]
		switch op {
		case 'M':
			cmds = append(cmds, PathCommand{Op: 'M', Pts: pts})
			start = cur
			// Extra coordinate pairs after a moveto are implicit linetos.
			op = 'L'
		default:
			cmds = append(cmds, PathCommand{Op: op, Pts: pts})
		}
	}

	if len(cmds) == 0 || cmds[0].Op != 'M' {
		return nil, fmt.Errorf("path must start with a moveto")
	}
	return cmds, nil
}

type pathToken struct {
	isCmd bool
	cmd   byte
	num   float64
}

func tokenizePath(raw string) ([]pathToken, error) {
	var tokens []pathToken
	i := 0
	for i < len(raw) {
		ch := raw[i]
		switch {
		case ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' || ch == ',':
			i++
		case (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z'):
			tokens = append(tokens, pathToken{isCmd: true, cmd: ch})
			i++
		default:
			j := i
			if raw[j] == '-' || raw[j] == '+' {
				j++
			}
			for j < len(raw) && (isDigit(raw[j]) || raw[j] == '.') {
				j++
			}
			// exponent
			if j < len(raw) && (raw[j] == 'e' || raw[j] == 'E') {
				k := j + 1
				if k < len(raw) && (raw[k] == '-' || raw[k] == '+') {
					k++
				}
				if k < len(raw) && isDigit(raw[k]) {
					for k < len(raw) && isDigit(raw[k]) {
						k++
					}
					j = k
				}
			}
			if j == i {
				return nil, fmt.Errorf("unexpected character %q at %d", string(ch), i)
			}
			num, err := strconv.ParseFloat(strings.TrimPrefix(raw[i:j], "+"), 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number %q: %w", raw[i:j], err)
			}
			tokens = append(tokens, pathToken{num: num})
			i = j
		}
	}
	return tokens, nil
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
