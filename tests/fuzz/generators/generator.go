package generators

import (
	"math/rand"
	"strconv"
	"strings"
)

// RandomSource abstracts the source of randomness.
type RandomSource interface {
	Intn(n int) int
}

// RandSource wraps math/rand.
type RandSource struct {
	*rand.Rand
}

// ByteSource uses a byte slice as a source of randomness, so the fuzz
// engine steers generation through its input. Exhausted data degrades
// to zeros, which keeps generation total.
type ByteSource struct {
	data []byte
	pos  int
}

func (s *ByteSource) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	if s.pos >= len(s.data) {
		return 0
	}
	v := int(s.data[s.pos])
	s.pos++
	return v % n
}

var (
	interfaceNames = []string{"Traitor", "Shifted", "Marker", "Order"}
	typeNames      = []string{"Uwu", "Pair", "Grid"}
	paramNames     = []string{"N", "M", "A", "B", "K"}
	kindNames      = []string{"u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64"}
)

// Generator generates random declaration programs. Output is always
// lexically well formed; name clashes, undeclared references, and
// out-of-range constants are left in deliberately so the analyzer
// paths get exercised too.
type Generator struct {
	src RandomSource
}

func New(seed int64) *Generator {
	return &Generator{src: &RandSource{rand.New(rand.NewSource(seed))}}
}

func NewFromData(data []byte) *Generator {
	return &Generator{src: &ByteSource{data: data}}
}

func (g *Generator) GenerateProgram() string {
	var sb strings.Builder
	count := g.src.Intn(6) + 1
	for i := 0; i < count; i++ {
		switch g.src.Intn(4) {
		case 0:
			sb.WriteString(g.generateInterface())
		case 1:
			sb.WriteString(g.generateType())
		case 2:
			sb.WriteString(g.generateImpl())
		default:
			sb.WriteString(g.generateRequire())
		}
		sb.WriteString("\n")
		sb.WriteString(g.generateNoise())
	}
	return sb.String()
}

// generateNoise emits blank lines and comments between declarations
// with ~10% probability.
func (g *Generator) generateNoise() string {
	if g.src.Intn(10) != 0 {
		return ""
	}
	switch g.src.Intn(3) {
	case 0:
		return "\n"
	case 1:
		return "// noise\n"
	default:
		return "\t \n"
	}
}

func (g *Generator) generateInterface() string {
	return "interface " + g.pick(interfaceNames) + g.generateParams(true)
}

func (g *Generator) generateType() string {
	return "type " + g.pick(typeNames) + g.generateParams(true)
}

func (g *Generator) generateImpl() string {
	return "impl" + g.generateParams(false) + " " +
		g.pick(interfaceNames) + g.generateArgs() + " for " + g.generateTypeRef()
}

func (g *Generator) generateRequire() string {
	return "require" + g.generateParams(false) + " " +
		g.generateTypeRef() + " : " + g.pick(interfaceNames) + g.generateArgs()
}

// generateParams builds '[N: u8, M: u8]'; defaults only where headers
// allow them. Zero parameters yields no brackets.
func (g *Generator) generateParams(allowDefaults bool) string {
	count := g.src.Intn(3)
	if count == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("[")
	for i := 0; i < count; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(g.pick(paramNames))
		sb.WriteString(": ")
		sb.WriteString(g.pick(kindNames))
		if allowDefaults && g.src.Intn(3) == 0 {
			sb.WriteString(" = ")
			sb.WriteString(strconv.Itoa(g.src.Intn(9)))
		}
	}
	sb.WriteString("]")
	return sb.String()
}

func (g *Generator) generateArgs() string {
	count := g.src.Intn(3)
	if count == 0 {
		return ""
	}
	parts := make([]string, count)
	for i := range parts {
		switch g.src.Intn(3) {
		case 0:
			parts[i] = g.pick(paramNames)
		case 1:
			parts[i] = "-" + strconv.Itoa(g.src.Intn(200))
		default:
			parts[i] = strconv.Itoa(g.src.Intn(300))
		}
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (g *Generator) generateTypeRef() string {
	if g.src.Intn(2) == 0 {
		return g.pick(kindNames)
	}
	return g.pick(typeNames) + g.generateArgs()
}

func (g *Generator) pick(pool []string) string {
	return pool[g.src.Intn(len(pool))]
}
