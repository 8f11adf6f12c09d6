package syntax

// Options configures a parse. The zero value parses with no flags, the
// default nest limit and the standard library's Unicode tables.
type Options struct {
	Flags Flags // initial flags, as if the pattern began with (?flags)

	// NestLimit bounds how many groups may be open at once. Zero selects
	// DefaultNestLimit.
	NestLimit int

	// DisallowEmpty rejects patterns whose whole tree is Empty.
	DisallowEmpty bool

	Properties PropertyResolver
}

// Parse parses pattern with default options.
func Parse(pattern string) (*Node, error) {
	return Options{}.Parse(pattern)
}

// Parse parses pattern into an AST. On failure the error is a *Error and no
// tree is returned.
func (o Options) Parse(pattern string) (*Node, error) {
	return newParser(pattern, o).parse()
}

// MustParse is like Parse but panics on error. It simplifies tests and
// package-level patterns.
func MustParse(pattern string) *Node {
	n, err := Parse(pattern)
	if err != nil {
		panic(err)
	}
	return n
}
