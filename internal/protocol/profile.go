package protocol

import (
	"fmt"
	"net"
	"strconv"
	"strings"
)

const (
	DefaultHost = "moss.stanford.edu"
	DefaultPort = 7690
)

// Endpoint is the host/port pair of a Moss server.
type Endpoint struct {
	Host string
	Port int
}

func (e Endpoint) Address() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// Profile is the read-only server contract: where the server lives and which
// language tags it accepts. Share it by reference.
type Profile struct {
	endpoint  Endpoint
	languages []string
	index     map[string]struct{}
}

var defaultProfile = NewProfile(Endpoint{Host: DefaultHost, Port: DefaultPort}, []string{
	"c",
	"cc",
	"java",
	"ml",
	"pascal",
	"ada",
	"lisp",
	"scheme",
	"haskell",
	"fortran",
	"ascii",
	"vhdl",
	"verilog",
	"perl",
	"matlab",
	"python",
	"mips",
	"prolog",
	"spice",
	"vb",
	"csharp",
	"modula2",
	"a8086",
	"javascript",
	"plsql",
})

// Default returns the profile of the public Moss service.
func Default() *Profile {
	return defaultProfile
}

// NewProfile builds a profile for a server speaking the Moss protocol.
// Language tags are matched exactly.
func NewProfile(endpoint Endpoint, languages []string) *Profile {
	p := &Profile{
		endpoint:  endpoint,
		languages: make([]string, 0, len(languages)),
		index:     make(map[string]struct{}, len(languages)),
	}
	for _, lang := range languages {
		if _, dup := p.index[lang]; dup || lang == "" {
			continue
		}
		p.index[lang] = struct{}{}
		p.languages = append(p.languages, lang)
	}
	return p
}

func (p *Profile) Endpoint() Endpoint {
	return p.endpoint
}

// Languages returns the supported tags in declaration order.
func (p *Profile) Languages() []string {
	out := make([]string, len(p.languages))
	copy(out, p.languages)
	return out
}

func (p *Profile) Supports(language string) bool {
	_, ok := p.index[language]
	return ok
}

// CheckLanguage returns ErrUnsupportedLanguage wrapped with the offending tag
// and the accepted set.
func (p *Profile) CheckLanguage(language string) error {
	if p.Supports(language) {
		return nil
	}
	return fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedLanguage, language, strings.Join(p.languages, ", "))
}
