// Package targets parses scan target strings into IP addresses, networks and domain names,
// and renders them in the space separated form nmap and masscan accept.
package targets

import (
	"math"
	"math/bits"
	"net/netip"
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/asaskevich/govalidator"
)

// Result is the outcome of Extract. Every group is sorted and free of duplicates.
type Result struct {
	IPv4           []netip.Addr
	IPv4Networks   []netip.Prefix
	IPv6           []netip.Addr
	IPv6Networks   []netip.Prefix
	Domains        []string
	InvalidTargets []string
}

// Extract parses a comma and/or whitespace separated target string. Accepted forms are
// IPv4/IPv6 addresses, CIDR networks (host bits are masked off), ranges such as
// "10.0.0.1-10.0.0.20" or "10.0.0.1-20", and fully qualified domain names.
// Tokens that match none of these are returned in InvalidTargets in input order.
func Extract(s string) *Result {
	b := newBuilder()
	for _, tok := range strings.FieldsFunc(s, isSeparator) {
		b.add(tok)
	}
	return b.result()
}

func isSeparator(r rune) bool {
	return r == ',' || unicode.IsSpace(r)
}

// Merge returns the union of several results.
func Merge(results ...*Result) *Result {
	b := newBuilder()
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, a := range r.IPv4 {
			b.addAddr(a)
		}
		for _, a := range r.IPv6 {
			b.addAddr(a)
		}
		for _, p := range r.IPv4Networks {
			b.addPrefix(p)
		}
		for _, p := range r.IPv6Networks {
			b.addPrefix(p)
		}
		for _, d := range r.Domains {
			b.domains[d] = struct{}{}
		}
		for _, t := range r.InvalidTargets {
			b.addInvalid(t)
		}
	}
	return b.result()
}

// Valid reports whether no invalid targets were found.
func (r *Result) Valid() bool {
	return len(r.InvalidTargets) == 0
}

// Empty reports whether the result holds no valid targets.
func (r *Result) Empty() bool {
	return len(r.IPv4)+len(r.IPv4Networks)+len(r.IPv6)+len(r.IPv6Networks)+len(r.Domains) == 0
}

// AsList returns the valid targets as strings: IPv4 addresses, IPv4 networks, IPv6 addresses,
// IPv6 networks, then domains.
func (r *Result) AsList() []string {
	out := make([]string, 0, len(r.IPv4)+len(r.IPv4Networks)+len(r.IPv6)+len(r.IPv6Networks)+len(r.Domains))
	for _, a := range r.IPv4 {
		out = append(out, a.String())
	}
	for _, p := range r.IPv4Networks {
		out = append(out, p.String())
	}
	for _, a := range r.IPv6 {
		out = append(out, a.String())
	}
	for _, p := range r.IPv6Networks {
		out = append(out, p.String())
	}
	return append(out, r.Domains...)
}

// AsCSV returns the valid targets joined by commas.
func (r *Result) AsCSV() string {
	return strings.Join(r.AsList(), ",")
}

// AsNmap returns the valid targets joined by spaces.
func (r *Result) AsNmap() string {
	return strings.Join(r.AsList(), " ")
}

// Total returns the number of hosts the targets cover. A network counts every address in it,
// a domain counts as one host. The count saturates at math.MaxUint64.
func (r *Result) Total() uint64 {
	total := uint64(len(r.IPv4) + len(r.IPv6) + len(r.Domains))
	for _, p := range r.IPv4Networks {
		total = addSat(total, prefixSize(p))
	}
	for _, p := range r.IPv6Networks {
		total = addSat(total, prefixSize(p))
	}
	return total
}

func prefixSize(p netip.Prefix) uint64 {
	hostBits := p.Addr().BitLen() - p.Bits()
	if hostBits >= 64 {
		return math.MaxUint64
	}
	return 1 << uint(hostBits)
}

func addSat(a, b uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

type builder struct {
	addrs    map[netip.Addr]struct{}
	prefixes map[netip.Prefix]struct{}
	domains  map[string]struct{}
	invalid  []string
	seenBad  map[string]struct{}
}

func newBuilder() *builder {
	return &builder{
		addrs:    make(map[netip.Addr]struct{}),
		prefixes: make(map[netip.Prefix]struct{}),
		domains:  make(map[string]struct{}),
		seenBad:  make(map[string]struct{}),
	}
}

func (b *builder) add(tok string) {
	if strings.Contains(tok, "/") {
		p, err := netip.ParsePrefix(tok)
		if err != nil {
			b.addInvalid(tok)
			return
		}
		b.addPrefix(p.Masked())
		return
	}
	if lo, hi, ok := parseRange(tok); ok {
		for _, p := range Summarize(lo, hi) {
			b.addPrefix(p)
		}
		return
	}
	if a, err := netip.ParseAddr(tok); err == nil {
		if a.Zone() != "" {
			b.addInvalid(tok)
			return
		}
		b.addAddr(a)
		return
	}
	if d, ok := normalizeDomain(tok); ok {
		b.domains[d] = struct{}{}
		return
	}
	b.addInvalid(tok)
}

func (b *builder) addAddr(a netip.Addr) {
	b.addrs[a] = struct{}{}
}

// addPrefix stores single-host networks as plain addresses.
func (b *builder) addPrefix(p netip.Prefix) {
	if p.IsSingleIP() {
		b.addAddr(p.Addr())
		return
	}
	b.prefixes[p] = struct{}{}
}

func (b *builder) addInvalid(tok string) {
	if _, ok := b.seenBad[tok]; ok {
		return
	}
	b.seenBad[tok] = struct{}{}
	b.invalid = append(b.invalid, tok)
}

func (b *builder) result() *Result {
	r := &Result{InvalidTargets: b.invalid}
	for a := range b.addrs {
		if a.Is4() {
			r.IPv4 = append(r.IPv4, a)
		} else {
			r.IPv6 = append(r.IPv6, a)
		}
	}
	for p := range b.prefixes {
		if p.Addr().Is4() {
			r.IPv4Networks = append(r.IPv4Networks, p)
		} else {
			r.IPv6Networks = append(r.IPv6Networks, p)
		}
	}
	for d := range b.domains {
		r.Domains = append(r.Domains, d)
	}
	slices.SortFunc(r.IPv4, netip.Addr.Compare)
	slices.SortFunc(r.IPv6, netip.Addr.Compare)
	slices.SortFunc(r.IPv4Networks, comparePrefix)
	slices.SortFunc(r.IPv6Networks, comparePrefix)
	slices.Sort(r.Domains)
	return r
}

func comparePrefix(a, b netip.Prefix) int {
	if c := a.Addr().Compare(b.Addr()); c != 0 {
		return c
	}
	return a.Bits() - b.Bits()
}

// parseRange accepts "A-B" where both ends are addresses of the same family, or the IPv4
// shorthand "A-N" where N replaces the last octet of A.
func parseRange(tok string) (netip.Addr, netip.Addr, bool) {
	loStr, hiStr, found := strings.Cut(tok, "-")
	if !found {
		return netip.Addr{}, netip.Addr{}, false
	}
	lo, err := netip.ParseAddr(loStr)
	if err != nil || lo.Zone() != "" {
		return netip.Addr{}, netip.Addr{}, false
	}
	hi, err := netip.ParseAddr(hiStr)
	if err != nil {
		if !lo.Is4() {
			return netip.Addr{}, netip.Addr{}, false
		}
		n, convErr := strconv.ParseUint(hiStr, 10, 8)
		if convErr != nil {
			return netip.Addr{}, netip.Addr{}, false
		}
		b := lo.As4()
		b[3] = byte(n)
		hi = netip.AddrFrom4(b)
	}
	if hi.Zone() != "" || lo.Is4() != hi.Is4() || lo.Compare(hi) > 0 {
		return netip.Addr{}, netip.Addr{}, false
	}
	return lo, hi, true
}

// Summarize returns the smallest list of networks that exactly covers lo..hi inclusive.
// lo and hi must be the same family and lo <= hi.
func Summarize(lo, hi netip.Addr) []netip.Prefix {
	var out []netip.Prefix
	for {
		size := lo.BitLen()
		for size > 0 {
			wider := netip.PrefixFrom(lo, size-1).Masked()
			if wider.Addr() != lo || lastAddr(wider).Compare(hi) > 0 {
				break
			}
			size--
		}
		p := netip.PrefixFrom(lo, size)
		out = append(out, p)
		last := lastAddr(p)
		if last.Compare(hi) >= 0 {
			return out
		}
		lo = last.Next()
	}
}

// lastAddr returns the highest address in p.
func lastAddr(p netip.Prefix) netip.Addr {
	b := p.Masked().Addr().AsSlice()
	for i := p.Bits(); i < len(b)*8; i++ {
		b[i/8] |= 1 << (7 - uint(i%8))
	}
	a, _ := netip.AddrFromSlice(b)
	return a
}

// normalizeDomain lower-cases d, drops a trailing dot and checks it is a multi-label DNS name.
// The top level label must contain a letter so "10.0.0.256" is rejected rather than treated as a name.
func normalizeDomain(d string) (string, bool) {
	d = strings.ToLower(strings.TrimSuffix(d, "."))
	if !strings.Contains(d, ".") || !govalidator.IsDNSName(d) {
		return "", false
	}
	labels := strings.Split(d, ".")
	for _, l := range labels {
		if l == "" || strings.HasPrefix(l, "-") || strings.HasSuffix(l, "-") {
			return "", false
		}
	}
	if !strings.ContainsFunc(labels[len(labels)-1], unicode.IsLetter) {
		return "", false
	}
	return d, true
}
