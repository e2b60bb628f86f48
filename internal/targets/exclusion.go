package targets

import (
	"net/netip"

	"github.com/gaissmai/bart"
)

// ExclusionSet answers whether targets are covered by a set of excluded targets.
type ExclusionSet struct {
	table   *bart.Table[struct{}]
	domains map[string]struct{}
}

// NewExclusionSet builds a set from the valid targets of the given results.
func NewExclusionSet(results ...*Result) *ExclusionSet {
	e := &ExclusionSet{
		table:   new(bart.Table[struct{}]),
		domains: make(map[string]struct{}),
	}
	for _, r := range results {
		if r == nil {
			continue
		}
		for _, a := range r.IPv4 {
			e.table.Insert(netip.PrefixFrom(a, a.BitLen()), struct{}{})
		}
		for _, a := range r.IPv6 {
			e.table.Insert(netip.PrefixFrom(a, a.BitLen()), struct{}{})
		}
		for _, p := range r.IPv4Networks {
			e.table.Insert(p, struct{}{})
		}
		for _, p := range r.IPv6Networks {
			e.table.Insert(p, struct{}{})
		}
		for _, d := range r.Domains {
			e.domains[d] = struct{}{}
		}
	}
	return e
}

// Len returns the number of distinct excluded networks, addresses and domains.
func (e *ExclusionSet) Len() int {
	return e.table.Size() + len(e.domains)
}

// ContainsAddr reports whether a is inside any excluded address or network.
func (e *ExclusionSet) ContainsAddr(a netip.Addr) bool {
	return e.table.Contains(a)
}

// CoversPrefix reports whether a single excluded network (or p itself) contains p.
// Several smaller exclusions that together span p do not cover it: two excluded /25
// halves leave their /24 in place.
func (e *ExclusionSet) CoversPrefix(p netip.Prefix) bool {
	_, ok := e.table.LookupPrefix(p.Masked())
	return ok
}

// ContainsDomain reports whether the domain d was excluded verbatim.
func (e *ExclusionSet) ContainsDomain(d string) bool {
	_, ok := e.domains[d]
	return ok
}

// Filter returns a copy of r without the targets the set fully covers. Networks only partly
// covered are kept; the scanner's exclude list takes care of the overlap.
func (e *ExclusionSet) Filter(r *Result) *Result {
	out := &Result{InvalidTargets: r.InvalidTargets}
	for _, a := range r.IPv4 {
		if !e.ContainsAddr(a) {
			out.IPv4 = append(out.IPv4, a)
		}
	}
	for _, a := range r.IPv6 {
		if !e.ContainsAddr(a) {
			out.IPv6 = append(out.IPv6, a)
		}
	}
	for _, p := range r.IPv4Networks {
		if !e.CoversPrefix(p) {
			out.IPv4Networks = append(out.IPv4Networks, p)
		}
	}
	for _, p := range r.IPv6Networks {
		if !e.CoversPrefix(p) {
			out.IPv6Networks = append(out.IPv6Networks, p)
		}
	}
	for _, d := range r.Domains {
		if !e.ContainsDomain(d) {
			out.Domains = append(out.Domains, d)
		}
	}
	return out
}
