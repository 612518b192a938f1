package name

import "fmt"

// MaximumChainLength bounds the number of CNAME redirections followed
// from a query name. Real-world chains rarely exceed three.
const MaximumChainLength = 6

// Alias is one CNAME record: Owner is an alias of Target
type Alias struct {
	Owner  ParsedName
	Target ParsedName
}

// CanonicalNameChain is the ordered sequence of CNAME redirections from a
// query name to its most canonical name
type CanonicalNameChain struct {
	start ParsedName
	links []Alias
}

// NewCanonicalNameChain starts an empty chain at the query name
func NewCanonicalNameChain(start ParsedName) *CanonicalNameChain {
	return &CanonicalNameChain{start: start}
}

// AssembleChain orders aliases into a chain beginning at start. Every alias
// must extend the chain, so unrelated CNAME records are an error.
func AssembleChain(start ParsedName, aliases []Alias) (*CanonicalNameChain, error) {
	chain := NewCanonicalNameChain(start)
	if len(aliases) > MaximumChainLength {
		return nil, fmt.Errorf("%d canonical name records: %w", len(aliases), ErrMaximumChainLength)
	}

	used := make([]bool, len(aliases))
	for {
		tip := chain.MostCanonicalName()
		found := -1
		for i, alias := range aliases {
			if used[i] || !alias.Owner.Equal(tip) {
				continue
			}
			if found >= 0 {
				return nil, fmt.Errorf("owner %s: %w", tip, ErrMultipleCanonicalNames)
			}
			found = i
		}
		if found < 0 {
			break
		}
		if err := chain.Insert(aliases[found]); err != nil {
			return nil, err
		}
		used[found] = true
	}

	for i, alias := range aliases {
		if !used[i] {
			return nil, fmt.Errorf("%s -> %s: %w", alias.Owner, alias.Target, ErrUnchainedCanonicalName)
		}
	}
	return chain, nil
}

// Insert appends an alias whose owner is the current most canonical name
func (c *CanonicalNameChain) Insert(alias Alias) error {
	if !alias.Owner.Equal(c.MostCanonicalName()) {
		return fmt.Errorf("%s does not follow %s: %w", alias.Owner, c.MostCanonicalName(), ErrUnchainedCanonicalName)
	}
	if len(c.links) == MaximumChainLength {
		return ErrMaximumChainLength
	}
	if c.Contains(alias.Target) {
		return fmt.Errorf("%s: %w", alias.Target, ErrCanonicalNameLoop)
	}
	c.links = append(c.links, alias)
	return nil
}

// Start is the query name the chain begins at
func (c *CanonicalNameChain) Start() ParsedName {
	return c.start
}

// MostCanonicalName is the target of the last link, or the start
func (c *CanonicalNameChain) MostCanonicalName() ParsedName {
	if len(c.links) == 0 {
		return c.start
	}
	return c.links[len(c.links)-1].Target
}

// Len is the number of CNAME links
func (c *CanonicalNameChain) Len() int {
	return len(c.links)
}

// Links returns the aliases in chain order
func (c *CanonicalNameChain) Links() []Alias {
	return c.links
}

// Contains reports whether n is the start or any target in the chain
func (c *CanonicalNameChain) Contains(n ParsedName) bool {
	if c.start.Equal(n) {
		return true
	}
	for _, link := range c.links {
		if link.Target.Equal(n) {
			return true
		}
	}
	return false
}

// ValidateAuthoritySectionName checks that an authority-section owner (an
// SOA zone apex or a delegation point) is the most canonical name or one of
// its ancestors
func (c *CanonicalNameChain) ValidateAuthoritySectionName(authority ParsedName) error {
	tip := c.MostCanonicalName()
	if !tip.IsSubdomainOf(authority) {
		return fmt.Errorf("%s is not an ancestor of %s: %w", authority, tip, ErrAuthorityNameMismatch)
	}
	return nil
}
