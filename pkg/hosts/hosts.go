package hosts

import (
	"bufio"
	"fmt"
	"io"
	"net/netip"
	"os"
	"strings"

	"github.com/cuemby/burrow/pkg/cache"
	"github.com/cuemby/burrow/pkg/log"
	"github.com/cuemby/burrow/pkg/name"
)

// DefaultPath is the system hosts file
const DefaultPath = "/etc/hosts"

// Entries maps each name in a hosts file to its fixed entry
type Entries map[name.CaseFoldedName]cache.FixedDomainCacheEntry

// Parse reads the hosts(5) format: an address followed by one or more
// names, with # starting a comment. The first name on a line is canonical
// and owns the address; the rest become aliases of it. A name keeps the
// role it was first given. Malformed lines and names are logged and
// skipped; only a read failure is returned.
func Parse(r io.Reader) (Entries, error) {
	entries := make(Entries)
	scanner := bufio.NewScanner(r)
	for line := 1; scanner.Scan(); line++ {
		for _, err := range entries.parseLine(scanner.Text()) {
			log.Warn(fmt.Sprintf("Skipping hosts line %d: %v", line, err))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read hosts: %w", err)
	}
	return entries, nil
}

// parseLine adds what it can from one line and returns what it skipped
func (e Entries) parseLine(text string) []error {
	if i := strings.IndexByte(text, '#'); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	switch {
	case len(fields) == 0:
		return nil
	case len(fields) == 1:
		return []error{fmt.Errorf("address %q has no names", fields[0])}
	}

	addr, err := netip.ParseAddr(fields[0])
	if err != nil {
		return []error{err}
	}
	addr = addr.WithZone("").Unmap()

	canonical, err := name.Parse(fields[1])
	if err != nil {
		return []error{fmt.Errorf("invalid name %q: %w", fields[1], err)}
	}
	e.addAddress(canonical, addr)

	var skipped []error
	for _, field := range fields[2:] {
		alias, err := name.Parse(field)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("invalid name %q: %w", field, err))
			continue
		}
		e.addAlias(alias, canonical)
	}
	return skipped
}

func (e Entries) addAddress(owner name.CaseFoldedName, addr netip.Addr) {
	entry, ok := e[owner]
	if ok && entry.IsAlias() {
		return
	}
	if addr.Is4() {
		entry.IPv4 = appendUnique(entry.IPv4, addr)
	} else {
		entry.IPv6 = appendUnique(entry.IPv6, addr)
	}
	e[owner] = entry
}

func (e Entries) addAlias(owner, target name.CaseFoldedName) {
	if owner == target {
		return
	}
	if _, ok := e[owner]; ok {
		return
	}
	e[owner] = cache.FixedDomainCacheEntry{Alias: &target}
}

func appendUnique(addrs []netip.Addr, addr netip.Addr) []netip.Addr {
	for _, a := range addrs {
		if a == addr {
			return addrs
		}
	}
	return append(addrs, addr)
}

// Load parses the hosts file at path
func Load(path string) (Entries, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open hosts file: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entries, nil
}

// Install adds every entry to c as a fixed entry
func (e Entries) Install(c *cache.Cache) {
	for owner, entry := range e {
		c.AddFixed(owner, entry)
	}
	log.WithComponent("hosts").Debug().Int("entries", len(e)).Msg("fixed entries installed")
}
