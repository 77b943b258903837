package oracle

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"github.com/willf/bloom"
)

// addrDBMagic heads the serialized address-database format. The version
// byte bumps if the layout ever changes.
var addrDBMagic = []byte("SCADB\x01")

// bloomErrorRate is the target false-positive probability when sizing the
// filter. A hit can still be a false positive when the exact set was not
// retained, so callers report bloom-only matches as "probable".
const bloomErrorRate = 1e-6

// AddressSet answers "is this address one of ours" for the seed oracle.
// It always carries a bloom filter for the fast negative path; when built
// from a plain address list it also keeps the exact set, eliminating false
// positives. Databases loaded from the compact serialized form are
// bloom-only.
type AddressSet struct {
	filter *bloom.BloomFilter
	exact  map[string]struct{}
	count  uint
}

// BuildAddressSet reads one address per line and indexes them. Blank lines
// and lines starting with # are skipped.
func BuildAddressSet(r io.Reader) (*AddressSet, error) {
	var addrs []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		addrs = append(addrs, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, &OracleError{Code: CodeAddressDB, Message: "read address list", Err: err}
	}
	if len(addrs) == 0 {
		return nil, &OracleError{Code: CodeAddressDB, Message: "address list is empty"}
	}

	set := &AddressSet{
		filter: bloom.NewWithEstimates(uint(len(addrs)), bloomErrorRate),
		exact:  make(map[string]struct{}, len(addrs)),
	}
	for _, a := range addrs {
		set.filter.Add([]byte(a))
		set.exact[a] = struct{}{}
	}
	set.count = uint(len(addrs))
	return set, nil
}

// Contains reports whether addr is in the set. With the exact set present
// the answer is definitive; bloom-only sets may return rare false
// positives (see Exact).
func (s *AddressSet) Contains(addr string) bool {
	if !s.filter.Test([]byte(addr)) {
		return false
	}
	if s.exact == nil {
		return true
	}
	_, ok := s.exact[addr]
	return ok
}

// Exact reports whether membership answers are free of false positives.
func (s *AddressSet) Exact() bool { return s.exact != nil }

// Len returns the number of addresses indexed at build time.
func (s *AddressSet) Len() int { return int(s.count) }

// WriteTo serializes the set in its compact bloom-only form. The exact
// set is deliberately not persisted; the compact form exists so that
// multi-million address databases stay small on disk.
func (s *AddressSet) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(addrDBMagic)
	if err != nil {
		return int64(n), fmt.Errorf("write address db header: %w", err)
	}
	var count [8]byte
	binary.BigEndian.PutUint64(count[:], uint64(s.count))
	if _, err := w.Write(count[:]); err != nil {
		return int64(n), fmt.Errorf("write address db count: %w", err)
	}
	written, err := s.filter.WriteTo(w)
	written += int64(n) + 8
	if err != nil {
		return written, fmt.Errorf("write address db filter: %w", err)
	}
	return written, nil
}

// ReadAddressSet loads the compact form written by WriteTo.
func ReadAddressSet(r io.Reader) (*AddressSet, error) {
	header := make([]byte, len(addrDBMagic))
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, &OracleError{Code: CodeAddressDB, Message: "read address db header", Err: err}
	}
	if string(header) != string(addrDBMagic) {
		return nil, &OracleError{Code: CodeAddressDB, Message: "not an address database file"}
	}
	var count [8]byte
	if _, err := io.ReadFull(r, count[:]); err != nil {
		return nil, &OracleError{Code: CodeAddressDB, Message: "read address db count", Err: err}
	}

	filter := &bloom.BloomFilter{}
	if _, err := filter.ReadFrom(r); err != nil {
		return nil, &OracleError{Code: CodeAddressDB, Message: "read address db filter", Err: err}
	}
	return &AddressSet{filter: filter, count: uint(binary.BigEndian.Uint64(count[:]))}, nil
}
