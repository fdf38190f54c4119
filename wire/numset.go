package wire

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NumRange is one sequence number or UID, or an inclusive span of them
// (RFC 3501's seq-range), as used by FETCH/STORE/COPY/UID's sequence-set
// argument and rendered by encoder.NumSet. Start == Stop is a single bare
// number; Stop == 0 is the open-ended "*" a server substitutes for
// "the highest number currently assigned", used for ranges like "5:*".
type NumRange struct {
	Start, Stop uint32
}

func (r NumRange) String() string {
	if r.Start == r.Stop {
		if r.Start == 0 {
			return "*"
		}
		return strconv.FormatUint(uint64(r.Start), 10)
	}
	b := strconv.AppendUint(make([]byte, 0, 24), uint64(r.Start), 10)
	if r.Stop == 0 {
		return string(append(b, ':', '*'))
	}
	return string(strconv.AppendUint(append(b, ':'), uint64(r.Stop), 10))
}

// touches reports whether r and t (t.Start assumed >= r.Start, i.e. the two
// are being considered in Start-sorted order) overlap or sit back-to-back,
// so collapsing them into one range loses no information.
func (r NumRange) touches(t NumRange) bool {
	if r.Stop == 0 {
		return true // r already reaches "*"; nothing after it extends it further
	}
	return r.Stop+1 >= t.Start || r.Stop == ^uint32(0)
}

// union returns the single range spanning both r and an adjacent/overlapping
// t (see touches).
func (r NumRange) union(t NumRange) NumRange {
	stop := r.Stop
	if stop != 0 && (t.Stop == 0 || t.Stop > stop) {
		stop = t.Stop
	}
	return NumRange{r.Start, stop}
}

// NumSet is a sequence-set argument: an ordered, coalesced list of
// NumRanges, built up one call at a time while a FETCH/STORE/COPY/UID
// command is assembled (e.g. from a loop appending message numbers as they
// arrive off an EXISTS/SEARCH response) and handed to encoder.NumSet for
// rendering. AddNum/AddRange keep it coalesced as they go, so a command
// built from individually-discovered numbers still renders as a compact
// "3:7,12" instead of "3,4,5,6,7,12".
type NumSet []NumRange

// AddNum adds one or more bare sequence numbers/UIDs to the set.
func (s *NumSet) AddNum(nums ...uint32) {
	for _, n := range nums {
		s.add(NumRange{n, n})
	}
}

// AddRange adds the inclusive span [start, stop]. A reversed or
// zero-started pair is normalized the same way parseNumRange normalizes one
// read off the wire.
func (s *NumSet) AddRange(start, stop uint32) {
	if (stop < start && stop != 0) || start == 0 {
		start, stop = stop, start
	}
	s.add(NumRange{start, stop})
}

// add inserts v and re-coalesces the whole set. NumSets built while
// assembling one command stay small (a handful of spans at most), so a
// sort-and-merge pass on every insert is simpler to get right than
// maintaining a sorted, spliceable slice incrementally, and costs nothing
// measurable at that scale.
func (s *NumSet) add(v NumRange) {
	all := append(*s, v)
	sort.Slice(all, func(i, j int) bool { return all[i].Start < all[j].Start })

	merged := all[:0]
	for _, r := range all {
		if n := len(merged); n > 0 && merged[n-1].touches(r) {
			merged[n-1] = merged[n-1].union(r)
			continue
		}
		merged = append(merged, r)
	}
	*s = merged
}

func (s NumSet) String() string {
	if len(s) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(r.String())
	}
	return b.String()
}

type errBadNumSet string

func (err errBadNumSet) Error() string {
	return fmt.Sprintf("wire: bad sequence set value %q", string(err))
}

func parseNum(v string) (uint32, error) {
	if n, err := strconv.ParseUint(v, 10, 32); err == nil && v[0] != '0' {
		return uint32(n), nil
	} else if v == "*" {
		return 0, nil
	}
	return 0, errBadNumSet(v)
}

func parseNumRange(v string) (NumRange, error) {
	var (
		r   NumRange
		err error
	)
	if sep := strings.IndexRune(v, ':'); sep < 0 {
		r.Start, err = parseNum(v)
		r.Stop = r.Start
		return r, err
	} else if r.Start, err = parseNum(v[:sep]); err == nil {
		if r.Stop, err = parseNum(v[sep+1:]); err == nil {
			if (r.Stop < r.Start && r.Stop != 0) || r.Start == 0 {
				r.Start, r.Stop = r.Stop, r.Start
			}
			return r, nil
		}
	}
	return r, errBadNumSet(v)
}

// ParseNumSet parses a comma-separated sequence-set string such as
// "1,3:5,9:*", e.g. the source/destination UID sets in a COPYUID response
// code (RFC 4315), see ParseCopyUID.
func ParseNumSet(set string) (NumSet, error) {
	var s NumSet
	for _, sv := range strings.Split(set, ",") {
		r, err := parseNumRange(sv)
		if err != nil {
			return s, err
		}
		s.AddRange(r.Start, r.Stop)
	}
	return s, nil
}

// CopyUID is a COPYUID response code's argument (RFC 4315 §3, returned in a
// tagged COPY/UID COPY response as "[COPYUID <uidvalidity> <source-uids>
// <dest-uids>]"), letting a caller map copied messages to their new UIDs
// without a follow-up FETCH/SEARCH.
type CopyUID struct {
	UIDValidity uint32
	Source      NumSet
	Dest        NumSet
}

// ParseCopyUID reads a COPYUID code's CodeArg (see Response.CodeArg): a
// TokenList of exactly uidvalidity, source sequence-set, dest sequence-set.
func ParseCopyUID(arg *Token) (*CopyUID, error) {
	if arg == nil || arg.Kind != TokenList || len(arg.Items) != 3 {
		return nil, fmt.Errorf("wire: malformed COPYUID code argument")
	}
	items := arg.Items
	if items[0].Kind != TokenNumber {
		return nil, fmt.Errorf("wire: COPYUID uidvalidity is not a number")
	}
	src, err := ParseNumSet(items[1].String())
	if err != nil {
		return nil, fmt.Errorf("wire: COPYUID source uid set: %w", err)
	}
	dst, err := ParseNumSet(items[2].String())
	if err != nil {
		return nil, fmt.Errorf("wire: COPYUID dest uid set: %w", err)
	}
	return &CopyUID{
		UIDValidity: uint32(items[0].Number),
		Source:      src,
		Dest:        dst,
	}, nil
}
