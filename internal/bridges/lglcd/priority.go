package lglcd

import (
	"fmt"
	"strings"
)

// PriorityList is the failover input priority order, rank 1 first.
//
// The web playback pseudo-input keeps its reported rank so the list mirrors
// the panel, but it cannot be moved, is never offered as a dropdown
// candidate, and is never written back.
type PriorityList struct {
	sources []InputSource
}

// ParsePriorityCodes builds a PriorityList from a run of two-character source
// codes, with or without separating spaces ("9080C0" or "90 80 C0").
func ParsePriorityCodes(body string) (*PriorityList, error) {
	compact := strings.ToUpper(strings.ReplaceAll(body, " ", ""))
	if len(compact)%2 != 0 {
		return nil, fmt.Errorf("%w: priority codes %q", ErrDecodingFailed, body)
	}

	list := &PriorityList{}
	for i := 0; i < len(compact); i += 2 {
		code := compact[i : i+2]
		src, ok := inputByCode[code]
		if !ok {
			return nil, fmt.Errorf("%w: unknown priority code %q", ErrDecodingFailed, code)
		}
		list.sources = append(list.sources, src)
	}
	return list, nil
}

// parsePriorityNames rebuilds a PriorityList from its rendered form,
// e.g. "HDMI1 > DVI-D > DisplayPort".
func parsePriorityNames(rendered string) (*PriorityList, error) {
	list := &PriorityList{}
	if strings.TrimSpace(rendered) == "" {
		return list, nil
	}
	for _, name := range strings.Split(rendered, " > ") {
		src, ok := inputByName[strings.TrimSpace(name)]
		if !ok {
			return nil, fmt.Errorf("%w: unknown priority input %q", ErrDecodingFailed, name)
		}
		list.sources = append(list.sources, src)
	}
	return list, nil
}

// Len returns the number of ranked sources.
func (p *PriorityList) Len() int {
	return len(p.sources)
}

// Names returns the source names in rank order, the web playback
// pseudo-input included.
func (p *PriorityList) Names() []string {
	out := make([]string, len(p.sources))
	for i, s := range p.sources {
		out[i] = s.Name
	}
	return out
}

// SelectableNames returns the names that may be moved, in rank order. The
// web playback pseudo-input is left out.
func (p *PriorityList) SelectableNames() []string {
	var out []string
	for _, s := range p.sources {
		if s.Name == PlayViaURLName {
			continue
		}
		out = append(out, s.Name)
	}
	return out
}

// Rank returns the 1-based rank of a source name, or 0 if absent.
func (p *PriorityList) Rank(name string) int {
	for i, s := range p.sources {
		if s.Name == name {
			return i + 1
		}
	}
	return 0
}

// MoveUp swaps the named source with its nearest movable higher-priority
// neighbour, hopping over the web playback pseudo-input. Moving the top
// entry, an absent entry or the pseudo-input itself is a no-op. Returns
// true when the order changed.
func (p *PriorityList) MoveUp(name string) bool {
	i := p.index(name)
	if i <= 0 || p.sources[i].Name == PlayViaURLName {
		return false
	}
	j := i - 1
	for j >= 0 && p.sources[j].Name == PlayViaURLName {
		j--
	}
	if j < 0 {
		return false
	}
	p.sources[i], p.sources[j] = p.sources[j], p.sources[i]
	return true
}

// MoveDown swaps the named source with its nearest movable lower-priority
// neighbour, hopping over the web playback pseudo-input. Moving the bottom
// entry, an absent entry or the pseudo-input itself is a no-op. Returns
// true when the order changed.
func (p *PriorityList) MoveDown(name string) bool {
	i := p.index(name)
	if i < 0 || p.sources[i].Name == PlayViaURLName {
		return false
	}
	j := i + 1
	for j < len(p.sources) && p.sources[j].Name == PlayViaURLName {
		j++
	}
	if j >= len(p.sources) {
		return false
	}
	p.sources[i], p.sources[j] = p.sources[j], p.sources[i]
	return true
}

func (p *PriorityList) index(name string) int {
	for i, s := range p.sources {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// Serialize renders the list as space-joined source codes in rank order,
// the payload format expected by the priority write command. The web
// playback pseudo-input is never transmitted.
func (p *PriorityList) Serialize() string {
	var codes []string
	for _, s := range p.sources {
		if s.Name == PlayViaURLName {
			continue
		}
		codes = append(codes, s.Code)
	}
	return strings.Join(codes, " ")
}

// String renders the list for snapshots, e.g. "HDMI1 > DVI-D > DisplayPort".
func (p *PriorityList) String() string {
	return strings.Join(p.Names(), " > ")
}

// Clone returns an independent copy of the list.
func (p *PriorityList) Clone() *PriorityList {
	out := &PriorityList{sources: make([]InputSource, len(p.sources))}
	copy(out.sources, p.sources)
	return out
}
