package xml

// contentModelState is the per-element content-model validator state
// (spec §4.6). Validation is deferred to end-tag time: rather than
// running a live derivative automaton across the token stream, the
// element's pooled validation context accumulates the sequence of
// child element names it sees (and whether it ever saw character
// data), and the accumulated sequence is matched against the
// compiled particle tree once the element closes. This keeps memory
// bounded by the element's immediate child count rather than its
// subtree size, a smaller bound than full tree materialization but a
// looser one than a live automaton — see DESIGN.md.
type contentModelState struct {
	spec     ContentSpec
	children []string
}

func newContentModelState(spec ContentSpec) *contentModelState {
	return &contentModelState{spec: spec}
}

func (s *contentModelState) observeChild(name string) {
	s.children = append(s.children, name)
}

// finish validates the accumulated children (and whether text content
// was seen) against the compiled model, returning a validity error
// message on mismatch (empty string if the model is satisfied).
func (s *contentModelState) finish(sawText bool) string {
	spec := s.spec
	switch {
	case spec.Empty:
		if len(s.children) > 0 || sawText {
			return "element declared EMPTY must have no content"
		}
		return ""
	case spec.Any:
		return ""
	case spec.Mixed:
		if len(spec.MixedNames) == 0 && len(s.children) > 0 {
			return "element declared (#PCDATA) may not have child elements"
		}
		allowed := make(map[string]bool, len(spec.MixedNames))
		for _, n := range spec.MixedNames {
			allowed[n] = true
		}
		for _, c := range s.children {
			if !allowed[c] {
				return "child element <" + c + "> is not allowed by the mixed-content model"
			}
		}
		return ""
	default:
		if sawText {
			return "element-content model permits no character data"
		}
		pos := 0
		newPos, ok := matchParticle(spec.Root, s.children, pos)
		if !ok || newPos != len(s.children) {
			return "child element sequence does not match the declared content model"
		}
		return ""
	}
}

// matchParticle tries to consume as much of names[pos:] as particle
// allows, returning the new position and whether the particle matched
// at all at pos (an occurrence of OPTIONAL/ZERO_OR_MORE always
// "matches", possibly consuming nothing). Content models are required
// to be deterministic (spec §4.6 "unambiguous"), so a single greedy
// pass without backtracking is sufficient for a correctly-authored
// DTD; a pathological ambiguous model can make this matcher reject
// input a more general backtracking matcher would accept, a
// documented simplification.
func matchParticle(p *ContentParticle, names []string, pos int) (int, bool) {
	switch p.Occurrence {
	case OccurrenceOptional:
		newPos, ok := matchParticleOnce(p, names, pos)
		if ok {
			return newPos, true
		}
		return pos, true
	case OccurrenceZeroOrMore:
		for {
			newPos, ok := matchParticleOnce(p, names, pos)
			if !ok || newPos == pos {
				return pos, true
			}
			pos = newPos
		}
	case OccurrenceOneOrMore:
		newPos, ok := matchParticleOnce(p, names, pos)
		if !ok {
			return pos, false
		}
		pos = newPos
		for {
			next, ok := matchParticleOnce(p, names, pos)
			if !ok || next == pos {
				return pos, true
			}
			pos = next
		}
	default:
		return matchParticleOnce(p, names, pos)
	}
}

func matchParticleOnce(p *ContentParticle, names []string, pos int) (int, bool) {
	switch p.Kind {
	case ParticleElement:
		if pos < len(names) && names[pos] == p.Name {
			return pos + 1, true
		}
		return pos, false
	case ParticleSequence:
		cur := pos
		for _, child := range p.Children {
			next, ok := matchParticle(child, names, cur)
			if !ok {
				return pos, false
			}
			cur = next
		}
		return cur, true
	case ParticleChoice:
		for _, child := range p.Children {
			if next, ok := matchParticle(child, names, pos); ok && next > pos {
				return next, true
			}
		}
		return pos, false
	}
	return pos, false
}
