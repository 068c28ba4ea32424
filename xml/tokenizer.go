package xml

import "fmt"

// BufferKind says which backing buffer a Token's text window lives in.
// Most tokens reference the live input window (spec §9 "Token text as
// windows, not copies"); the five predefined entities reference the
// constant buffer (spec §3); a resolved character reference references
// neither, since its value never appeared literally in the input, so
// it gets its own small synthesized buffer.
type BufferKind int

const (
	BufInput BufferKind = iota
	BufPredef
	BufSynth
)

// condFrame is a single entry on the tokenizer's conditional-section
// stack (spec §4.3 "a coarse state CONDITIONAL_SECTION_KEYWORD is
// pushed onto a stack").
type condFrame struct {
	kind      Tag // TagINCLUDE or TagIGNORE, once known
	prevState State
	depth     int // nested "<![" seen while skipping an IGNORE section
}

// Tokenizer is the deterministic, non-backtracking token-boundary
// state machine described in spec §4.3. It consumes a rune window fed
// incrementally by the decoder and emits a flat Token stream.
//
// On underflow inside a non-greedy, non-READY mini-state it rewinds to
// the start of the in-progress token and resets to READY; the next
// Feed call re-runs the recognizer for that token from scratch (spec
// §9 "Resumption without backtracking"). Greedy accumulators
// (CDATA/whitespace) instead flush their partial token and continue.
type Tokenizer struct {
	Version XMLVersion

	state State
	mini  MiniState

	// returnState is the single-slot latch used by COMMENT, PI and
	// attribute-value lexing to remember what to resume once the
	// delimited construct closes (spec §4.3 "Comment / PI return
	// states").
	returnState State

	condStack []condFrame

	buf        []rune
	pos        int
	loc        Position
	tokenStart int
	tokenPos   Position

	synth []rune // scratch buffer backing BufSynth token windows

	attrQuote rune

	// litTarget/litIdx/litKind drive the handful of fixed-literal
	// matches that have no natural terminal character of their own
	// (spec §4.3's NAME-trie convention doesn't fit "CDATA[", which
	// ends only when all six literal characters have matched).
	litTarget string
	litIdx    int
	litKind   literalKind

	closed bool
}

// literalKind names which fixed literal a miniLiteralMatch run is
// matching toward.
type literalKind int

const (
	litKindNone literalKind = iota
	litKindCDATAOpen
)

// NewTokenizer creates a tokenizer for the given XML version, starting
// in PROLOG_BEFORE_DOCTYPE (spec §3 State catalogue).
func NewTokenizer(version XMLVersion, systemID string) *Tokenizer {
	return &Tokenizer{
		Version: version,
		state:   StatePrologBeforeDoctype,
		mini:    MiniReady,
		loc:     Position{SystemID: systemID, Line: 1, Column: 1},
	}
}

// Reset returns the tokenizer to its fresh state, preserving the
// underlying allocations (spec §3 Lifecycles).
func (tk *Tokenizer) Reset(version XMLVersion, systemID string) {
	tk.Version = version
	tk.state = StatePrologBeforeDoctype
	tk.mini = MiniReady
	tk.returnState = 0
	tk.condStack = tk.condStack[:0]
	tk.buf = tk.buf[:0]
	tk.pos = 0
	tk.loc = Position{SystemID: systemID, Line: 1, Column: 1}
	tk.tokenStart = 0
	tk.synth = tk.synth[:0]
	tk.attrQuote = 0
	tk.litTarget = ""
	tk.litIdx = 0
	tk.litKind = litKindNone
	tk.closed = false
}

// Text materializes the text window a token refers to. Per spec §9
// the window is only valid until control returns from the sink
// callback that received it; callers needing the text past that point
// must copy it (this does the copy).
func (tk *Tokenizer) Text(t Token) string {
	if !t.HasText() {
		return ""
	}
	switch t.bufKind() {
	case BufPredef:
		return predefBuffer[t.Start : t.Start+t.Len]
	case BufSynth:
		return string(tk.synth[t.Start : t.Start+t.Len])
	default:
		return string(tk.buf[t.Start : t.Start+t.Len])
	}
}

// TokenSink receives tokens as they're recognized. Returning an error
// aborts the Feed call (spec §5 "Cancellation semantics").
type TokenSink func(Token) error

// Feed appends chunk to the tokenizer's active window and recognizes
// as many complete tokens as possible, handing each to sink in order.
// On return, any incomplete token has been rewound (non-greedy) or
// flushed (greedy) per the resumption contract. The consumed prefix of
// the window is compacted away at the start of the next Feed call.
func (tk *Tokenizer) Feed(chunk []rune, sink TokenSink) error {
	if tk.closed {
		return fatalf(tk.loc, "feed called on closed tokenizer")
	}
	if tk.tokenStart > 0 {
		tk.buf = append(tk.buf[:0], tk.buf[tk.tokenStart:]...)
		tk.pos -= tk.tokenStart
		tk.tokenStart = 0
	}
	tk.buf = append(tk.buf, chunk...)

	for tk.pos < len(tk.buf) {
		r := tk.buf[tk.pos]
		if tk.mini == MiniReady {
			tk.tokenStart = tk.pos
			tk.tokenPos = tk.loc
		}
		toks, err := tk.step(r)
		if err != nil {
			tk.state = StateClosed
			tk.closed = true
			return err
		}
		tk.pos++
		tk.loc.advance(r)
		for _, t := range toks {
			if err := sink(t); err != nil {
				return err
			}
		}
	}

	switch tk.mini {
	case MiniAccumulatingCData, MiniAccumulatingWhitespace:
		if tk.pos > tk.tokenStart {
			tok := Token{Tag: TagCData, Start: tk.tokenStart, Len: tk.pos - tk.tokenStart, Pos: tk.tokenPos}
			tk.tokenStart = tk.pos
			if err := sink(tok); err != nil {
				return err
			}
		}
	case MiniReady:
		// nothing in flight
	default:
		// non-greedy underflow: rewind and retry from scratch next Feed.
		tk.pos = tk.tokenStart
		tk.mini = MiniReady
	}
	return nil
}

// Close marks the tokenizer closed. Input left unconsumed by a
// non-greedy rewind, or any other pending mini-state, is an
// incomplete-token fatal (spec §4.3 "Failure semantics": "incomplete
// token at close"); a character-data run already flushed in content
// or the prolog is not pending.
func (tk *Tokenizer) Close() error {
	if tk.closed {
		return nil
	}
	tk.closed = true
	flushedText := (tk.mini == MiniAccumulatingCData || tk.mini == MiniAccumulatingWhitespace) &&
		(tk.state == StateContent || tk.state == StatePrologBeforeDoctype)
	tk.state = StateClosed
	if tk.pos < len(tk.buf) || (tk.mini != MiniReady && !flushedText) {
		return fatalf(tk.loc, "incomplete token at end of input")
	}
	return nil
}

// Pos reports the tokenizer's current position, for diagnostics
// raised outside the token stream itself (e.g. a premature Close).
func (tk *Tokenizer) Pos() Position {
	return tk.loc
}

func (t Token) bufKind() BufferKind {
	// Held in the unexported bufBits field, set only for tokens that
	// don't carry a normal input window (kept out of the public Token
	// shape; the zero value means BufInput).
	return BufferKind(t.bufBits)
}

// --- single-char emission helpers ---

// emitHere builds a single-character token at the current position; it
// is only ever used from a dispatch branch reached with mini == READY,
// where the Feed loop has already pinned tokenStart to the current
// rune.
func (tk *Tokenizer) emitHere(tag Tag) Token {
	return Token{Tag: tag, Start: tk.pos, Len: 1, Pos: tk.tokenPos}
}

func (tk *Tokenizer) emitSynth(tag Tag, text []rune) Token {
	start := len(tk.synth)
	tk.synth = append(tk.synth, text...)
	return Token{Tag: tag, Start: start, Len: len(text), Pos: tk.tokenPos, bufBits: int8(BufSynth)}
}

func (tk *Tokenizer) emitPredef(name string) (Token, error) {
	idx, ok := predefByName[name]
	if !ok {
		return Token{}, fmt.Errorf("not predefined")
	}
	return Token{Tag: TagPredefEntityRef, Start: idx, Len: 1, Pos: tk.tokenPos, bufBits: int8(BufPredef)}, nil
}

func (tk *Tokenizer) fail(format string, args ...any) error {
	return fatalf(tk.loc, format, args...)
}
