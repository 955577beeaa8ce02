package physics

// ContactKey is the canonical identity of an unordered fixture pair: Lo < Hi.
type ContactKey struct {
	Lo, Hi FixtureID
}

func keyOf(a, b FixtureID) ContactKey {
	if b < a {
		a, b = b, a
	}
	return ContactKey{Lo: a, Hi: b}
}

// Contact is an unordered pair of overlapping fixtures.
type Contact struct {
	A, B *Fixture
}

// NewContact orders the pair by fixture ID.
func NewContact(a, b *Fixture) Contact {
	if b.id < a.id {
		a, b = b, a
	}
	return Contact{A: a, B: b}
}

// Key is the same for {A, B} and {B, A}.
func (c Contact) Key() ContactKey { return keyOf(c.A.id, c.B.id) }

func (c Contact) Equal(o Contact) bool { return c.Key() == o.Key() }

// Other returns the fixture paired with f, or nil if f is not part of the contact.
func (c Contact) Other(f *Fixture) *Fixture {
	switch f {
	case c.A:
		return c.B
	case c.B:
		return c.A
	default:
		return nil
	}
}

// Involves returns the first fixture of type t in the contact.
func (c Contact) Involves(t FixtureType) (*Fixture, bool) {
	switch {
	case c.A.Type == t:
		return c.A, true
	case c.B.Type == t:
		return c.B, true
	default:
		return nil, false
	}
}

// contactSet keeps contacts in discovery order for deterministic dispatch.
type contactSet struct {
	list  []Contact
	index map[ContactKey]int
}

func newContactSet() *contactSet {
	return &contactSet{index: make(map[ContactKey]int)}
}

func (s *contactSet) add(c Contact) {
	k := c.Key()
	if _, ok := s.index[k]; ok {
		return
	}
	s.index[k] = len(s.list)
	s.list = append(s.list, c)
}

func (s *contactSet) has(k ContactKey) bool {
	_, ok := s.index[k]
	return ok
}

func (s *contactSet) len() int { return len(s.list) }

func (s *contactSet) reset() {
	clear(s.list)
	s.list = s.list[:0]
	clear(s.index)
}
